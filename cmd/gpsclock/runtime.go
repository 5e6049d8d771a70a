package main

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/la3za/GPS-clock/internal/backlight"
	"github.com/la3za/GPS-clock/internal/config"
	"github.com/la3za/GPS-clock/internal/display"
	"github.com/la3za/GPS-clock/internal/gps"
	"github.com/la3za/GPS-clock/internal/maidenhead"
	"github.com/la3za/GPS-clock/internal/pps"
	"github.com/la3za/GPS-clock/internal/screen"
	"github.com/la3za/GPS-clock/internal/statuspub"
	"github.com/la3za/GPS-clock/internal/timesync"
	"github.com/la3za/GPS-clock/internal/touch"
	"github.com/la3za/GPS-clock/internal/tz"
	"github.com/la3za/GPS-clock/internal/web"
)

// cyclePeriod is the main-loop tick. Fast enough that a PPS edge is consumed
// within tens of milliseconds of the top of second, slow enough to stay far
// below one cycle per second of CPU.
const cyclePeriod = 50 * time.Millisecond

// runtime wires the services to the cooperative main loop. Everything except
// the loop itself is best-effort: a missing receiver or broker degrades the
// clock, it never stops it.
type runtime struct {
	cfg   config.Config
	clock clockwork.Clock

	surf     *display.Simulator
	gpsSvc   *gps.Service
	ppsW     *pps.Watcher
	disc     *timesync.Discipline
	machine  *screen.Machine
	touchSrc touch.Source
	cal      touch.Calibration
	mapTouch bool // evdev points need calibration; simulator points are panel coords
	ownTouch bool // touchSrc is a separately opened device, closed by Close

	status       *web.Status
	backlightSvc *backlight.Service
	pub          statuspub.Publisher
	notifier     *statuspub.Notifier

	// localHour is read by the backlight goroutine; -1 means unknown.
	localHour atomic.Int64

	lastShown   timesync.Instant
	lastWallSec int64
	firstSync   bool
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg, clock: clockwork.NewRealClock()}
	rt.localHour.Store(-1)

	zone, err := tz.Load(cfg.Clock.Zone)
	if err != nil {
		log.Printf("tz load zone=%q failed, falling back to UTC: %v", cfg.Clock.Zone, err)
		zone = tz.UTC()
	}

	rt.ppsW = pps.NewWatcher(pps.Config{Enable: cfg.PPS.Enable, Chip: cfg.PPS.Chip, Line: cfg.PPS.Line})
	if err := rt.ppsW.Start(); err != nil {
		log.Printf("pps unavailable, running in poll mode: %v", err)
	}
	var pulse timesync.PulseSource
	if sig := rt.ppsW.Signal(); sig != nil {
		pulse = sig
		log.Printf("pps enabled chip=%s line=%d", cfg.PPS.Chip, cfg.PPS.Line)
	}
	rt.disc = timesync.New(rt.clock, pulse, zone)

	rt.gpsSvc = gps.New(gps.Config{Enable: cfg.GPS.Enable, Device: cfg.GPS.Device, Baud: cfg.GPS.Baud})
	if err := rt.gpsSvc.Start(ctx); err != nil {
		log.Printf("gps bring-up failed, trust will stay lost: %v", err)
	}

	// The surface is the one hard requirement: no panel, no clock.
	surf, err := display.OpenSimulator()
	if err != nil {
		rt.gpsSvc.Close()
		rt.ppsW.Close()
		return nil, err
	}
	rt.surf = surf

	units := screen.UnitsMetric
	if cfg.Screen.Units == "us" {
		units = screen.UnitsUS
	}
	rt.machine = screen.NewMachine(rt.clock, surf, rt.disc, screen.Config{
		GridLength: cfg.Screen.GridLength,
		Debounce:   cfg.Screen.Debounce,
		Units:      units,
	})

	// Touch input: a configured evdev digitizer on the appliance, the
	// simulator's mouse otherwise.
	rt.touchSrc = surf
	if cfg.Touch.Device != "" && !cfg.Display.Sim {
		ev, err := touch.OpenEvdev(cfg.Touch.Device)
		if err != nil {
			log.Printf("touch open device=%s failed, panel is display-only: %v", cfg.Touch.Device, err)
		} else {
			rt.touchSrc = ev
			rt.mapTouch = true
			rt.ownTouch = true
			rt.cal = touch.Calibration{
				FlipX:       cfg.Touch.FlipX,
				FlipY:       cfg.Touch.FlipY,
				OffsetX:     cfg.Touch.OffsetX,
				OffsetY:     cfg.Touch.OffsetY,
				MinPressure: cfg.Touch.MinPressure,
				Width:       display.PanelW,
				Height:      display.PanelH,
			}
		}
	}

	if cfg.Web.Enable {
		rt.status = web.NewStatus()
		go func() {
			if err := web.Serve(ctx, cfg.Web.Listen, rt.status); err != nil && ctx.Err() == nil {
				log.Printf("web server stopped: %v", err)
			}
		}()
		log.Printf("web listening on %s", cfg.Web.Listen)
	}

	rt.backlightSvc = backlight.New(backlight.Config{
		Enable:         cfg.Backlight.Enable,
		Backend:        cfg.Backlight.Backend,
		Pin:            cfg.Backlight.Pin,
		PWMFrequencyHz: cfg.Backlight.PWMFrequencyHz,
		DayDuty:        cfg.Backlight.DayDuty,
		NightDuty:      cfg.Backlight.NightDuty,
		NightStartHour: cfg.Backlight.NightStartHour,
		DayStartHour:   cfg.Backlight.DayStartHour,
		RampStepPct:    cfg.Backlight.RampStepPct,
		UpdateInterval: cfg.Backlight.UpdateInterval,
	}, func() (int, bool) {
		h := rt.localHour.Load()
		if h < 0 {
			return 0, false
		}
		return int(h), true
	})
	if err := rt.backlightSvc.Start(ctx); err != nil {
		log.Printf("backlight bring-up failed: %v", err)
	}

	if cfg.MQTT.Enable {
		pub, err := statuspub.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			log.Printf("mqtt connect broker=%s failed, trust transitions will not publish: %v", cfg.MQTT.Broker, err)
		} else {
			rt.pub = pub
			log.Printf("mqtt connected broker=%s", cfg.MQTT.Broker)
		}
	}
	rt.notifier = statuspub.NewNotifier(rt.pub)

	return rt, nil
}

// run drives the cooperative cycle until the context ends or the simulator
// window quits. Nothing inside a cycle blocks.
func (rt *runtime) run(ctx context.Context) {
	ticker := rt.clock.NewTicker(cyclePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.surf.Quit():
			return
		case <-ticker.Chan():
			rt.cycle()
		}
	}
}

func (rt *runtime) cycle() {
	now := rt.clock.Now()
	snap := rt.gpsSvc.Snapshot()

	if rt.disc.PeriodicSync(toTimeFix(snap, now)) && !rt.firstSync {
		rt.firstSync = true
		log.Printf("clock synced utc=%s mode=%s", rt.disc.CurrentUTC().Time().Format(time.RFC3339), rt.pulseMode())
	}

	utc := rt.disc.CurrentUTC()
	local, _ := rt.disc.CurrentLocal()
	if local == 0 {
		rt.localHour.Store(-1)
	} else {
		rt.localHour.Store(int64(local.Time().Hour()))
	}

	// Render on each advance of the authoritative second; before the first
	// sync, once per wall second so the trust row keeps current.
	render := false
	if utc != 0 {
		render = utc != rt.lastShown
		rt.lastShown = utc
	} else if now.Unix() != rt.lastWallSec {
		render = true
	}
	rt.lastWallSec = now.Unix()

	data := toGPSData(snap)
	if render {
		rt.machine.Update(data)
		rt.publishStatus(now, utc, snap, data)
	}

	rt.pollTouch()
	rt.notifier.Observe(now.UTC(), rt.disc.Trust().String(), syncAgeSec(utc, rt.disc.LastSync()), data.Satellites)
}

func (rt *runtime) pollTouch() {
	for i := 0; i < 4; i++ { // bounded per cycle
		p, ok := rt.touchSrc.Read()
		if !ok {
			return
		}
		x, y := p.X, p.Y
		if rt.mapTouch {
			var in bool
			x, y, in = rt.cal.Map(p)
			if !in {
				continue
			}
		}
		rt.machine.Touch(x, y)
	}
}

func (rt *runtime) publishStatus(now time.Time, utc timesync.Instant, snap gps.Snapshot, data screen.GPSData) {
	if rt.status == nil {
		return
	}

	cs := web.ClockSnapshot{
		Synced:    utc != 0,
		Trust:     rt.disc.Trust().String(),
		Screen:    rt.machine.Screen().String(),
		PulseMode: rt.pulseMode(),
	}
	if utc != 0 {
		local, abbrev := rt.disc.CurrentLocal()
		age := syncAgeSec(utc, rt.disc.LastSync())
		cs.UTC = utc.Time().Format(time.RFC3339)
		cs.Local = local.Time().Format("2006-01-02T15:04:05")
		cs.Zone = abbrev
		cs.SyncAgeSec = &age
	}
	rt.status.SetClock(cs)

	gs := web.GPSSnapshot{
		Connected:  snap.Valid,
		PosValid:   data.PosValid,
		Satellites: data.Satellites,
	}
	if data.PosValid {
		lat, lon := data.Lat, data.Lon
		gs.Lat, gs.Lon = &lat, &lon
		gs.Grid = maidenhead.Locate(lat, lon, rt.cfg.Screen.GridLength)
	}
	rt.status.SetGPS(gs)
	rt.status.SetBacklight(rt.backlightSvc.Snapshot())
	rt.status.MarkUpdate(now.UTC())
}

func (rt *runtime) pulseMode() string {
	if rt.ppsW.Enabled() {
		return "edge"
	}
	return "poll"
}

func (rt *runtime) Close() {
	if rt.pub != nil {
		_ = rt.pub.Close()
	}
	rt.backlightSvc.Close()
	if rt.ownTouch {
		_ = rt.touchSrc.Close()
	}
	rt.gpsSvc.Close()
	rt.ppsW.Close()
	if rt.surf != nil {
		_ = rt.surf.Close()
	}
}

func toTimeFix(snap gps.Snapshot, now time.Time) timesync.TimeFix {
	return timesync.TimeFix{
		Valid:  snap.TimeValid,
		Age:    snap.FixAge(now),
		Hour:   snap.Hour,
		Minute: snap.Minute,
		Second: snap.Second,
		Day:    snap.Day,
		Month:  snap.Month,
		Year:   snap.Year,
	}
}

func toGPSData(snap gps.Snapshot) screen.GPSData {
	d := screen.GPSData{
		PosValid: snap.PosValid,
		Lat:      snap.LatDeg,
		Lon:      snap.LonDeg,
		SatSeq:   snap.SatSeq,
	}
	if snap.Satellites != nil {
		d.Satellites = *snap.Satellites
	}
	if kmh, ok := snap.SpeedKmh(); ok {
		mph, _ := snap.SpeedMph()
		d.SpeedOK = true
		d.SpeedKmh, d.SpeedMph = kmh, mph
	}
	if m, ok := snap.AltMeters(); ok {
		ft, _ := snap.AltFeet()
		d.AltOK = true
		d.AltM, d.AltFt = m, ft
	}
	if snap.CourseDeg != nil {
		d.CourseOK = true
		d.CourseDeg = *snap.CourseDeg
	}
	return d
}

func syncAgeSec(now, lastSync timesync.Instant) int64 {
	if lastSync == 0 || now == 0 {
		return -1
	}
	return int64(now - lastSync)
}
