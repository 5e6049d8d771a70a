package main

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/la3za/GPS-clock/internal/config"
	"github.com/la3za/GPS-clock/internal/display"
	"github.com/la3za/GPS-clock/internal/gps"
	"github.com/la3za/GPS-clock/internal/screen"
	"github.com/la3za/GPS-clock/internal/statuspub"
	"github.com/la3za/GPS-clock/internal/timesync"
	"github.com/la3za/GPS-clock/internal/touch"
)

type fakeTouchSource struct {
	pts []touch.Point
}

func (f *fakeTouchSource) Read() (touch.Point, bool) {
	if len(f.pts) == 0 {
		return touch.Point{}, false
	}
	p := f.pts[0]
	f.pts = f.pts[1:]
	return p, true
}

func (f *fakeTouchSource) Close() error { return nil }

func newTestRuntime(t *testing.T) (*runtime, *display.Recorder, clockwork.FakeClock, *fakeTouchSource, *statuspub.FakePublisher) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.Date(2023, 6, 10, 10, 0, 0, 0, time.UTC))
	disc := timesync.New(fc, nil, nil)
	rec := display.NewRecorder()
	m := screen.NewMachine(fc, rec, disc, screen.Config{GridLength: 6})
	src := &fakeTouchSource{}
	pub := statuspub.NewFakePublisher()

	rt := &runtime{
		cfg:      config.Config{Screen: config.ScreenConfig{GridLength: 6}},
		clock:    fc,
		disc:     disc,
		machine:  m,
		touchSrc: src,
		notifier: statuspub.NewNotifier(pub),
	}
	rt.localHour.Store(-1)
	return rt, rec, fc, src, pub
}

func TestCycle_RendersOncePerWallSecondBeforeSync(t *testing.T) {
	rt, rec, fc, _, _ := newTestRuntime(t)

	rt.cycle()
	if !rec.HasText("waiting for GPS") {
		t.Fatalf("expected waiting banner on first cycle")
	}

	rec.Reset()
	fc.Advance(50 * time.Millisecond)
	rt.cycle()
	if len(rec.Ops) != 0 {
		t.Fatalf("second cycle in the same second rendered: %+v", rec.Ops)
	}

	fc.Advance(time.Second)
	rt.cycle()
	if len(rec.Ops) == 0 {
		t.Fatalf("expected a render after the wall second advanced")
	}
}

func TestCycle_RendersOnAuthoritativeSecondAdvance(t *testing.T) {
	rt, rec, fc, _, _ := newTestRuntime(t)
	ok := rt.disc.PeriodicSync(timesync.TimeFix{
		Valid: true, Hour: 10, Minute: 0, Second: 0, Day: 10, Month: 6, Year: 2023,
	})
	if !ok {
		t.Fatalf("sync rejected")
	}

	rt.cycle()
	if !rec.HasText("10:00:01") {
		t.Fatalf("expected clock digits, got %v", rec.Texts())
	}

	rec.Reset()
	fc.Advance(50 * time.Millisecond)
	rt.cycle()
	if len(rec.Ops) != 0 {
		t.Fatalf("cycle without a second advance rendered: %+v", rec.Ops)
	}

	fc.Advance(time.Second)
	rt.cycle()
	if !rec.HasText("10:00:02") {
		t.Fatalf("expected next second rendered, got %v", rec.Texts())
	}
}

func TestCycle_UpdatesLocalHourForBacklight(t *testing.T) {
	rt, _, _, _, _ := newTestRuntime(t)
	rt.cycle()
	if got := rt.localHour.Load(); got != -1 {
		t.Fatalf("localHour=%d want -1 before sync", got)
	}

	rt.disc.PeriodicSync(timesync.TimeFix{
		Valid: true, Hour: 21, Minute: 59, Second: 59, Day: 10, Month: 6, Year: 2023,
	})
	rt.cycle()
	if got := rt.localHour.Load(); got != 22 {
		t.Fatalf("localHour=%d want 22", got)
	}
}

func TestCycle_PublishesTrustTransitions(t *testing.T) {
	rt, _, _, _, pub := newTestRuntime(t)
	rt.cycle()
	rt.cycle()
	if len(pub.TrustEvents) != 1 || pub.TrustEvents[0].Trust != "lost" {
		t.Fatalf("trust events = %+v", pub.TrustEvents)
	}

	rt.disc.PeriodicSync(timesync.TimeFix{
		Valid: true, Hour: 10, Minute: 0, Second: 0, Day: 10, Month: 6, Year: 2023,
	})
	rt.cycle()
	if len(pub.TrustEvents) != 2 || pub.TrustEvents[1].Trust != "fresh" {
		t.Fatalf("trust events = %+v", pub.TrustEvents)
	}
}

func TestPollTouch_MapsCalibratedPoints(t *testing.T) {
	rt, _, _, src, _ := newTestRuntime(t)
	rt.mapTouch = true
	rt.cal = touch.Calibration{MinPressure: 10, Width: display.PanelW, Height: display.PanelH}

	// Below pressure threshold: dropped by calibration.
	src.pts = []touch.Point{{X: 100, Y: 90, Pressure: 1}}
	rt.pollTouch()
	if got := rt.machine.Screen(); got != screen.ScreenTime {
		t.Fatalf("screen=%v want TIME after rejected touch", got)
	}

	// Center of the time region opens the dual-time screen.
	src.pts = []touch.Point{{X: 100, Y: 90, Pressure: 50}}
	rt.pollTouch()
	if got := rt.machine.Screen(); got != screen.ScreenDualTime {
		t.Fatalf("screen=%v want DUAL_TIME", got)
	}
}

func TestToTimeFix(t *testing.T) {
	now := time.Date(2023, 6, 10, 10, 0, 1, 0, time.UTC)
	snap := gps.Snapshot{
		TimeValid: true,
		Hour:      9, Minute: 59, Second: 58,
		Day: 10, Month: 6, Year: 2023,
		TimeStampedAt: now.Add(-200 * time.Millisecond),
	}
	fix := toTimeFix(snap, now)
	if !fix.Valid || fix.Age != 200*time.Millisecond {
		t.Fatalf("fix = %+v", fix)
	}
	if fix.Hour != 9 || fix.Second != 58 || fix.Year != 2023 {
		t.Fatalf("fix = %+v", fix)
	}

	invalid := toTimeFix(gps.Snapshot{}, now)
	if invalid.Valid {
		t.Fatalf("empty snapshot produced a valid fix")
	}
}

func TestToGPSData(t *testing.T) {
	kt := 10.0
	alt := 120.0
	crs := 181.5
	sats := 7
	snap := gps.Snapshot{
		PosValid: true, LatDeg: 59.9, LonDeg: 10.75,
		SpeedKt: &kt, AltM: &alt, CourseDeg: &crs, Satellites: &sats,
		SatSeq: 3,
	}
	d := toGPSData(snap)
	if !d.PosValid || d.Lat != 59.9 || d.Satellites != 7 || d.SatSeq != 3 {
		t.Fatalf("data = %+v", d)
	}
	if !d.SpeedOK || d.SpeedKmh < 18.51 || d.SpeedKmh > 18.53 {
		t.Fatalf("speed = %+v", d)
	}
	if !d.AltOK || d.AltM != 120 || d.AltFt <= 393 || d.AltFt >= 394 {
		t.Fatalf("alt = %+v", d)
	}
	if !d.CourseOK || d.CourseDeg != 181.5 {
		t.Fatalf("course = %+v", d)
	}

	empty := toGPSData(gps.Snapshot{})
	if empty.PosValid || empty.SpeedOK || empty.AltOK || empty.CourseOK {
		t.Fatalf("empty = %+v", empty)
	}
}

func TestSyncAgeSec(t *testing.T) {
	if got := syncAgeSec(0, 0); got != -1 {
		t.Fatalf("never synced age=%d want -1", got)
	}
	if got := syncAgeSec(timesync.Instant(1000), timesync.Instant(400)); got != 600 {
		t.Fatalf("age=%d want 600", got)
	}
}
