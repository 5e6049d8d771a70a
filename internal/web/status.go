package web

import (
	"sync/atomic"
	"time"

	"github.com/la3za/GPS-clock/internal/backlight"
)

type Status struct {
	startUnixNano  int64
	updates        uint64
	lastUpdateNano int64
	clock          atomic.Value // ClockSnapshot
	gps            atomic.Value // GPSSnapshot
	backlight      atomic.Value // backlight.Snapshot
}

func NewStatus() *Status {
	s := &Status{}
	now := time.Now().UTC()
	atomic.StoreInt64(&s.startUnixNano, now.UnixNano())
	atomic.StoreInt64(&s.lastUpdateNano, 0)
	s.clock.Store(ClockSnapshot{})
	s.gps.Store(GPSSnapshot{})
	s.backlight.Store(backlight.Snapshot{})
	return s
}

// ClockSnapshot is a small, UI-friendly view of the disciplined clock.
// Date/time strings are empty until the first GPS sync.
type ClockSnapshot struct {
	Synced     bool   `json:"synced"`
	Trust      string `json:"trust"`
	UTC        string `json:"utc,omitempty"`
	Local      string `json:"local,omitempty"`
	Zone       string `json:"zone,omitempty"`
	SyncAgeSec *int64 `json:"sync_age_sec,omitempty"`
	Screen     string `json:"screen"`
	PulseMode  string `json:"pulse_mode"`
}

// GPSSnapshot mirrors the receiver state the display consumes.
type GPSSnapshot struct {
	Connected  bool     `json:"connected"`
	PosValid   bool     `json:"pos_valid"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Grid       string   `json:"grid,omitempty"`
	Satellites int      `json:"satellites"`
}

func (s *Status) SetClock(c ClockSnapshot) {
	s.clock.Store(c)
}

func (s *Status) SetGPS(g GPSSnapshot) {
	s.gps.Store(g)
}

func (s *Status) SetBacklight(b backlight.Snapshot) {
	s.backlight.Store(b)
}

// MarkUpdate records one completed main-loop display update.
func (s *Status) MarkUpdate(nowUTC time.Time) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastUpdateNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.updates, 1)
}

type StatusSnapshot struct {
	Service       string             `json:"service"`
	NowUTC        string             `json:"now_utc"`
	UptimeSec     int64              `json:"uptime_sec"`
	Clock         ClockSnapshot      `json:"clock"`
	GPS           GPSSnapshot        `json:"gps"`
	Backlight     backlight.Snapshot `json:"backlight"`
	UpdatesTotal  uint64             `json:"updates_total"`
	LastUpdateUTC string             `json:"last_update_utc,omitempty"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	lastUpdate := atomic.LoadInt64(&s.lastUpdateNano)

	snap := StatusSnapshot{
		Service:      "gpsclock",
		NowUTC:       nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:    int64(nowUTC.Sub(start).Seconds()),
		Clock:        s.clock.Load().(ClockSnapshot),
		GPS:          s.gps.Load().(GPSSnapshot),
		Backlight:    s.backlight.Load().(backlight.Snapshot),
		UpdatesTotal: atomic.LoadUint64(&s.updates),
	}
	if lastUpdate != 0 {
		snap.LastUpdateUTC = time.Unix(0, lastUpdate).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
