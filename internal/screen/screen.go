// Package screen owns the display state machine: which of the three screens
// is active, how touches move between them, and which fields actually get
// redrawn on each one-second update.
package screen

// ScreenID identifies the active screen. Exactly one is active at a time and
// only the Machine mutates it.
type ScreenID int

const (
	ScreenTime ScreenID = iota
	ScreenDualTime
	ScreenLocation
)

func (s ScreenID) String() string {
	switch s {
	case ScreenDualTime:
		return "dual-time"
	case ScreenLocation:
		return "location"
	default:
		return "time"
	}
}

// UnitSystem selects the units used for speed and altitude.
type UnitSystem int

const (
	UnitsMetric UnitSystem = iota
	UnitsUS
)

// Prefs are the display preferences touch handlers mutate. They live for the
// process lifetime only.
type Prefs struct {
	// Use12HourLocal is coupled to ShowLocalTime: local time is always shown
	// 12-hour, UTC always 24-hour.
	Use12HourLocal bool
	ShowLocalTime  bool
	TickSound      bool
	Units          UnitSystem
}

// GPSData is the per-cycle position/velocity snapshot the renderers consume.
type GPSData struct {
	PosValid bool
	Lat, Lon float64

	Satellites int
	SatSeq     uint64

	SpeedOK            bool
	SpeedKmh, SpeedMph float64

	AltOK      bool
	AltM, AltFt float64

	CourseOK  bool
	CourseDeg float64
}
