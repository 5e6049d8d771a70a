package screen

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/la3za/GPS-clock/internal/display"
	"github.com/la3za/GPS-clock/internal/maidenhead"
	"github.com/la3za/GPS-clock/internal/timesync"
)

// How often the slow LOCATION fields (lat/lon/grid) are redrawn.
const slowRedrawEvery = 20 * time.Second

// Config fixes the machine's behavior at construction.
type Config struct {
	// GridLength is the locator length (0 disables the grid display).
	GridLength int
	// Debounce is the quiet period after each accepted touch.
	Debounce time.Duration
	Units    UnitSystem
}

// Machine owns the current screen, the preferences, and the differential
// redraw state. It is driven strictly from the main loop: Update once per
// advanced second, Touch once per polled touch.
type Machine struct {
	clock clockwork.Clock
	surf  display.Surface
	disc  *timesync.Discipline
	cfg   Config

	screen  ScreenID
	prefs   Prefs
	cache   *FieldCache
	regions []regionHandler

	lastTouch  time.Time
	anyTouch   bool
	lastSlowAt time.Time
	anySlow    bool
	waitShown  bool
}

func NewMachine(clock clockwork.Clock, surf display.Surface, disc *timesync.Discipline, cfg Config) *Machine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	m := &Machine{
		clock:  clock,
		surf:   surf,
		disc:   disc,
		cfg:    cfg,
		screen: ScreenTime,
		prefs: Prefs{
			ShowLocalTime:  true,
			Use12HourLocal: true,
			Units:          cfg.Units,
		},
		cache: NewFieldCache(),
	}
	m.regions = []regionHandler{
		{"ampm", regionAMPM, (*Machine).touchAMPM},
		{"zone", regionZone, (*Machine).touchZone},
		{"speaker", regionSpeaker, (*Machine).touchSpeaker},
		{"time", regionTime, (*Machine).touchTime},
		{"grid", regionGrid, (*Machine).touchGrid},
	}
	return m
}

// Screen returns the active screen id (consumed by peripheral status
// indicators).
func (m *Machine) Screen() ScreenID { return m.screen }

// Prefs returns a copy of the current display preferences.
func (m *Machine) Prefs() Prefs { return m.prefs }

// Touch routes a panel-coordinate touch. Points outside the panel are
// discarded; touches during the debounce quiet period are ignored. On the
// TIME screen the region table decides the action; on any other screen any
// touch returns to TIME.
func (m *Machine) Touch(x, y int) {
	if x < 0 || y < 0 || x >= display.PanelW || y >= display.PanelH {
		return
	}
	now := m.clock.Now()
	if m.anyTouch && now.Sub(m.lastTouch) < m.cfg.Debounce {
		return
	}
	m.lastTouch = now
	m.anyTouch = true

	if m.screen != ScreenTime {
		m.setScreen(ScreenTime)
		return
	}
	for _, rh := range m.regions {
		if rh.region.Contains(x, y) {
			rh.handle(m)
			return
		}
	}
}

func (m *Machine) touchAMPM() {
	m.prefs.Use12HourLocal = !m.prefs.Use12HourLocal
}

func (m *Machine) touchZone() {
	m.prefs.ShowLocalTime = !m.prefs.ShowLocalTime
	// Coupling: local is always shown 12-hour, UTC always 24-hour.
	m.prefs.Use12HourLocal = m.prefs.ShowLocalTime
}

func (m *Machine) touchSpeaker() {
	m.prefs.TickSound = !m.prefs.TickSound
}

func (m *Machine) touchTime() {
	m.setScreen(ScreenDualTime)
}

func (m *Machine) touchGrid() {
	m.setScreen(ScreenLocation)
}

func (m *Machine) setScreen(id ScreenID) {
	m.screen = id
	// Entering a state forgets everything previously displayed so the next
	// update redraws every field.
	m.cache.Reset()
	m.anySlow = false
	m.waitShown = false
	m.surf.FillRect(0, 0, display.PanelW, display.PanelH, display.Black)
	m.surf.Flush()
}

// Update renders the active screen. The caller invokes it only when the
// authoritative second advanced, so it runs at most once per real second.
func (m *Machine) Update(gps GPSData) {
	utc := m.disc.CurrentUTC()
	local, abbrev := m.disc.CurrentLocal()
	trust := m.disc.Trust()

	switch m.screen {
	case ScreenDualTime:
		m.renderDualTime(utc, local, abbrev)
	case ScreenLocation:
		m.renderLocation(gps)
	default:
		m.renderTime(utc, local, abbrev, trust.String(), gps)
	}
	m.surf.Flush()
}

func (m *Machine) renderTime(utc, local timesync.Instant, abbrev, trust string, gps GPSData) {
	if m.cache.ShouldRedraw(fieldTrust, trust) {
		m.surf.FillRect(posTrustX, posTrustY, 70, 18, display.Black)
		m.surf.Text(posTrustX, posTrustY, display.FontSmall, trustColor(trust), display.Black, trust)
	}
	// The decoder bumps SatSeq whenever the satellite count field updates;
	// keying on it keeps the redraw decision with the decoder.
	if m.cache.ShouldRedraw(fieldSats, strconv.FormatUint(gps.SatSeq, 10)) {
		m.surf.FillRect(posSatsX, posSatsY, 70, 18, display.Black)
		m.surf.Text(posSatsX, posSatsY, display.FontSmall, display.Gray, display.Black, fmt.Sprintf("sat %d", gps.Satellites))
	}
	m.drawSpeaker()

	// Time unknown: suppress all date/time fields rather than show epoch.
	if utc == 0 {
		if m.cache.ShouldRedraw(fieldWait, "wait") {
			m.surf.Text(posTimeX, posTimeY, display.FontMedium, display.Orange, display.Black, "waiting for GPS")
			m.waitShown = true
		}
		return
	}
	m.clearWaitBanner(posTimeX, posTimeY)

	shown := utc
	label := "UTC"
	twelve := false
	if m.prefs.ShowLocalTime {
		shown = local
		label = abbrev
		twelve = m.prefs.Use12HourLocal
	}
	t := shown.Time()

	// Seconds-resolution digits are redrawn on every update.
	m.surf.Text(posTimeX, posTimeY, display.FontHuge, display.White, display.Black, formatClock(t, twelve))

	ampm := ""
	if twelve {
		ampm = "AM"
		if t.Hour() >= 12 {
			ampm = "PM"
		}
	}
	if m.cache.ShouldRedraw(fieldAMPM, ampm) {
		m.surf.FillRect(posAMPMX, posAMPMY, 40, 20, display.Black)
		if ampm != "" {
			m.surf.Text(posAMPMX, posAMPMY, display.FontSmall, display.White, display.Black, ampm)
		}
	}

	if m.cache.ShouldRedraw(fieldDate, t.Format("2006-01-02")) {
		m.surf.FillRect(posDateX, posDateY, 260, 26, display.Black)
		m.surf.Text(posDateX, posDateY, display.FontMedium, display.Cyan, display.Black, t.Format("Mon 02 Jan 2006"))
	}

	// Keyed on abbreviation and hour: catches rule changes that move the
	// abbreviation without moving the date.
	if m.cache.ShouldRedraw(fieldZone, fmt.Sprintf("%s@%02d", label, t.Hour())) {
		m.surf.FillRect(posZoneX, posZoneY, 100, 18, display.Black)
		m.surf.Text(posZoneX, posZoneY, display.FontSmall, display.Yellow, display.Black, label)
	}

	m.drawGrid(fieldGrid, posGridX, posGridY, gps)
}

func (m *Machine) renderDualTime(utc, local timesync.Instant, abbrev string) {
	if utc == 0 {
		if m.cache.ShouldRedraw(fieldWait, "wait") {
			m.surf.Text(posLocalRowX, posLocalRowY, display.FontMedium, display.Orange, display.Black, "waiting for GPS")
			m.waitShown = true
		}
		return
	}
	m.clearWaitBanner(posLocalRowX, posLocalRowY)
	lt := local.Time()
	ut := utc.Time()

	// Both rows carry seconds, so both are redrawn every update. Local is
	// always 12-hour, UTC always 24-hour.
	m.surf.Text(posLocalRowX, posLocalRowY, display.FontLarge, display.White, display.Black,
		fmt.Sprintf("%s %s", formatClock(lt, true), abbrev))
	m.surf.Text(posUTCRowX, posUTCRowY, display.FontLarge, display.White, display.Black,
		fmt.Sprintf("%s UTC", formatClock(ut, false)))

	if m.cache.ShouldRedraw(fieldDualDate, ut.Format("2006-01-02")) {
		m.surf.FillRect(posDualDateX, posDualDateY, 260, 26, display.Black)
		m.surf.Text(posDualDateX, posDualDateY, display.FontMedium, display.Cyan, display.Black, ut.Format("Mon 02 Jan 2006"))
	}
}

func (m *Machine) renderLocation(gps GPSData) {
	// Altitude/speed/course move constantly: redrawn every update.
	m.surf.Text(posAltX, posAltY, display.FontMedium, display.White, display.Black, m.formatAlt(gps))
	m.surf.Text(posSpeedX, posSpeedY, display.FontMedium, display.White, display.Black, m.formatSpeed(gps))
	m.surf.Text(posCourseX, posCourseY, display.FontMedium, display.White, display.Black, formatCourse(gps))

	// Position drifts slowly; limit the expensive lat/lon/grid redraw.
	now := m.clock.Now()
	if m.anySlow && now.Sub(m.lastSlowAt) < slowRedrawEvery {
		return
	}
	m.lastSlowAt = now
	m.anySlow = true

	lat, lon := "lat  --", "lon  --"
	if gps.PosValid {
		lat = fmt.Sprintf("lat %9.4f", gps.Lat)
		lon = fmt.Sprintf("lon %9.4f", gps.Lon)
	}
	if m.cache.ShouldRedraw(fieldLat, lat) {
		m.surf.FillRect(posLatX, posLatY, 300, 26, display.Black)
		m.surf.Text(posLatX, posLatY, display.FontMedium, display.Green, display.Black, lat)
	}
	if m.cache.ShouldRedraw(fieldLon, lon) {
		m.surf.FillRect(posLonX, posLonY, 300, 26, display.Black)
		m.surf.Text(posLonX, posLonY, display.FontMedium, display.Green, display.Black, lon)
	}
	m.drawGrid(fieldLocGrid, posLocGridX, posLocGridY, gps)
}

// clearWaitBanner erases the "waiting for GPS" text on the first render after
// the clock syncs. The clock digits drawn afterwards share the banner's origin
// but not its extent, so without the clear the banner's tail would survive
// next to the digits.
func (m *Machine) clearWaitBanner(x, y int) {
	if !m.waitShown {
		return
	}
	m.waitShown = false
	m.surf.FillRect(x, y, display.PanelW-x, 26, display.Black)
}

// drawGrid renders the locator, or nothing when no locator is available
// (grid disabled, no fix, or out-of-range position).
func (m *Machine) drawGrid(field string, x, y int, gps GPSData) {
	loc := ""
	if gps.PosValid {
		loc = maidenhead.Locate(gps.Lat, gps.Lon, m.cfg.GridLength)
	}
	if !m.cache.ShouldRedraw(field, loc) {
		return
	}
	m.surf.FillRect(x, y, 160, 26, display.Black)
	if loc != "" {
		m.surf.Text(x, y, display.FontMedium, display.Green, display.Black, loc)
	}
}

func (m *Machine) drawSpeaker() {
	val := "off"
	if m.prefs.TickSound {
		val = "on"
	}
	if !m.cache.ShouldRedraw(fieldSpeaker, val) {
		return
	}
	m.surf.FillRect(posSpeakerX, posSpeakerY, 32, 32, display.Black)
	c := display.DarkGray
	if m.prefs.TickSound {
		c = display.White
	}
	m.surf.Triangle(posSpeakerX, posSpeakerY+16, posSpeakerX+16, posSpeakerY, posSpeakerX+16, posSpeakerY+32, c)
}

func (m *Machine) formatAlt(gps GPSData) string {
	if !gps.AltOK {
		return "alt    --"
	}
	if m.prefs.Units == UnitsUS {
		return fmt.Sprintf("alt %6.0f ft", gps.AltFt)
	}
	return fmt.Sprintf("alt %6.0f m", gps.AltM)
}

func (m *Machine) formatSpeed(gps GPSData) string {
	if !gps.SpeedOK {
		return "spd    --"
	}
	if m.prefs.Units == UnitsUS {
		return fmt.Sprintf("spd %6.1f mph", gps.SpeedMph)
	}
	return fmt.Sprintf("spd %6.1f km/h", gps.SpeedKmh)
}

func formatCourse(gps GPSData) string {
	if !gps.CourseOK {
		return "crs    --"
	}
	return fmt.Sprintf("crs %6.1f deg", gps.CourseDeg)
}

// formatClock renders HH:MM:SS, 12-hour without a leading zero.
func formatClock(t time.Time, twelve bool) string {
	if !twelve {
		return t.Format("15:04:05")
	}
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%2d:%02d:%02d", h, t.Minute(), t.Second())
}
