package gps

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type nmeaSentence struct {
	Type string
	// Fields is the comma-split NMEA payload (excluding $ and checksum).
	Fields []string
}

func parseNMEASentence(line string) (nmeaSentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return nmeaSentence{}, fmt.Errorf("nmea: missing '$'")
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return nmeaSentence{}, fmt.Errorf("nmea: missing checksum")
	}
	payload := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return nmeaSentence{}, fmt.Errorf("nmea: short checksum")
	}
	ck = ck[:2]
	want, err := hex.DecodeString(ck)
	if err != nil || len(want) != 1 {
		return nmeaSentence{}, fmt.Errorf("nmea: bad checksum")
	}
	got := byte(0)
	for i := 0; i < len(payload); i++ {
		got ^= payload[i]
	}
	if got != want[0] {
		return nmeaSentence{}, fmt.Errorf("nmea: checksum mismatch")
	}

	parts := strings.Split(payload, ",")
	if len(parts) == 0 {
		return nmeaSentence{}, fmt.Errorf("nmea: empty")
	}
	typeField := parts[0]
	if len(typeField) < 3 {
		return nmeaSentence{}, fmt.Errorf("nmea: short type")
	}
	// Accept GNxxx/GPxxx, etc; normalize to last 3 chars.
	t := typeField
	if len(t) > 3 {
		t = t[len(t)-3:]
	}
	return nmeaSentence{Type: strings.ToUpper(t), Fields: parts}, nil
}

type nmeaState struct {
	device string
	baud   int

	latDeg float64
	lonDeg float64
	latOK  bool
	lonOK  bool

	groundKt float64
	gsOK     bool

	courseDeg float64
	crsOK     bool

	altM  float64
	altOK bool

	satellites int
	satsOK     bool
	satSeq     uint64
	hdop       float64
	hdopOK     bool

	// UTC time/date from RMC. timeAt is the wall-clock moment the fields were
	// decoded; fix age derives from it.
	hour, minute, second int
	day, month, year     int
	timeOK, dateOK       bool
	timeAt               time.Time

	lastFix time.Time
	valid   bool

	lastErr string
}

func (s *nmeaState) apply(nowUTC time.Time, sent nmeaSentence) bool {
	switch sent.Type {
	case "RMC":
		return s.applyRMC(nowUTC, sent.Fields)
	case "GGA":
		return s.applyGGA(nowUTC, sent.Fields)
	default:
		return false
	}
}

func (s *nmeaState) snapshot() Snapshot {
	out := Snapshot{
		Enabled: true,
		Valid:   s.valid,
		Device:  s.device,
		Baud:    s.baud,
		SatSeq:  s.satSeq,
	}
	if s.latOK && s.lonOK {
		out.LatDeg = s.latDeg
		out.LonDeg = s.lonDeg
		out.PosValid = true
	}
	if s.altOK {
		v := s.altM
		out.AltM = &v
	}
	if s.gsOK {
		v := s.groundKt
		out.SpeedKt = &v
	}
	if s.crsOK {
		v := s.courseDeg
		out.CourseDeg = &v
	}
	if s.satsOK {
		v := s.satellites
		out.Satellites = &v
	}
	if s.hdopOK {
		v := s.hdop
		out.HDOP = &v
	}
	if s.timeOK && s.dateOK {
		out.TimeValid = true
		out.Hour, out.Minute, out.Second = s.hour, s.minute, s.second
		out.Day, out.Month, out.Year = s.day, s.month, s.year
		out.TimeStampedAt = s.timeAt
	}
	if !s.lastFix.IsZero() {
		out.LastFixUTC = s.lastFix.UTC().Format(time.RFC3339Nano)
	}
	out.LastError = s.lastErr
	return out
}

// RMC: Recommended Minimum Specific GNSS Data
// Fields (NMEA 0183 v2.3):
//
//	0: talker+type
//	1: time (hhmmss.sss)
//	2: status (A=active, V=void)
//	3: latitude (ddmm.mmmm)
//	4: N/S
//	5: longitude (dddmm.mmmm)
//	6: E/W
//	7: speed over ground (knots)
//	8: course over ground (deg)
//	9: date (ddmmyy)
func (s *nmeaState) applyRMC(nowUTC time.Time, f []string) bool {
	if len(f) < 10 {
		return false
	}
	status := strings.TrimSpace(f[2])
	if status != "A" {
		// Do not update validity or time on void fixes; the clock must never
		// sync to a sentence the receiver itself distrusts.
		return false
	}

	if h, m, sec, ok := parseNMEATime(f[1]); ok {
		s.hour, s.minute, s.second = h, m, sec
		s.timeOK = true
		s.timeAt = nowUTC
	}
	if d, mo, y, ok := parseNMEADate(f[9]); ok {
		s.day, s.month, s.year = d, mo, y
		s.dateOK = true
	}

	lat, latOK := parseNMEALatLon(f[3], f[4])
	lon, lonOK := parseNMEALatLon(f[5], f[6])
	if latOK {
		s.latDeg = lat
		s.latOK = true
	}
	if lonOK {
		s.lonDeg = lon
		s.lonOK = true
	}

	if gs, ok := parseFloat(f[7]); ok {
		s.groundKt = gs
		s.gsOK = true
	}
	if crs, ok := parseFloat(f[8]); ok {
		s.courseDeg = math.Mod(crs+360.0, 360.0)
		s.crsOK = true
	}

	// If we have lat/lon, treat as a fix.
	if s.latOK && s.lonOK {
		s.lastFix = nowUTC
		s.valid = true
		return true
	}
	return false
}

// GGA: Global Positioning System Fix Data
// Fields:
//
//	0: talker+type
//	1: time
//	2: latitude
//	3: N/S
//	4: longitude
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
//	9: altitude (meters)
//
// 10: units (M)
func (s *nmeaState) applyGGA(nowUTC time.Time, f []string) bool {
	if len(f) < 11 {
		return false
	}
	fixQStr := strings.TrimSpace(f[6])
	if fixQStr == "" || fixQStr == "0" {
		return false
	}
	if sats, err := strconv.Atoi(strings.TrimSpace(f[7])); err == nil {
		if !s.satsOK || sats != s.satellites {
			s.satSeq++
		}
		s.satellites = sats
		s.satsOK = true
	}
	if hdop, ok := parseFloat(f[8]); ok {
		s.hdop = hdop
		s.hdopOK = true
	}

	updated := false
	lat, latOK := parseNMEALatLon(f[2], f[3])
	lon, lonOK := parseNMEALatLon(f[4], f[5])
	if latOK {
		s.latDeg = lat
		s.latOK = true
		updated = true
	}
	if lonOK {
		s.lonDeg = lon
		s.lonOK = true
		updated = true
	}

	if altM, ok := parseFloat(f[9]); ok {
		s.altM = altM
		s.altOK = true
		updated = true
	}

	if s.latOK && s.lonOK {
		s.lastFix = nowUTC
		s.valid = true
		return updated
	}
	return false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseNMEATime parses hhmmss or hhmmss.sss; fractional seconds are dropped
// (the pulse edge, not the sentence, marks the top of the second).
func parseNMEATime(v string) (h, m, s int, ok bool) {
	v = strings.TrimSpace(v)
	if dot := strings.IndexByte(v, '.'); dot != -1 {
		v = v[:dot]
	}
	if len(v) != 6 {
		return 0, 0, 0, false
	}
	h, err1 := strconv.Atoi(v[0:2])
	m, err2 := strconv.Atoi(v[2:4])
	s, err3 := strconv.Atoi(v[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	if h > 23 || m > 59 || s > 60 {
		return 0, 0, 0, false
	}
	return h, m, s, true
}

// parseNMEADate parses ddmmyy. Two-digit years map to 2000-2099, which
// outlives the receivers this runs with.
func parseNMEADate(v string) (d, mo, y int, ok bool) {
	v = strings.TrimSpace(v)
	if len(v) != 6 {
		return 0, 0, 0, false
	}
	d, err1 := strconv.Atoi(v[0:2])
	mo, err2 := strconv.Atoi(v[2:4])
	y, err3 := strconv.Atoi(v[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	if d < 1 || d > 31 || mo < 1 || mo > 12 {
		return 0, 0, 0, false
	}
	return d, mo, 2000 + y, true
}

// parseNMEALatLon parses NMEA lat/lon in ddmm.mmmm or dddmm.mmmm plus hemisphere.
//
// For latitude (N/S): ddmm.mmmm
// For longitude (E/W): dddmm.mmmm
func parseNMEALatLon(v string, hemi string) (float64, bool) {
	v = strings.TrimSpace(v)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}

	// Split degrees/minutes at the decimal point by taking the last two digits of the integer part as minutes.
	dot := strings.IndexByte(v, '.')
	intPart := v
	if dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}

	degPart := intPart[:len(intPart)-2]
	minPart := v[len(intPart)-2:]

	deg, err := strconv.Atoi(degPart)
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(minPart, 64)
	if err != nil {
		return 0, false
	}

	dec := float64(deg) + (mins / 60.0)
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}
