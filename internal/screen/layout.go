package screen

import "github.com/la3za/GPS-clock/internal/display"

// Fixed 320x240 layout. Regions and field positions are raw literals defined
// once here so hit-testing can be tested independently of rendering.

// Touch regions on the TIME screen, in priority order.
var (
	regionAMPM    = Region{X: 250, Y: 60, W: 69, H: 50}
	regionZone    = Region{X: 0, Y: 0, W: 110, H: 40}
	regionSpeaker = Region{X: 270, Y: 195, W: 49, H: 44}
	regionTime    = Region{X: 10, Y: 60, W: 235, H: 70}
	regionGrid    = Region{X: 0, Y: 195, W: 265, H: 44}
)

// Field positions (pixel origin of each block).
const (
	posZoneX, posZoneY   = 8, 8
	posTrustX, posTrustY = 130, 8
	posSatsX, posSatsY   = 248, 8

	posTimeX, posTimeY = 16, 80
	posAMPMX, posAMPMY = 262, 96
	posDateX, posDateY = 30, 150

	posGridX, posGridY       = 8, 208
	posSpeakerX, posSpeakerY = 284, 204

	// DUAL_TIME rows.
	posLocalRowX, posLocalRowY = 16, 60
	posUTCRowX, posUTCRowY     = 16, 130
	posDualDateX, posDualDateY = 30, 200

	// LOCATION rows.
	posLatX, posLatY       = 8, 48
	posLonX, posLonY       = 8, 80
	posLocGridX, posLocGridY = 8, 112
	posAltX, posAltY       = 8, 152
	posSpeedX, posSpeedY   = 8, 184
	posCourseX, posCourseY = 8, 216
)

// Field cache keys.
const (
	fieldTrust   = "trust"
	fieldWait    = "wait"
	fieldDate    = "date"
	fieldZone    = "zone"
	fieldAMPM    = "ampm"
	fieldSats    = "sats"
	fieldSpeaker = "speaker"
	fieldGrid    = "grid"

	fieldDualDate = "dual-date"

	fieldLat     = "lat"
	fieldLon     = "lon"
	fieldLocGrid = "loc-grid"
)

func trustColor(t string) display.Color {
	switch t {
	case "fresh":
		return display.Green
	case "marginal":
		return display.Yellow
	default:
		return display.Red
	}
}
