// Package maidenhead encodes geographic coordinates as Maidenhead grid
// locators of up to ten characters (five interleaved lon/lat precision tiers).
package maidenhead

// Per-tier cell sizes in degrees. Each tier subdivides the remainder of the
// previous one: 20°, 2°, 5', 30", 1.25" for longitude and 10°, 1°, 2.5', 15",
// 0.625" for latitude.
var (
	lonDiv = [5]float64{20, 2, 5.0 / 60, 30.0 / 3600, 1.25 / 3600}
	latDiv = [5]float64{10, 1, 2.5 / 60, 15.0 / 3600, 0.625 / 3600}
)

// Character base per tier: upper letter, digit, lower letter, digit, upper letter.
var tierBase = [5]byte{'A', '0', 'a', '0', 'A'}

// Locate returns the first length characters of the grid locator for the
// given position, interleaved lon-char/lat-char per tier.
//
// It returns "" when the coordinates are outside the valid range, when
// length > 10, or when length == 0 (callers use zero to disable the grid
// display).
func Locate(lat, lon float64, length int) string {
	if length <= 0 || length > 10 {
		return ""
	}
	if lat <= -90 || lat >= 90 || lon < -180 || lon >= 180 {
		return ""
	}

	lonRem := lon + 180
	latRem := lat + 90

	var out [10]byte
	for tier := 0; tier < 5; tier++ {
		lonIdx := int(lonRem / lonDiv[tier])
		latIdx := int(latRem / latDiv[tier])
		lonRem -= float64(lonIdx) * lonDiv[tier]
		latRem -= float64(latIdx) * latDiv[tier]
		out[2*tier] = tierBase[tier] + byte(lonIdx)
		out[2*tier+1] = tierBase[tier] + byte(latIdx)
	}
	return string(out[:length])
}
