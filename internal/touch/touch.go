// Package touch reads the touch digitizer and maps raw readings into panel
// coordinates.
package touch

// Point is a raw digitizer reading.
type Point struct {
	X, Y     int
	Pressure int
}

// Source yields touch points without blocking. Read reports false when no
// touch is pending; the main loop polls it once per cycle.
type Source interface {
	Read() (Point, bool)
	Close() error
}

// Calibration corrects raw digitizer output: axis flips, fixed offsets and a
// minimum pressure gate. Width/Height bound the valid panel range; corrected
// points outside it are discarded.
type Calibration struct {
	FlipX, FlipY     bool
	OffsetX, OffsetY int
	MinPressure      int
	Width, Height    int
}

// Map converts a raw point to panel coordinates. The third return is false
// for too-light touches and for points that fall outside the panel after
// correction.
func (c Calibration) Map(p Point) (int, int, bool) {
	if p.Pressure < c.MinPressure {
		return 0, 0, false
	}
	x, y := p.X, p.Y
	if c.FlipX {
		x = c.Width - 1 - x
	}
	if c.FlipY {
		y = c.Height - 1 - y
	}
	x += c.OffsetX
	y += c.OffsetY
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return 0, 0, false
	}
	return x, y, true
}
