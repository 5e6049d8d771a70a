package screen

// Region is an axis-aligned rectangle in display-pixel coordinates,
// immutable once defined.
type Region struct {
	X, Y, W, H int
}

// Contains is an inclusive bounds test on all four edges.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// regionHandler pairs a touch region with its action. The TIME screen's
// table is checked in declaration order on every touch; first match wins.
type regionHandler struct {
	name   string
	region Region
	handle func(*Machine)
}
