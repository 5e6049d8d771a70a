package touch

import "testing"

func TestCalibration_Map(t *testing.T) {
	cal := Calibration{Width: 320, Height: 240, MinPressure: 10}

	cases := []struct {
		name   string
		cal    Calibration
		in     Point
		x, y   int
		wantOK bool
	}{
		{"plain", cal, Point{X: 100, Y: 50, Pressure: 50}, 100, 50, true},
		{"light touch rejected", cal, Point{X: 100, Y: 50, Pressure: 5}, 0, 0, false},
		{"outside right edge", cal, Point{X: 320, Y: 50, Pressure: 50}, 0, 0, false},
		{"outside bottom", cal, Point{X: 10, Y: 240, Pressure: 50}, 0, 0, false},
		{"negative", cal, Point{X: -1, Y: 10, Pressure: 50}, 0, 0, false},
		{
			"flip x",
			Calibration{Width: 320, Height: 240, FlipX: true},
			Point{X: 0, Y: 0, Pressure: 1},
			319, 0, true,
		},
		{
			"flip y",
			Calibration{Width: 320, Height: 240, FlipY: true},
			Point{X: 0, Y: 0, Pressure: 1},
			0, 239, true,
		},
		{
			"offsets",
			Calibration{Width: 320, Height: 240, OffsetX: -10, OffsetY: 5},
			Point{X: 100, Y: 100, Pressure: 1},
			90, 105, true,
		},
		{
			"offset pushes out of panel",
			Calibration{Width: 320, Height: 240, OffsetX: 30},
			Point{X: 310, Y: 100, Pressure: 1},
			0, 0, false,
		},
	}
	for _, tc := range cases {
		x, y, ok := tc.cal.Map(tc.in)
		if ok != tc.wantOK || x != tc.x || y != tc.y {
			t.Errorf("%s: Map(%+v) = (%d,%d,%v), want (%d,%d,%v)", tc.name, tc.in, x, y, ok, tc.x, tc.y, tc.wantOK)
		}
	}
}
