// Package display defines the pixel drawing surface the screens render to,
// plus a recording fake for tests and a termbox-based simulator for running
// without panel hardware.
package display

// Panel dimensions in pixels (landscape).
const (
	PanelW = 320
	PanelH = 240
)

// Color is RGB565, the native format of the panel driver.
type Color uint16

const (
	Black    Color = 0x0000
	White    Color = 0xFFFF
	Yellow   Color = 0xFFE0
	Green    Color = 0x07E0
	Red      Color = 0xF800
	Orange   Color = 0xFD20
	Gray     Color = 0x8410
	DarkGray Color = 0x4208
	Cyan     Color = 0x07FF
)

// Font sizes as multiples of the base 6x8 glyph cell.
const (
	FontSmall  = 2
	FontMedium = 3
	FontLarge  = 4
	FontHuge   = 6
)

// Surface accepts draw primitives. Calls execute synchronously before the
// next one; nothing about the surface's state is relied upon beyond that.
// Flush pushes any buffered output to the device.
type Surface interface {
	FillRect(x, y, w, h int, c Color)
	Text(x, y, size int, fg, bg Color, s string)
	Triangle(x0, y0, x1, y1, x2, y2 int, c Color)
	Flush()
}
