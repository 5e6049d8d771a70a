package display

// Recorder is a Surface that records draw calls for test assertions.
type Recorder struct {
	Ops []Op
}

type Op struct {
	Kind string // "rect", "text", "triangle", "flush"
	X, Y int
	W, H int // rect only
	Size int
	Fg   Color
	Bg   Color
	Text string
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) FillRect(x, y, w, h int, c Color) {
	r.Ops = append(r.Ops, Op{Kind: "rect", X: x, Y: y, W: w, H: h, Bg: c})
}

func (r *Recorder) Text(x, y, size int, fg, bg Color, s string) {
	r.Ops = append(r.Ops, Op{Kind: "text", X: x, Y: y, Size: size, Fg: fg, Bg: bg, Text: s})
}

func (r *Recorder) Triangle(x0, y0, x1, y1, x2, y2 int, c Color) {
	r.Ops = append(r.Ops, Op{Kind: "triangle", X: x0, Y: y0, Fg: c})
}

func (r *Recorder) Flush() {
	r.Ops = append(r.Ops, Op{Kind: "flush"})
}

// Texts returns every string drawn, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// HasText reports whether s was drawn verbatim.
func (r *Recorder) HasText(s string) bool {
	for _, op := range r.Ops {
		if op.Kind == "text" && op.Text == s {
			return true
		}
	}
	return false
}

// ClearsPoint reports whether any recorded fill covered the pixel at (x, y).
func (r *Recorder) ClearsPoint(x, y int) bool {
	for _, op := range r.Ops {
		if op.Kind == "rect" && op.X <= x && x < op.X+op.W && op.Y <= y && y < op.Y+op.H {
			return true
		}
	}
	return false
}

// Reset discards recorded ops.
func (r *Recorder) Reset() {
	r.Ops = nil
}
