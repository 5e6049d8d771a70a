package display

import (
	"fmt"

	termbox "github.com/nsf/termbox-go"

	"github.com/la3za/GPS-clock/internal/touch"
)

// Cell size used to map panel pixels onto terminal cells.
const (
	simCellW = 8
	simCellH = 16
)

// Simulator renders the panel into a terminal via termbox and turns mouse
// clicks into touch points, so the clock can be exercised without hardware.
// It implements both Surface and touch.Source.
type Simulator struct {
	touches chan touch.Point
	quit    chan struct{}
	done    chan struct{}
}

func OpenSimulator() (*Simulator, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("display: termbox init: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	termbox.Flush()

	s := &Simulator{
		touches: make(chan touch.Point, 8),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.pollEvents()
	return s, nil
}

func (s *Simulator) pollEvents() {
	defer close(s.done)
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventMouse:
			if ev.Key != termbox.MouseLeft {
				continue
			}
			p := touch.Point{
				X:        ev.MouseX*simCellW + simCellW/2,
				Y:        ev.MouseY*simCellH + simCellH/2,
				Pressure: 100,
			}
			select {
			case s.touches <- p:
			default:
			}
		case termbox.EventKey:
			if ev.Key == termbox.KeyCtrlC || ev.Key == termbox.KeyEsc {
				close(s.quit)
				return
			}
		case termbox.EventInterrupt:
			return
		}
	}
}

// Quit is closed when the user asks the simulator to exit (Esc or Ctrl-C).
func (s *Simulator) Quit() <-chan struct{} { return s.quit }

// Read implements touch.Source over queued mouse clicks.
func (s *Simulator) Read() (touch.Point, bool) {
	select {
	case p := <-s.touches:
		return p, true
	default:
		return touch.Point{}, false
	}
}

func (s *Simulator) FillRect(x, y, w, h int, c Color) {
	attr := toAttr(c)
	for cy := y / simCellH; cy <= (y+h-1)/simCellH; cy++ {
		for cx := x / simCellW; cx <= (x+w-1)/simCellW; cx++ {
			termbox.SetCell(cx, cy, ' ', termbox.ColorDefault, attr)
		}
	}
}

func (s *Simulator) Text(x, y, size int, fg, bg Color, str string) {
	cx := x / simCellW
	cy := y / simCellH
	fa := toAttr(fg)
	ba := toAttr(bg)
	for i, r := range str {
		termbox.SetCell(cx+i, cy, r, fa, ba)
	}
}

func (s *Simulator) Triangle(x0, y0, x1, y1, x2, y2 int, c Color) {
	termbox.SetCell(x0/simCellW, y0/simCellH, '^', toAttr(c), termbox.ColorDefault)
}

func (s *Simulator) Flush() {
	termbox.Flush()
}

func (s *Simulator) Close() error {
	termbox.Interrupt()
	<-s.done
	termbox.Close()
	return nil
}

func toAttr(c Color) termbox.Attribute {
	switch c {
	case Black:
		return termbox.ColorBlack
	case White:
		return termbox.ColorWhite
	case Yellow:
		return termbox.ColorYellow
	case Green:
		return termbox.ColorGreen
	case Red:
		return termbox.ColorRed
	case Orange:
		return termbox.ColorMagenta
	case Cyan:
		return termbox.ColorCyan
	case Gray, DarkGray:
		return termbox.ColorDarkGray
	default:
		return termbox.ColorWhite
	}
}
