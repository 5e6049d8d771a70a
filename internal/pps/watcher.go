package pps

import "fmt"

// Config selects the GPIO chip and line carrying the receiver's
// pulse-per-second output.
type Config struct {
	Enable bool
	Chip   string // e.g. "gpiochip0"
	Line   int    // BCM offset
}

// Watcher requests the configured line with rising-edge events and raises the
// signal on each event. When disabled (or on platforms without the GPIO
// character device) the discipline falls back to poll mode.
type Watcher struct {
	cfg    Config
	sig    Signal
	closer func() error
}

func NewWatcher(cfg Config) *Watcher {
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}
	return &Watcher{cfg: cfg}
}

// Start requests the edge-event line. Failure leaves the watcher disabled so
// the clock keeps running in poll mode.
func (w *Watcher) Start() error {
	if w == nil {
		return fmt.Errorf("pps: watcher is nil")
	}
	if !w.cfg.Enable {
		return nil
	}
	closer, err := requestEdgeLine(w.cfg.Chip, w.cfg.Line, w.sig.Raise)
	if err != nil {
		return fmt.Errorf("pps: request line %s:%d: %w", w.cfg.Chip, w.cfg.Line, err)
	}
	w.closer = closer
	return nil
}

// Enabled reports whether edge events are being delivered.
func (w *Watcher) Enabled() bool {
	return w != nil && w.closer != nil
}

// Signal returns the flag the discipline consumes, or nil while the watcher
// is not delivering edges (selecting poll mode).
func (w *Watcher) Signal() *Signal {
	if !w.Enabled() {
		return nil
	}
	return &w.sig
}

func (w *Watcher) Close() {
	if w == nil || w.closer == nil {
		return
	}
	_ = w.closer()
	w.closer = nil
}
