// Package pps watches a pulse-per-second GPIO line and exposes each edge as
// a one-bit signal to the main loop.
package pps

import "sync/atomic"

// Signal is a single-writer/single-reader binary flag. The edge handler is
// the only writer (Raise) and the main loop the only reader (Consume); the
// atomic exchange makes read-and-clear race-free against a concurrent Raise.
type Signal struct {
	raised atomic.Bool
}

// Raise marks that an edge fired. O(1), non-blocking, safe from the event
// goroutine.
func (s *Signal) Raise() {
	s.raised.Store(true)
}

// Consume reports whether an edge fired since the last call and clears the
// flag. Call exactly once per main-loop cycle.
func (s *Signal) Consume() bool {
	return s.raised.CompareAndSwap(true, false)
}
