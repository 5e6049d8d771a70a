// Package timesync disciplines the clock's notion of UTC to GPS fixes and
// classifies how trustworthy that notion currently is.
//
// The discipline runs in one of two modes. With a pulse-per-second source it
// only commits a fix on the main-loop cycle that follows a hardware edge,
// which pins the commit to the top of a UTC second. Without one it attempts a
// commit on every cycle, gated only by fix validity and freshness.
package timesync

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/la3za/GPS-clock/internal/tz"
)

// Instant is a count of civil seconds since the Unix epoch. Zero is the
// "never set" sentinel; consumers must suppress date/time output rather than
// render epoch values while an Instant is zero.
type Instant int64

// Time converts a non-zero Instant to a UTC time.Time.
func (i Instant) Time() time.Time {
	return time.Unix(int64(i), 0).UTC()
}

// maxFixAge rejects stale buffered sentences: only a fix strictly younger
// than this is a usable sync source, even if it is marked valid.
const maxFixAge = time.Second

// TimeFix carries the six date/time components of a parsed GPS sentence plus
// its validity and age (time since the decoder produced it).
type TimeFix struct {
	Valid bool
	Age   time.Duration

	Hour, Minute, Second int
	Day, Month, Year     int
}

// PulseSource is a read-and-clear one-bit signal raised by the
// pulse-per-second edge. Consume reports whether an edge fired since the last
// call and always clears the signal.
type PulseSource interface {
	Consume() bool
}

// Discipline owns the authoritative UTC instant. It is not safe for
// concurrent use; the main loop is its only caller.
type Discipline struct {
	clock clockwork.Clock
	pulse PulseSource // nil selects poll mode
	zone  *tz.Zone

	lastSync Instant
	syncedAt time.Time // clock reading at the moment lastSync was committed
}

func New(clock clockwork.Clock, pulse PulseSource, zone *tz.Zone) *Discipline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if zone == nil {
		zone = tz.UTC()
	}
	return &Discipline{clock: clock, pulse: pulse, zone: zone}
}

// PeriodicSync is called once per main-loop cycle. In edge mode it consumes
// the pulse flag exactly once (clearing it whether or not a sync follows) and
// only attempts a sync when the flag was set. The fix is accepted when valid
// and strictly younger than one second; on acceptance the instant built from the six
// fields is advanced by one whole second to cover the latency between the
// satellite's on-time marker and this code running, then committed as both
// the current instant and the sync point.
//
// It reports whether a sync was committed.
func (d *Discipline) PeriodicSync(fix TimeFix) bool {
	if d.pulse != nil {
		if !d.pulse.Consume() {
			return false
		}
	}
	if !fix.Valid || fix.Age < 0 || fix.Age >= maxFixAge {
		return false
	}

	t := time.Date(fix.Year, time.Month(fix.Month), fix.Day, fix.Hour, fix.Minute, fix.Second, 0, time.UTC)
	t = t.Add(time.Second)
	d.lastSync = Instant(t.Unix())
	d.syncedAt = d.clock.Now()
	return true
}

// CurrentUTC returns the authoritative UTC instant: the last committed sync
// advanced by the whole seconds elapsed since the commit. Zero before any
// sync has ever happened.
func (d *Discipline) CurrentUTC() Instant {
	if d.lastSync == 0 {
		return 0
	}
	return d.lastSync + Instant(d.clock.Since(d.syncedAt)/time.Second)
}

// LastSync returns the instant of the most recent accepted sync (zero if
// none).
func (d *Discipline) LastSync() Instant {
	return d.lastSync
}

// CurrentLocal projects CurrentUTC through the timezone rules, returning the
// local instant and the abbreviation of the active rule as one snapshot.
// Before any sync it returns the unset sentinel and an empty abbreviation.
func (d *Discipline) CurrentLocal() (Instant, string) {
	utc := d.CurrentUTC()
	if utc == 0 {
		return 0, ""
	}
	local, abbrev := d.zone.ToLocal(int64(utc))
	return Instant(local), abbrev
}

// Trust classifies the current sync age.
func (d *Discipline) Trust() TrustLevel {
	return Classify(d.CurrentUTC(), d.lastSync)
}
