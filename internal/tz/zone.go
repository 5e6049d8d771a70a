// Package tz evaluates timezone rules for the clock.
//
// A Zone bundles a standard/daylight rule pair (IANA tzdata via
// time.Location). ToLocal returns the local civil instant together with the
// abbreviation of the rule that produced it, from a single evaluation, so the
// displayed offset and the displayed abbreviation can never disagree across a
// transition boundary.
package tz

import (
	"fmt"
	"strings"
	"time"
)

type Zone struct {
	name string
	loc  *time.Location
}

// Load resolves an IANA zone name ("Europe/Oslo"). Empty selects UTC.
func Load(name string) (*Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utc") {
		return &Zone{name: "UTC", loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz: load %q: %w", name, err)
	}
	return &Zone{name: name, loc: loc}, nil
}

// UTC returns the zone with no offset and the fixed abbreviation "UTC".
func UTC() *Zone {
	return &Zone{name: "UTC", loc: time.UTC}
}

func (z *Zone) Name() string {
	if z == nil {
		return ""
	}
	return z.name
}

// ToLocal maps a UTC instant (Unix seconds) to the local civil instant and
// the abbreviation of the active rule. Both come from the same rule lookup.
func (z *Zone) ToLocal(utcSec int64) (int64, string) {
	if z == nil || z.loc == nil {
		return utcSec, "UTC"
	}
	abbrev, offset := time.Unix(utcSec, 0).In(z.loc).Zone()
	return utcSec + int64(offset), abbrev
}
