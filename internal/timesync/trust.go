package timesync

// TrustLevel classifies how long ago the clock was last disciplined by a
// satellite fix.
type TrustLevel int

const (
	TrustLost TrustLevel = iota
	TrustMarginal
	TrustFresh
)

const (
	freshMaxAgeSec    = 3600  // under one hour: fresh
	marginalMaxAgeSec = 86400 // under one day: marginal
)

func (t TrustLevel) String() string {
	switch t {
	case TrustFresh:
		return "fresh"
	case TrustMarginal:
		return "marginal"
	default:
		return "lost"
	}
}

// Classify maps the age of the last sync to a trust level. A zero lastSync
// means the clock has never been disciplined and is always lost.
func Classify(now, lastSync Instant) TrustLevel {
	if lastSync == 0 {
		return TrustLost
	}
	age := int64(now - lastSync)
	switch {
	case age < freshMaxAgeSec:
		return TrustFresh
	case age < marginalMaxAgeSec:
		return TrustMarginal
	default:
		return TrustLost
	}
}
