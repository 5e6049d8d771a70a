package statuspub

import (
	"log"
	"time"
)

// Notifier deduplicates trust observations into transition events. The main
// loop calls Observe every cycle; a publish happens only when the level
// changed (the first observation counts as a change).
//
// Not safe for concurrent use.
type Notifier struct {
	pub  Publisher
	last string
	seen bool
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

func (n *Notifier) Observe(now time.Time, trust string, syncAgeSec int64, satellites int) {
	if n == nil || n.pub == nil {
		return
	}
	if n.seen && trust == n.last {
		return
	}

	ev := TrustEvent{
		Timestamp:  now,
		Trust:      trust,
		SyncAgeSec: syncAgeSec,
		Satellites: satellites,
	}
	if n.seen {
		ev.Previous = n.last
	}
	// The transition is recorded even when the publish fails; retrying the
	// same event every cycle would flood a flapping broker.
	n.last = trust
	n.seen = true

	if err := n.pub.PublishTrust(ev); err != nil {
		log.Printf("statuspub: publish trust=%s: %v", trust, err)
	}
}
