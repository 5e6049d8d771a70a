package statuspub

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNotifier_PublishesOnlyTransitions(t *testing.T) {
	fake := NewFakePublisher()
	n := NewNotifier(fake)
	now := time.Date(2023, 6, 10, 10, 0, 0, 0, time.UTC)

	n.Observe(now, "lost", -1, 0)
	n.Observe(now.Add(time.Second), "lost", -1, 0)
	n.Observe(now.Add(2*time.Second), "fresh", 0, 8)
	n.Observe(now.Add(3*time.Second), "fresh", 1, 8)

	if len(fake.TrustEvents) != 2 {
		t.Fatalf("published %d events, want 2: %+v", len(fake.TrustEvents), fake.TrustEvents)
	}
	first, second := fake.TrustEvents[0], fake.TrustEvents[1]
	if first.Trust != "lost" || first.Previous != "" {
		t.Fatalf("first event = %+v", first)
	}
	if second.Trust != "fresh" || second.Previous != "lost" || second.Satellites != 8 {
		t.Fatalf("second event = %+v", second)
	}
}

func TestNotifier_PublishErrorDoesNotRepeat(t *testing.T) {
	fake := NewFakePublisher()
	fake.PublishError = errFake
	n := NewNotifier(fake)
	now := time.Now().UTC()

	n.Observe(now, "fresh", 0, 5)
	fake.PublishError = nil
	n.Observe(now.Add(time.Second), "fresh", 1, 5)

	if len(fake.TrustEvents) != 0 {
		t.Fatalf("published %d events, want 0 (transition already recorded)", len(fake.TrustEvents))
	}
}

func TestNotifier_NilPublisherIsNoop(t *testing.T) {
	var n *Notifier
	n.Observe(time.Now(), "fresh", 0, 0) // must not panic
	NewNotifier(nil).Observe(time.Now(), "fresh", 0, 0)
}

func TestFormatTrustPayload(t *testing.T) {
	b, err := FormatTrustPayload(TrustEvent{
		Timestamp:  time.Date(2023, 6, 10, 10, 0, 1, 0, time.UTC),
		Trust:      "marginal",
		Previous:   "fresh",
		SyncAgeSec: 3601,
		Satellites: 4,
	})
	if err != nil {
		t.Fatalf("FormatTrustPayload: %v", err)
	}

	var got struct {
		Clock struct {
			Timestamp  string `json:"timestamp"`
			Trust      string `json:"trust"`
			Previous   string `json:"previous"`
			SyncAgeSec int64  `json:"sync_age_sec"`
			Satellites int    `json:"satellites"`
		} `json:"clock"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Clock.Timestamp != "2023-06-10T10:00:01Z" {
		t.Errorf("timestamp = %q", got.Clock.Timestamp)
	}
	if got.Clock.Trust != "marginal" || got.Clock.Previous != "fresh" {
		t.Errorf("trust=%q previous=%q", got.Clock.Trust, got.Clock.Previous)
	}
	if got.Clock.SyncAgeSec != 3601 || got.Clock.Satellites != 4 {
		t.Errorf("sync_age_sec=%d satellites=%d", got.Clock.SyncAgeSec, got.Clock.Satellites)
	}
}

func TestFormatSystemPayload_OmitsEmptyReason(t *testing.T) {
	b, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2023, 6, 10, 10, 0, 0, 0, time.UTC),
		Event:     "STARTUP",
	})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sys := raw["system"]
	if sys["event"] != "STARTUP" {
		t.Errorf("event = %v", sys["event"])
	}
	if _, present := sys["reason"]; present {
		t.Errorf("reason should be omitted when empty")
	}
}

var errFake = errSentinel("publish failed")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
