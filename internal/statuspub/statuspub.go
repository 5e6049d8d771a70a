// Package statuspub publishes clock trust transitions and lifecycle events
// over MQTT, with abstraction for testing.
package statuspub

import (
	"encoding/json"
	"time"
)

// TopicTrust is the MQTT topic for trust transitions.
const TopicTrust = "clock/gpsclock/trust"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "clock/gpsclock/system"

// Publisher publishes clock events.
type Publisher interface {
	// PublishTrust sends a trust transition to the broker.
	// Returns error if publishing fails (must not crash the process).
	PublishTrust(event TrustEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// TrustEvent describes one trust level transition.
type TrustEvent struct {
	Timestamp  time.Time
	Trust      string // "fresh", "marginal", "lost"
	Previous   string // empty on the first observation
	SyncAgeSec int64  // -1 when never synced
	Satellites int
}

// SystemEvent represents a lifecycle event (e.g. "STARTUP", "SHUTDOWN").
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	Reason    string // e.g. "SIGTERM" (shutdown only)
}

type trustPayload struct {
	Clock trustPayloadInner `json:"clock"`
}

type trustPayloadInner struct {
	Timestamp  string `json:"timestamp"`
	Trust      string `json:"trust"`
	Previous   string `json:"previous,omitempty"`
	SyncAgeSec int64  `json:"sync_age_sec"`
	Satellites int    `json:"satellites"`
}

// FormatTrustPayload creates the JSON payload for a trust transition.
func FormatTrustPayload(event TrustEvent) ([]byte, error) {
	payload := trustPayload{
		Clock: trustPayloadInner{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Trust:      event.Trust,
			Previous:   event.Previous,
			SyncAgeSec: event.SyncAgeSec,
			Satellites: event.Satellites,
		},
	}
	return json.Marshal(payload)
}

type systemPayload struct {
	System systemPayloadInner `json:"system"`
}

type systemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := systemPayload{
		System: systemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
