// Package mqtt broadcasts line change events to an MQTT broker, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// Topic suffixes below the configured prefix.
const (
	TopicEvents = "events"
	TopicLines  = "lines"
	TopicSystem = "system"
)

// Topics holds the full topic names for one topic prefix.
type Topics struct {
	Events string
	Lines  string
	System string
}

// NewTopics builds the topic names under prefix, e.g. "gpio/monitor/events".
func NewTopics(prefix string) Topics {
	return Topics{
		Events: prefix + "/" + TopicEvents,
		Lines:  prefix + "/" + TopicLines,
		System: prefix + "/" + TopicSystem,
	}
}

// Publisher broadcasts change events and system events over MQTT.
type Publisher interface {
	// Register publishes the monitored line set (retained).
	Register(lines []int)

	// Broadcast publishes a change event. It never blocks on the network
	// and reports no failure.
	Broadcast(event logic.ChangeEvent)

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// LinesPayload is the retained message describing the monitored lines.
type LinesPayload struct {
	GPIO []int `json:"gpio"`
}

// FormatLinesPayload creates the JSON payload for the line set.
func FormatLinesPayload(lines []int) ([]byte, error) {
	if lines == nil {
		lines = []int{}
	}
	return json.Marshal(LinesPayload{GPIO: lines})
}

// SystemPayload represents the MQTT message payload for system events
// that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
