package status

import (
	"encoding/json"
	"time"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Lines         []LineJSON `json:"lines"`
	Ready         bool       `json:"ready"`
	Subscribers   int        `json:"subscribers"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// LineJSON is the JSON representation of one line. State is null until
// the line has been observed.
type LineJSON struct {
	GPIO       int    `json:"gpio"`
	State      *int   `json:"state"`
	Changes    int    `json:"changes"`
	LastChange string `json:"last_change,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs int64  `json:"interval_ms"`
	Backend    string `json:"backend"`
	Broker     string `json:"broker,omitempty"`
	HTTPAddr   string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	lines := make([]LineJSON, len(snap.Lines))
	for i, l := range snap.Lines {
		lj := LineJSON{GPIO: l.GPIO, Changes: l.Changes}
		if l.State != logic.Uninitialized {
			v := int(l.State)
			lj.State = &v
		}
		if !l.LastChange.IsZero() {
			lj.LastChange = l.LastChange.UTC().Format(time.RFC3339Nano)
		}
		lines[i] = lj
	}

	return StatusInner{
		Lines:         lines,
		Ready:         snap.Ready(),
		Subscribers:   snap.Subscribers,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			IntervalMs: snap.Config.IntervalMs,
			Backend:    snap.Config.Backend,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
