// Package status provides a thread-safe record of what has been broadcast
// for each monitored line. It is read by HTTP handlers and MQTT lifecycle
// events.
package status

import (
	"sync"
	"time"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs int64
	Backend    string
	Broker     string
	HTTPAddr   string
}

// Line is the broadcast history of one monitored line.
type Line struct {
	GPIO       int
	State      logic.LineState
	Changes    int
	LastChange time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type; safe to use after the lock is released.
type Snapshot struct {
	Lines         []Line
	Subscribers   int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether every line has been observed at least once.
func (s Snapshot) Ready() bool {
	if len(s.Lines) == 0 {
		return false
	}
	for _, l := range s.Lines {
		if l.State == logic.Uninitialized {
			return false
		}
	}
	return true
}

// Tracker holds mutable daemon state behind an RWMutex. It is a
// Broadcaster, so it sees exactly what subscribers were sent.
type Tracker struct {
	mu    sync.RWMutex
	snap  Snapshot
	index map[int]int
	now   func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		index: make(map[int]int),
		now:   time.Now,
	}
}

// Register resets the tracked lines to the given set, all UNKNOWN.
func (t *Tracker) Register(lines []int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Lines = make([]Line, len(lines))
	t.index = make(map[int]int, len(lines))
	for i, id := range lines {
		t.snap.Lines[i] = Line{GPIO: id, State: logic.Uninitialized}
		t.index[id] = i
	}
}

// Broadcast records a change event. Events for unregistered lines are
// ignored.
func (t *Tracker) Broadcast(event logic.ChangeEvent) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[event.Line]
	if !ok {
		return
	}
	l := &t.snap.Lines[i]
	l.State = logic.LineState(event.Level)
	l.Changes++
	l.LastChange = now
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetSubscribers sets the number of connected websocket subscribers.
func (t *Tracker) SetSubscribers(n int) {
	t.mu.Lock()
	t.snap.Subscribers = n
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Lines = append([]Line(nil), t.snap.Lines...)
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
