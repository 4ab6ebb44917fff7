package mqtt

import (
	"sync"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Lines contains every line set passed to Register.
	Lines [][]int

	// Events contains all change events that were broadcast.
	Events []logic.ChangeEvent

	// Payloads contains the JSON payloads of the change events.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Register records the line set.
func (f *FakePublisher) Register(lines []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lines = append(f.Lines, append([]int(nil), lines...))
}

// Broadcast records the change event.
func (f *FakePublisher) Broadcast(event logic.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Events = append(f.Events, event)
	if payload, err := logic.FormatPayload(event); err == nil {
		f.Payloads = append(f.Payloads, payload)
	}
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Snapshot returns copies of the recorded change events and payloads.
func (f *FakePublisher) Snapshot() ([]logic.ChangeEvent, [][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.ChangeEvent(nil), f.Events...), append([][]byte(nil), f.Payloads...)
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lines = nil
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishSystemError = nil
	f.Connected = false
}
