package monitor

import "github.com/mdelathouwer/gpio-monitor/internal/logic"

// Broadcaster fans change events out to subscribers. Implementations own
// their subscriber sets and synchronize internally. Broadcast must return
// in bounded time; delivery is best-effort and never acknowledged.
type Broadcaster interface {
	// Register announces the monitored lines, in configuration order,
	// before the first event.
	Register(lines []int)

	// Broadcast sends event to all current subscribers.
	Broadcast(event logic.ChangeEvent)
}

// Fanout forwards to several Broadcasters in order.
type Fanout []Broadcaster

func (f Fanout) Register(lines []int) {
	for _, b := range f {
		b.Register(lines)
	}
}

func (f Fanout) Broadcast(event logic.ChangeEvent) {
	for _, b := range f {
		b.Broadcast(event)
	}
}
