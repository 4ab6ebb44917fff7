// Package metrics exposes prometheus collectors for the monitor. Metrics is
// itself a Broadcaster, so it counts exactly the events sent to subscribers.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// Metrics holds the daemon's collectors.
type Metrics struct {
	events      *prometheus.CounterVec
	lines       prometheus.Gauge
	subscribers prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gpio_monitor_events_total",
			Help: "Level changes broadcast to subscribers.",
		}, []string{"gpio", "state"}),
		lines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gpio_monitor_lines",
			Help: "Number of monitored lines.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gpio_monitor_subscribers",
			Help: "Connected websocket subscribers.",
		}),
	}
	reg.MustRegister(m.events, m.lines, m.subscribers)
	return m
}

// Register sets the line gauge and pre-creates the per-line series so
// that they export zero before the first change.
func (m *Metrics) Register(lines []int) {
	m.lines.Set(float64(len(lines)))
	for _, id := range lines {
		gpio := strconv.Itoa(id)
		m.events.WithLabelValues(gpio, "0")
		m.events.WithLabelValues(gpio, "1")
	}
}

// Broadcast counts a change event.
func (m *Metrics) Broadcast(event logic.ChangeEvent) {
	m.events.WithLabelValues(strconv.Itoa(event.Line), strconv.Itoa(int(event.Level))).Inc()
}

// SetSubscribers sets the subscriber gauge.
func (m *Metrics) SetSubscribers(n int) {
	m.subscribers.Set(float64(n))
}
