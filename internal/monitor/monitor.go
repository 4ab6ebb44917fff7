// Package monitor runs the sampling loop: it reads every monitored line once
// per interval, detects level changes and forwards them to a Broadcaster.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mdelathouwer/gpio-monitor/internal/gpio"
	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// DefaultInterval is used when no sampling interval is configured.
const DefaultInterval = 50 * time.Millisecond

var (
	ErrNoLines         = errors.New("no lines configured")
	ErrInvalidLine     = errors.New("invalid line")
	ErrDuplicateLine   = errors.New("duplicate line")
	ErrInvalidInterval = errors.New("invalid sampling interval")
)

// Monitor samples a fixed, ordered set of lines. Lines and interval are
// immutable after New.
type Monitor struct {
	lines    []int
	interval time.Duration
	reader   gpio.Reader
	out      Broadcaster
	detector *logic.Detector
	wait     func(time.Duration) <-chan time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithWait replaces the suspension between passes. wait is called once per
// pass with the sampling interval; the next pass starts when the returned
// channel delivers.
func WithWait(wait func(time.Duration) <-chan time.Time) Option {
	return func(m *Monitor) {
		m.wait = wait
	}
}

// New validates the configuration and creates a Monitor. A zero interval
// selects DefaultInterval. Invalid configuration is rejected here, never
// discovered while sampling.
func New(lines []int, interval time.Duration, reader gpio.Reader, out Broadcaster, opts ...Option) (*Monitor, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	seen := make(map[int]bool, len(lines))
	for _, line := range lines {
		if !gpio.ValidLine(line) {
			return nil, fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidLine, line, gpio.MaxLines-1)
		}
		if seen[line] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateLine, line)
		}
		seen[line] = true
	}
	if interval < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	if interval == 0 {
		interval = DefaultInterval
	}
	if reader == nil {
		return nil, errors.New("monitor: nil reader")
	}
	if out == nil {
		return nil, errors.New("monitor: nil broadcaster")
	}

	m := &Monitor{
		lines:    append([]int(nil), lines...),
		interval: interval,
		reader:   reader,
		out:      out,
		detector: logic.NewDetector(lines),
		wait:     time.After,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Lines returns a copy of the monitored lines in configuration order.
func (m *Monitor) Lines() []int {
	return append([]int(nil), m.lines...)
}

// Interval returns the sampling interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Start registers the monitored lines with the Broadcaster and runs the
// sampling loop in a new goroutine until ctx is cancelled. The returned
// channel is closed when the loop has stopped. Calling Start twice starts
// two loops over the same state; callers must not do that.
func (m *Monitor) Start(ctx context.Context) <-chan struct{} {
	m.out.Register(m.Lines())

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()
	return done
}

// Run alternates between a sampling pass and a suspension of one interval
// until ctx is cancelled. Cancellation is checked at the pass boundary,
// after the suspension and before the next pass; a pass in progress always
// completes.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		m.Pass()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wait(m.interval):
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Pass reads every line once in configuration order and forwards each
// detected change before reading the next line.
func (m *Monitor) Pass() {
	for i, line := range m.lines {
		level := m.reader.Read(line)
		if event, ok := m.detector.Observe(i, level); ok {
			m.out.Broadcast(event)
		}
	}
}
