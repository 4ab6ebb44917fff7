// Package logic contains the pure change-detection logic for monitored lines.
// This package has NO hardware, network or OS dependencies; levels are
// always supplied by the caller.
package logic

// Level is the binary level of a digital input line.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// LineState is the last observed level of a line, or Uninitialized before
// the first sample.
type LineState int8

const (
	Uninitialized LineState = -1
	StateLow      LineState = LineState(Low)
	StateHigh     LineState = LineState(High)
)

func (s LineState) String() string {
	switch s {
	case StateLow:
		return "LOW"
	case StateHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// ChangeEvent reports that a line was observed at a new level.
type ChangeEvent struct {
	Line  int
	Level Level
}
