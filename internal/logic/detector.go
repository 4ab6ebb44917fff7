package logic

// Detector remembers the last observed level of each monitored line and
// reports transitions. It is not safe for concurrent use; the sampling loop
// owns it.
type Detector struct {
	lines []int
	last  []LineState
}

// NewDetector creates a detector for the given lines, in configuration
// order. Every line starts Uninitialized, so the first observation of each
// line always reports a change.
func NewDetector(lines []int) *Detector {
	d := &Detector{
		lines: make([]int, len(lines)),
		last:  make([]LineState, len(lines)),
	}
	copy(d.lines, lines)
	for i := range d.last {
		d.last[i] = Uninitialized
	}
	return d
}

// Observe records level for the line at position index and returns the
// event to emit, if any. Identical consecutive levels produce no event.
// Any non-zero level counts as High, so a line never returns to
// Uninitialized.
func (d *Detector) Observe(index int, level Level) (ChangeEvent, bool) {
	current := StateLow
	if level != Low {
		level = High
		current = StateHigh
	}
	if current == d.last[index] {
		return ChangeEvent{}, false
	}
	d.last[index] = current
	return ChangeEvent{Line: d.lines[index], Level: level}, true
}

// Len returns the number of monitored lines.
func (d *Detector) Len() int {
	return len(d.lines)
}

// State returns the last observed state of the line at position index.
func (d *Detector) State(index int) LineState {
	return d.last[index]
}
