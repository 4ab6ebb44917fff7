package gpio

import (
	"sync"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// FakeReader is a test double that returns scripted levels per line.
// It is safe to inspect from a test goroutine while a sampling loop reads.
type FakeReader struct {
	mu sync.Mutex

	// Script contains the levels to return for each line.
	// Each Read(line) consumes the next level for that line; once
	// exhausted the last level repeats. Unscripted lines read Low.
	Script map[int][]logic.Level

	index map[int]int
	reads []int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeReader creates a FakeReader with the given script.
func NewFakeReader(script map[int][]logic.Level) *FakeReader {
	return &FakeReader{Script: script, index: make(map[int]int)}
}

// Read returns the next scripted level for line.
func (f *FakeReader) Read(line int) logic.Level {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads = append(f.reads, line)
	levels := f.Script[line]
	if len(levels) == 0 {
		return logic.Low
	}
	i := f.index[line]
	if i < len(levels)-1 {
		f.index[line] = i + 1
	}
	return levels[i]
}

// Reads returns the line identifiers passed to Read, in call order.
func (f *FakeReader) Reads() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.reads...)
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset rewinds every script and clears the read log.
func (f *FakeReader) Reset() {
	f.mu.Lock()
	f.index = make(map[int]int)
	f.reads = nil
	f.Closed = false
	f.mu.Unlock()
}

// FakeBank is a Bank whose words are set directly by tests.
type FakeBank struct {
	Words [NumBanks]uint32

	// Calls counts Word calls per word index.
	Calls [NumBanks]int
}

// Set sets the level of line.
func (b *FakeBank) Set(line int, level logic.Level) {
	packBit(&b.Words, line, level == logic.High)
}

// Word returns word n.
func (b *FakeBank) Word(n int) uint32 {
	b.Calls[n]++
	return b.Words[n]
}
