// Package gpio provides digital input reading with hardware abstraction.
// Input levels are exposed as bit-packed 32-bit words, the way SoC GPIO
// input registers are laid out; RegisterReader extracts single lines from
// them. Real banks use the Linux GPIO character device, memory-mapped BCM
// registers or periph.io. The fakes allow testing without hardware.
package gpio

import (
	"io"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// Reader reads the current level of a digital input line.
type Reader interface {
	// Read returns the level of line. It must not block or allocate.
	// Line identifiers are validated when the reader is configured.
	Read(line int) logic.Level
}

// Bank exposes hardware input state as bit-packed words.
// Word 0 covers lines 0..31, word 1 covers lines 32..63.
type Bank interface {
	Word(n int) uint32
}

const (
	// BankWidth is the number of lines packed into one word.
	BankWidth = 32
	// NumBanks is the number of input words.
	NumBanks = 2
	// MaxLines is the number of addressable line identifiers.
	MaxLines = BankWidth * NumBanks
)

// ValidLine reports whether id is an addressable line identifier.
func ValidLine(id int) bool {
	return id >= 0 && id < MaxLines
}

// RegisterReader reads single lines out of a Bank by shift-and-mask.
type RegisterReader struct {
	bank Bank
}

// NewRegisterReader creates a Reader over bank.
func NewRegisterReader(bank Bank) *RegisterReader {
	return &RegisterReader{bank: bank}
}

// Read returns the level of line. Lines 0..31 come from word 0, lines
// 32 and up from word 1.
func (r *RegisterReader) Read(line int) logic.Level {
	if line < BankWidth {
		return logic.Level((r.bank.Word(0) >> uint(line)) & 0x1)
	}
	return logic.Level((r.bank.Word(1) >> uint(line-BankWidth)) & 0x1)
}

// Close releases the underlying bank if it holds resources.
func (r *RegisterReader) Close() error {
	if c, ok := r.bank.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// packBit sets or clears the bit for line in words.
func packBit(words *[NumBanks]uint32, line int, high bool) {
	n, bit := line/BankWidth, uint(line%BankWidth)
	if high {
		words[n] |= 1 << bit
	} else {
		words[n] &^= 1 << bit
	}
}
