//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioBank reads BCM283x input registers through /dev/gpiomem.
type rpioBank struct {
	lines []int
	words [NumBanks]uint32
}

func newRpioBank(lines []int, bias Bias) (*rpioBank, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}
	for _, line := range lines {
		pin := rpio.Pin(line)
		pin.Input()
		switch bias {
		case BiasPullUp:
			pin.PullUp()
		case BiasDisabled:
			pin.PullOff()
		default:
			pin.PullDown()
		}
	}
	return &rpioBank{lines: append([]int(nil), lines...)}, nil
}

func (b *rpioBank) Word(n int) uint32 {
	for _, line := range b.lines {
		if line/BankWidth != n {
			continue
		}
		packBit(&b.words, line, rpio.Pin(line).Read() == rpio.High)
	}
	return b.words[n]
}

func (b *rpioBank) Close() error {
	for _, line := range b.lines {
		rpio.Pin(line).PullDown()
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpio memory: %w", err)
	}
	return nil
}
