package gpio

import (
	"errors"
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periphBank reads lines through periph.io host drivers. Pins are looked
// up by their BCM name, e.g. "GPIO4".
type periphBank struct {
	lines []int
	pins  []pgpio.PinIO
	words [NumBanks]uint32
}

func newPeriphBank(lines []int, bias Bias) (*periphBank, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	pull := pgpio.PullDown
	switch bias {
	case BiasPullUp:
		pull = pgpio.PullUp
	case BiasDisabled:
		pull = pgpio.Float
	}

	b := &periphBank{lines: append([]int(nil), lines...)}
	for _, line := range lines {
		pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", line))
		if pin == nil {
			return nil, fmt.Errorf("gpio line %d: no such pin", line)
		}
		if err := pin.In(pull, pgpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure GPIO%d as input: %w", line, err)
		}
		b.pins = append(b.pins, pin)
	}
	return b, nil
}

func (b *periphBank) Word(n int) uint32 {
	for i, line := range b.lines {
		if line/BankWidth != n {
			continue
		}
		packBit(&b.words, line, b.pins[i].Read() == pgpio.High)
	}
	return b.words[n]
}

func (b *periphBank) Close() error {
	var errs []error
	for i, pin := range b.pins {
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt GPIO%d: %w", b.lines[i], err))
		}
	}
	return errors.Join(errs...)
}
