//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"
)

// cdevBank reads lines through the Linux GPIO character device.
type cdevBank struct {
	lines   *gpiocdev.Lines
	offsets []int
	values  []int
	words   [NumBanks]uint32
	errs    readErrors
}

func newCdevBank(chip string, offsets []int, bias Bias, logger *slog.Logger) (*cdevBank, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithConsumer("gpio-monitor"),
	}
	switch bias {
	case BiasPullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case BiasDisabled:
		opts = append(opts, gpiocdev.WithBiasDisabled)
	default:
		opts = append(opts, gpiocdev.WithPullDown)
	}

	lines, err := gpiocdev.RequestLines(chip, offsets, opts...)
	if err != nil {
		return nil, fmt.Errorf("request lines %v on %s: %w", offsets, chip, err)
	}

	b := &cdevBank{
		lines:   lines,
		offsets: append([]int(nil), offsets...),
		values:  make([]int, len(offsets)),
		errs:    readErrors{logger: logger},
	}
	return b, nil
}

// Word refreshes all requested lines and returns word n. On a read error
// the previous word is returned.
func (b *cdevBank) Word(n int) uint32 {
	err := b.lines.Values(b.values)
	b.errs.observe(err)
	if err != nil {
		return b.words[n]
	}
	for i, off := range b.offsets {
		packBit(&b.words, off, b.values[i] != 0)
	}
	return b.words[n]
}

// Close reconfigures lines to input with pull-down (Pi boot defaults) and
// releases them.
func (b *cdevBank) Close() error {
	var errs []error
	if err := b.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure lines: %w", err))
	}
	if err := b.lines.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close lines: %w", err))
	}
	return errors.Join(errs...)
}
