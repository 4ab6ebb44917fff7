//go:build !linux

package gpio

import (
	"errors"
	"log/slog"
)

func newCdevBank(chip string, offsets []int, bias Bias, logger *slog.Logger) (Bank, error) {
	return nil, errors.New("gpio: cdev backend not supported on this platform (requires Linux)")
}

func newRpioBank(lines []int, bias Bias) (Bank, error) {
	return nil, errors.New("gpio: rpio backend not supported on this platform (requires Linux)")
}
