package gpio

import (
	"fmt"
	"log/slog"
)

// Backend names a hardware access method.
type Backend string

const (
	// BackendCdev uses the Linux GPIO character device (gpiochipN).
	BackendCdev Backend = "cdev"
	// BackendRpio uses memory-mapped BCM283x registers via /dev/gpiomem.
	BackendRpio Backend = "rpio"
	// BackendPeriph uses periph.io host drivers.
	BackendPeriph Backend = "periph"
)

// Bias is the input bias applied when lines are requested.
type Bias string

const (
	BiasPullDown Bias = "pull-down"
	BiasPullUp   Bias = "pull-up"
	BiasDisabled Bias = "disabled"
)

// DefaultChip is the character device used by the cdev backend.
const DefaultChip = "gpiochip0"

// Options selects and configures a hardware bank.
type Options struct {
	Backend Backend
	Chip    string
	Bias    Bias
	Lines   []int
	Logger  *slog.Logger
}

// Open requests the configured lines as inputs on the selected backend and
// returns a RegisterReader over them. The caller must Close it.
func Open(opts Options) (*RegisterReader, error) {
	for _, line := range opts.Lines {
		if !ValidLine(line) {
			return nil, fmt.Errorf("gpio line %d: out of range 0..%d", line, MaxLines-1)
		}
	}
	if opts.Chip == "" {
		opts.Chip = DefaultChip
	}
	if opts.Bias == "" {
		opts.Bias = BiasPullDown
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("component", "gpio", "backend", string(opts.Backend))

	var (
		bank Bank
		err  error
	)
	switch opts.Backend {
	case BackendCdev, "":
		bank, err = newCdevBank(opts.Chip, opts.Lines, opts.Bias, logger)
	case BackendRpio:
		bank, err = newRpioBank(opts.Lines, opts.Bias)
	case BackendPeriph:
		bank, err = newPeriphBank(opts.Lines, opts.Bias)
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewRegisterReader(bank), nil
}
