package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mdelathouwer/gpio-monitor/internal/gpio"
)

// printStateCmd reads each configured line once and exits.
var printStateCmd = &cobra.Command{
	Use:   "print-state",
	Short: "Print the current level of each line and exit",
	Long: `Read every configured line once, in order, and print its level.

Example:
  gpio-monitor print-state --lines 4,16
  GPIO 4: LOW
  GPIO 16: HIGH`,
	RunE: runPrintState,
}

func init() {
	rootCmd.AddCommand(printStateCmd)
	addConfigFlags(printStateCmd)
}

func runPrintState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	reader, err := gpio.Open(gpio.Options{
		Backend: gpio.Backend(cfg.GPIO.Backend),
		Chip:    cfg.GPIO.Chip,
		Bias:    gpio.Bias(cfg.GPIO.Bias),
		Lines:   cfg.Lines,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	printState(cmd.OutOrStdout(), reader, cfg.Lines)
	return nil
}

func printState(w io.Writer, reader gpio.Reader, lines []int) {
	for _, line := range lines {
		fmt.Fprintf(w, "GPIO %d: %s\n", line, reader.Read(line))
	}
}
