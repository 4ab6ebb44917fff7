package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates the configuration without touching hardware.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration",
	Long: `Validate the configuration built from the config file and flags without
opening any GPIO lines.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  gpio-monitor validate -c gpio-monitor.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addConfigFlags(validateCmd)
	addServeFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	broker := cfg.MQTT.Broker
	if broker == "" {
		broker = "(disabled)"
	}
	httpAddr := cfg.HTTP.Addr
	if httpAddr == "" {
		httpAddr = "(disabled)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Lines:    %v\n", cfg.Lines)
	fmt.Fprintf(out, "  Interval: %s\n", cfg.Interval.Duration())
	fmt.Fprintf(out, "  Backend:  %s (%s, %s)\n", cfg.GPIO.Backend, cfg.GPIO.Chip, cfg.GPIO.Bias)
	fmt.Fprintf(out, "  HTTP:     %s\n", httpAddr)
	fmt.Fprintf(out, "  MQTT:     %s\n", broker)
	return nil
}
