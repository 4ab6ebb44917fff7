// Command gpio-monitor samples GPIO input lines and broadcasts level changes
// to websocket subscribers and, optionally, an MQTT broker.
//
// Usage:
//
//	gpio-monitor serve --lines 4,16          # Start monitoring
//	gpio-monitor serve -c gpio-monitor.yaml  # Start from a config file
//	gpio-monitor print-state --lines 4,16    # Print current levels and exit
//	gpio-monitor validate -c gpio-monitor.yaml
//	gpio-monitor version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "gpio-monitor",
	Short: "Watch GPIO input lines and broadcast level changes",
	Long: `gpio-monitor samples a fixed set of GPIO input lines at a steady interval
and broadcasts every level change as {"gpio":n,"state":0|1}.

Subscribers connect to the /ws websocket on the HTTP server. When a broker
is configured the same events are published to MQTT.

Quick start:
  gpio-monitor serve --lines 4,16
  open http://localhost/ in a browser`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gpio-monitor %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// newLogger creates the process logger. format is "text" or "json".
func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
