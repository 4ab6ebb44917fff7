package main

import (
	"github.com/spf13/cobra"

	"github.com/mdelathouwer/gpio-monitor/internal/config"
)

// addConfigFlags registers the flags shared by commands that load a
// configuration. Flags that were set explicitly override the file.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("config", "c", "", "path to config file")
	f.IntSlice("lines", nil, "GPIO lines to monitor, in sampling order (e.g. 4,16)")
	f.Duration("interval", config.DefaultInterval, "pause between sampling passes")
	f.String("backend", config.DefaultBackend, "GPIO backend: cdev, rpio or periph")
	f.String("chip", config.DefaultChip, "GPIO character device (cdev backend)")
	f.String("bias", config.DefaultBias, "input bias: pull-down, pull-up or disabled")
	f.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	f.String("log-format", config.DefaultLogFormat, "log format: text or json")
}

// addServeFlags registers the flags only the serve command uses.
func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("http", config.DefaultHTTPAddr, "HTTP listen address (empty to disable)")
	f.String("broker", "", "MQTT broker URL (empty to disable MQTT)")
	f.String("topic-prefix", config.DefaultTopicPrefix, "MQTT topic prefix")
}

// loadConfig builds the effective configuration: defaults, then the
// config file if given, then explicitly set flags. The result is validated.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()

	cfg := config.Default()
	if path, _ := f.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	if f.Changed("lines") {
		cfg.Lines, _ = f.GetIntSlice("lines")
	}
	if f.Changed("interval") {
		d, _ := f.GetDuration("interval")
		cfg.Interval = config.Duration(d)
	}
	stringFlag(cmd, "backend", &cfg.GPIO.Backend)
	stringFlag(cmd, "chip", &cfg.GPIO.Chip)
	stringFlag(cmd, "bias", &cfg.GPIO.Bias)
	stringFlag(cmd, "log-level", &cfg.Log.Level)
	stringFlag(cmd, "log-format", &cfg.Log.Format)
	stringFlag(cmd, "broker", &cfg.MQTT.Broker)
	stringFlag(cmd, "topic-prefix", &cfg.MQTT.TopicPrefix)
	stringFlag(cmd, "http", &cfg.HTTP.Addr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringFlag copies the named flag into dst when it was set on the
// command line. Flags the command does not define are ignored.
func stringFlag(cmd *cobra.Command, name string, dst *string) {
	fl := cmd.Flags().Lookup(name)
	if fl == nil || !fl.Changed {
		return
	}
	*dst = fl.Value.String()
}
