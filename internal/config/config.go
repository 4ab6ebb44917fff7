// Package config provides YAML configuration for gpio-monitor.
//
// Example configuration:
//
//	lines: [4, 16]
//	interval: 50ms
//
//	gpio:
//	  backend: cdev
//	  chip: gpiochip0
//	  bias: pull-down
//
//	http:
//	  addr: ":80"
//
//	mqtt:
//	  broker: tcp://192.168.1.200:1883
//	  topic_prefix: gpio/monitor
//
//	log:
//	  level: info
//	  format: text
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultInterval    = 50 * time.Millisecond
	DefaultBackend     = "cdev"
	DefaultChip        = "gpiochip0"
	DefaultBias        = "pull-down"
	DefaultHTTPAddr    = ":80"
	DefaultClientID    = "gpio-monitor"
	DefaultTopicPrefix = "gpio/monitor"
	DefaultBuffer      = 100
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config is the root configuration structure.
type Config struct {
	// Lines are the monitored line identifiers, in sampling order.
	Lines []int `yaml:"lines" validate:"required,min=1,unique,dive,min=0,max=63"`

	// Interval is the time between sampling passes.
	Interval Duration `yaml:"interval" validate:"gte=0"`

	GPIO GPIOConfig `yaml:"gpio"`
	HTTP HTTPConfig `yaml:"http"`
	MQTT MQTTConfig `yaml:"mqtt"`
	Log  LogConfig  `yaml:"log"`
}

// GPIOConfig selects the hardware backend.
type GPIOConfig struct {
	Backend string `yaml:"backend" validate:"oneof=cdev rpio periph"`
	Chip    string `yaml:"chip" validate:"required"`
	Bias    string `yaml:"bias" validate:"oneof=pull-down pull-up disabled"`
}

// HTTPConfig configures the status page and websocket endpoint.
// Addr defaults to DefaultHTTPAddr when the key is absent; an explicit
// empty Addr disables the server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig configures the MQTT broadcaster. An empty Broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker" validate:"omitempty,uri"`
	ClientID    string `yaml:"client_id" validate:"required"`
	TopicPrefix string `yaml:"topic_prefix" validate:"required"`

	// Buffer is the number of messages kept while disconnected.
	Buffer int `yaml:"buffer" validate:"min=1,max=10000"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns a Config with every default applied and no lines.
func Default() *Config {
	cfg := newConfig()
	cfg.applyDefaults()
	return cfg
}

// newConfig returns the base that YAML is decoded onto. Fields whose empty
// value is meaningful get their default here, before decoding, so that an
// absent key and an explicit empty value stay distinguishable.
func newConfig() *Config {
	return &Config{HTTP: HTTPConfig{Addr: DefaultHTTPAddr}}
}

// Load reads, parses and validates the config file at path.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse parses YAML config data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads the config file at path and applies defaults without
// validating, so callers can layer overrides on top first.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Decode(data)
}

// Decode parses YAML config data and applies defaults without validating.
func Decode(data []byte) (*Config, error) {
	cfg := newConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Interval == 0 {
		c.Interval = Duration(DefaultInterval)
	}
	if c.GPIO.Backend == "" {
		c.GPIO.Backend = DefaultBackend
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = DefaultChip
	}
	if c.GPIO.Bias == "" {
		c.GPIO.Bias = DefaultBias
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if c.MQTT.Buffer == 0 {
		c.MQTT.Buffer = DefaultBuffer
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks the configuration. The returned error is a
// *ValidationErrors when struct rules fail.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	return validateStruct(c)
}
