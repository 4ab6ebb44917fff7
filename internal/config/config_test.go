package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseFull(t *testing.T) {
	data := []byte(`
lines: [4, 16, 34]
interval: 20ms
gpio:
  backend: rpio
  chip: gpiochip4
  bias: pull-up
http:
  addr: ":8080"
mqtt:
  broker: tcp://192.168.1.200:1883
  client_id: garage
  topic_prefix: home/garage/gpio
  buffer: 50
log:
  level: debug
  format: json
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(cfg.Lines, []int{4, 16, 34}) {
		t.Errorf("Lines: got %v", cfg.Lines)
	}
	if cfg.Interval.Duration() != 20*time.Millisecond {
		t.Errorf("Interval: got %v, want 20ms", cfg.Interval.Duration())
	}
	if cfg.GPIO.Backend != "rpio" || cfg.GPIO.Chip != "gpiochip4" || cfg.GPIO.Bias != "pull-up" {
		t.Errorf("GPIO: got %+v", cfg.GPIO)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.MQTT.Broker != "tcp://192.168.1.200:1883" || cfg.MQTT.ClientID != "garage" ||
		cfg.MQTT.TopicPrefix != "home/garage/gpio" || cfg.MQTT.Buffer != 50 {
		t.Errorf("MQTT: got %+v", cfg.MQTT)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("lines: [4]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Interval.Duration() != DefaultInterval {
		t.Errorf("Interval: got %v, want %v", cfg.Interval.Duration(), DefaultInterval)
	}
	if cfg.GPIO.Backend != DefaultBackend {
		t.Errorf("Backend: got %q", cfg.GPIO.Backend)
	}
	if cfg.GPIO.Chip != DefaultChip {
		t.Errorf("Chip: got %q", cfg.GPIO.Chip)
	}
	if cfg.GPIO.Bias != DefaultBias {
		t.Errorf("Bias: got %q", cfg.GPIO.Bias)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr: got %q, want %q", cfg.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.MQTT.Broker != "" {
		t.Errorf("MQTT.Broker: got %q, want empty", cfg.MQTT.Broker)
	}
	if cfg.MQTT.TopicPrefix != DefaultTopicPrefix || cfg.MQTT.ClientID != DefaultClientID || cfg.MQTT.Buffer != DefaultBuffer {
		t.Errorf("MQTT defaults: got %+v", cfg.MQTT)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log defaults: got %+v", cfg.Log)
	}
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantField string
	}{
		{"no lines", "interval: 50ms\n", "lines"},
		{"empty lines", "lines: []\n", "lines"},
		{"negative line", "lines: [4, -1]\n", "lines[1]"},
		{"line out of range", "lines: [64]\n", "lines[0]"},
		{"duplicate line", "lines: [4, 16, 4]\n", "lines"},
		{"bad backend", "lines: [4]\ngpio:\n  backend: sysfs\n", "gpio.backend"},
		{"bad bias", "lines: [4]\ngpio:\n  bias: sideways\n", "gpio.bias"},
		{"bad log level", "lines: [4]\nlog:\n  level: loud\n", "log.level"},
		{"bad buffer", "lines: [4]\nmqtt:\n  buffer: -5\n", "mqtt.buffer"},
		{"negative interval", "lines: [4]\ninterval: -5ms\n", "interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			var verrs *ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected *ValidationErrors, got %T: %v", err, err)
			}
			found := false
			for _, e := range verrs.Errors {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestParseInvalidDuration(t *testing.T) {
	_, err := Parse([]byte("lines: [4]\ninterval: soon\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "soon") {
		t.Errorf("error should name the bad value: %v", err)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("lines: [4\n")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	err := &ValidationErrors{Errors: []ValidationError{
		{Field: "lines", Message: "is required"},
		{Field: "gpio.bias", Message: "must be one of [pull-down pull-up disabled]"},
	}}
	want := "invalid config: lines: is required; gpio.bias: must be one of [pull-down pull-up disabled]"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpio-monitor.yaml")
	if err := os.WriteFile(path, []byte("lines: [4, 16]\ninterval: 100ms\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Lines, []int{4, 16}) {
		t.Errorf("Lines: got %v", cfg.Lines)
	}
	if cfg.Interval.Duration() != 100*time.Millisecond {
		t.Errorf("Interval: got %v", cfg.Interval.Duration())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultFailsValidationWithoutLines(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: default config has no lines")
	}
	cfg.Lines = []int{4}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeSkipsValidation(t *testing.T) {
	cfg, err := Decode([]byte("interval: 20ms\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Lines) != 0 {
		t.Errorf("Lines: got %v, want none", cfg.Lines)
	}
	if cfg.GPIO.Backend != DefaultBackend {
		t.Errorf("defaults not applied: backend %q", cfg.GPIO.Backend)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without lines")
	}
}

func TestParseHTTPAddr(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"absent", "lines: [4]\n", DefaultHTTPAddr},
		{"empty block", "lines: [4]\nhttp: {}\n", DefaultHTTPAddr},
		{"explicit empty disables", "lines: [4]\nhttp:\n  addr: \"\"\n", ""},
		{"set", "lines: [4]\nhttp:\n  addr: \":8080\"\n", ":8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.HTTP.Addr != tt.want {
				t.Errorf("HTTP.Addr: got %q, want %q", cfg.HTTP.Addr, tt.want)
			}
		})
	}
}

func TestDefaultHTTPAddr(t *testing.T) {
	if got := Default().HTTP.Addr; got != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr: got %q, want %q", got, DefaultHTTPAddr)
	}
}
