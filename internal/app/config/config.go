package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Policy  ports.Policy  `yaml:"policy"`
	Control ControlConfig `yaml:"control"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

type SerialConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type ControlConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func (c ControlConfig) On() bool { return c.Enabled == nil || *c.Enabled }

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type UIConfig struct {
	HistoryLen int `yaml:"history_len"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes YAML, rejecting unknown keys, then applies defaults and
// validates.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := ports.DefaultPolicy()
	if c.Serial.Port == "" {
		c.Serial.Port = defaultPort()
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = 100 * time.Millisecond
	}
	if c.Policy.ReconnectInterval == 0 {
		c.Policy.ReconnectInterval = def.ReconnectInterval
	}
	if c.Policy.ResetPulse == 0 {
		c.Policy.ResetPulse = def.ResetPulse
	}
	if c.Policy.MaxFrameSize == 0 {
		c.Policy.MaxFrameSize = def.MaxFrameSize
	}
	if c.Policy.SinkBatchSize == 0 {
		c.Policy.SinkBatchSize = def.SinkBatchSize
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = def.IdleSleep
	}
	if c.Control.Addr == "" {
		c.Control.Addr = "127.0.0.1:6969"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.UI.HistoryLen == 0 {
		c.UI.HistoryLen = 512
	}
}

// Validate checks a configuration that already has defaults applied.
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}
	if c.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.ReadTimeout < 0 {
		return fmt.Errorf("serial.read_timeout must not be negative")
	}
	if c.Policy.ReconnectInterval < 0 || c.Policy.ResetPulse < 0 || c.Policy.IdleSleep < 0 {
		return fmt.Errorf("policy durations must not be negative")
	}
	if c.Policy.MaxFrameSize < 16 {
		return fmt.Errorf("policy.max_frame_size must be at least 16, got %d", c.Policy.MaxFrameSize)
	}
	if c.Policy.MaxPending < 0 {
		return fmt.Errorf("policy.max_pending must not be negative")
	}
	if c.Control.On() {
		if _, _, err := net.SplitHostPort(c.Control.Addr); err != nil {
			return fmt.Errorf("control.addr: %w", err)
		}
	}
	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics.addr: %w", err)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.UI.HistoryLen < 0 {
		return fmt.Errorf("ui.history_len must not be negative")
	}
	return nil
}
