package kestrel

import (
	"github.com/aeroteameindhoven/kestrel/internal/app/config"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// Config re-exports the root configuration struct so embedding programs can
// build or tweak it in code.
type Config = config.Config

type (
	// SerialConfig selects the device and line settings.
	SerialConfig = config.SerialConfig
	// Policy controls reconnect pacing, reset pulse and buffering.
	Policy = ports.Policy
	// ControlConfig configures the attach/detach listener.
	ControlConfig = config.ControlConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	LogConfig     = config.LogConfig
	UIConfig      = config.UIConfig
)

// LoadConfig reads YAML from disk, applies defaults and validates.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return config.Default()
}
