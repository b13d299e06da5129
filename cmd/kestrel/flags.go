package main

import (
	"github.com/spf13/pflag"

	"github.com/aeroteameindhoven/kestrel"
	"github.com/aeroteameindhoven/kestrel/internal/adapters/simulator"
)

// commonFlags are shared by every command that opens the serial port.
type commonFlags struct {
	config   string
	port     string
	baud     int
	simulate bool
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVarP(&c.config, "config", "c", "", "path to YAML configuration (defaults are used when empty)")
	fs.StringVarP(&c.port, "port", "p", "", "serial port, overrides serial.port")
	fs.IntVarP(&c.baud, "baud", "b", 0, "baud rate, overrides serial.baud")
	fs.BoolVar(&c.simulate, "simulate", false, "read from a simulated device instead of the serial port")
}

// load reads the configuration and applies flag overrides.
func (c *commonFlags) load() (*kestrel.Config, error) {
	var (
		cfg *kestrel.Config
		err error
	)
	if c.config != "" {
		cfg, err = kestrel.LoadConfig(c.config)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = kestrel.DefaultConfig()
	}
	if c.port != "" {
		cfg.Serial.Port = c.port
	}
	if c.baud != 0 {
		cfg.Serial.Baud = c.baud
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commonFlags) options() []kestrel.Option {
	if !c.simulate {
		return nil
	}
	return []kestrel.Option{kestrel.WithOpener(&simulator.Opener{})}
}
