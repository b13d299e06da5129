package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	var common commonFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.config == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good (port %s at %d baud)\n", common.config, cfg.Serial.Port, cfg.Serial.Baud)
	return nil
}
