package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/aeroteameindhoven/kestrel/internal/adapters/serialport"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

func listCommand(args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return printPorts(serialport.Lister{})
}

func printPorts(lister ports.PortLister) error {
	names, err := lister.ListPorts()
	if err != nil {
		return fmt.Errorf("list serial ports: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
