package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/aeroteameindhoven/kestrel/internal/adapters/control"
)

func controlCommand(args []string) error {
	fs := pflag.NewFlagSet("control", pflag.ContinueOnError)
	addr := fs.String("addr", control.DefaultAddr, "address of the control listener")
	timeout := fs.Duration("timeout", 2*time.Second, "connect and write timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one of %q or %q", control.CommandAttach, control.CommandDetach)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := control.Send(ctx, *addr, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("sent %s to %s\n", fs.Arg(0), *addr)
	return nil
}
