package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/aeroteameindhoven/kestrel"
	"github.com/aeroteameindhoven/kestrel/internal/adapters/sink"
	"github.com/aeroteameindhoven/kestrel/internal/app/logging"
)

func headlessCommand(args []string) error {
	fs := pflag.NewFlagSet("headless", pflag.ContinueOnError)
	var common commonFlags
	common.add(fs)
	format := fs.String("format", "log", "output format: log or json")
	output := fs.StringP("output", "o", "", "write JSON lines to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	var sinks []kestrel.Sink
	switch *format {
	case "log":
		sinks = append(sinks, sink.NewLogSink(logger, slog.LevelInfo))
	case "json":
		var w io.Writer = os.Stdout
		if *output != "" {
			f, err := os.Create(*output)
			if err != nil {
				return fmt.Errorf("open output: %w", err)
			}
			defer f.Close()
			w = f
		}
		sinks = append(sinks, sink.NewJSONSink(w))
	default:
		return fmt.Errorf("unknown format %q (want log or json)", *format)
	}

	rt, err := kestrel.New(cfg, append(common.options(), kestrel.WithLogger(logger))...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("streaming telemetry", "port", cfg.Serial.Port, "baud", cfg.Serial.Baud, "format", *format)
	return rt.Stream(ctx, sinks...)
}
