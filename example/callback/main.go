package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/aeroteameindhoven/kestrel/pkg/kestrel"
)

func main() {
	cfg, err := kestrel.LoadConfig("../../configs/kestrel.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt, err := kestrel.New(cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(batch []kestrel.Packet) error {
		for _, p := range batch {
			if !p.IsTelemetry() {
				fmt.Printf("%s %s\n", p.ReceivedAt.Format(time.RFC3339Nano), p.Event)
				continue
			}
			fmt.Printf("%s %s\n", p.ReceivedAt.Format(time.RFC3339Nano), p.Metric)
		}
		return nil
	}

	if err := rt.Stream(ctx, kestrel.NewCallbackSink("stdout", callback)); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}
