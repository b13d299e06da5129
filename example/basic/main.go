package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/aeroteameindhoven/kestrel"
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

	// Serves /metrics and the control listener until interrupted.
	if err := rt.Run(ctx); err != nil {
		log.Fatalf("runtime exited: %v", err)
	}
}
