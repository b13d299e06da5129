package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

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

	sink, batches, closeBatches := kestrel.NewChannelSink("fanout", 32)
	defer closeBatches()

	go fanoutWorker(ctx, "distance", batches)

	if err := rt.Stream(ctx, sink); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

// fanoutWorker prints the ultrasonic distance whenever a batch carries one.
func fanoutWorker(ctx context.Context, name string, batches <-chan []kestrel.Packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-batches:
			for _, p := range batch {
				if !p.IsTelemetry() || p.Metric.Name.String() != "ultrasonic:distance" {
					continue
				}
				fmt.Printf("[%s] %s %s = %s at %s\n", name, p.Metric.Timestamp, p.Metric.Name, p.Metric.Value, time.Now().Format(time.RFC3339))
			}
		}
	}
}
