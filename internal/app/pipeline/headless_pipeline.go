package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// PacketSource is the consumer side of a worker.
type PacketSource interface {
	DrainPackets() []domain.Packet
}

// RunHeadless drains src and fans batches out to every sink until ctx is
// done. A failing sink is logged and skipped; packets are not retried.
func RunHeadless(ctx context.Context, src PacketSource, sinks []ports.Sink, pol ports.Policy, obs ports.Observability, log *slog.Logger) error {
	if obs == nil {
		obs = ports.NopObservability{}
	}
	if log == nil {
		log = slog.Default()
	}
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 50 * time.Millisecond
	}

	for {
		batch := src.DrainPackets()
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			continue
		}
		writeBatches(batch, sinks, pol.SinkBatchSize, obs, log)
	}
}

func writeBatches(packets []domain.Packet, sinks []ports.Sink, size int, obs ports.Observability, log *slog.Logger) {
	if size <= 0 {
		size = len(packets)
	}
	for start := 0; start < len(packets); start += size {
		chunk := packets[start:min(start+size, len(packets))]
		for _, s := range sinks {
			begin := time.Now()
			if err := s.WriteBatch(chunk); err != nil {
				log.Error("sink write failed", "sink", s.Name(), "packets", len(chunk), "error", err)
				continue
			}
			obs.Observe(ports.HistSinkLatencySeconds, time.Since(begin).Seconds())
			obs.IncCounter(ports.MetricSinkWrittenTotal, float64(len(chunk)))
		}
	}
}
