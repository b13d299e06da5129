package sink

import (
	"context"
	"log/slog"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// LogSink emits every packet as a structured log record.
type LogSink struct {
	log   *slog.Logger
	level slog.Level
}

func NewLogSink(log *slog.Logger, level slog.Level) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log, level: level}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) WriteBatch(packets []domain.Packet) error {
	ctx := context.Background()
	for _, p := range packets {
		if !p.IsTelemetry() {
			s.log.Log(ctx, s.level, "system", "event", p.Event.String())
			continue
		}
		m := p.Metric
		s.log.Log(ctx, s.level, "metric",
			"ts", m.Timestamp.String(),
			"name", m.Name.String(),
			"type", m.Value.Type(),
			"value", m.Value.String(),
		)
	}
	return nil
}

var _ ports.Sink = (*LogSink)(nil)
