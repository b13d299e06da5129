package ports

import "time"

type Policy struct {
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	ResetPulse        time.Duration `yaml:"reset_pulse"`
	MaxFrameSize      int           `yaml:"max_frame_size"`
	MaxPending        int           `yaml:"max_pending"` // 0 = unbounded
	SinkBatchSize     int           `yaml:"sink_batch_size"`
	IdleSleep         time.Duration `yaml:"idle_sleep"`
}

// DefaultPolicy mirrors the device firmware's expectations.
func DefaultPolicy() Policy {
	return Policy{
		ReconnectInterval: time.Second,
		ResetPulse:        time.Second,
		MaxFrameSize:      70_000,
		SinkBatchSize:     512,
		IdleSleep:         50 * time.Millisecond,
	}
}
