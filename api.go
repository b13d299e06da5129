package kestrel

import (
	"log/slog"

	base "github.com/aeroteameindhoven/kestrel/pkg/kestrel"
)

// Re-exported errors for convenience.
var (
	ErrNotStarted        = base.ErrNotStarted
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/aeroteameindhoven/kestrel directly.
type (
	Config          = base.Config
	SerialConfig    = base.SerialConfig
	Policy          = base.Policy
	ControlConfig   = base.ControlConfig
	MetricsConfig   = base.MetricsConfig
	LogConfig       = base.LogConfig
	UIConfig        = base.UIConfig
	Runtime         = base.Runtime
	Option          = base.Option
	Controller      = base.Controller
	Packet          = base.Packet
	Metric          = base.Metric
	MetricValue     = base.MetricValue
	MetricName      = base.MetricName
	Timestamp       = base.Timestamp
	WorkerState     = base.WorkerState
	SystemEvent     = base.SystemEvent
	RobotCommand    = base.RobotCommand
	Sink            = base.Sink
	PacketBatchSink = base.PacketBatchSink
	Observability   = base.Observability
	Opener          = base.Opener
	Transport       = base.Transport
)

const (
	StateDisconnected = base.StateDisconnected
	StateConnected    = base.StateConnected
	StateResetting    = base.StateResetting
	StateDetached     = base.StateDetached

	CalibrateAmbientInfrared   = base.CalibrateAmbientInfrared
	CalibrateReferenceInfrared = base.CalibrateReferenceInfrared
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Runtime and options.
func New(cfg *Config, opts ...Option) (*Runtime, error) {
	return base.New(cfg, opts...)
}

func WithOpener(o Opener) Option {
	return base.WithOpener(o)
}

func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}

func WithLogger(l *slog.Logger) Option {
	return base.WithLogger(l)
}

func WithRepaint(fn func()) Option {
	return base.WithRepaint(fn)
}

// Sink adapters.
func NewCallbackSink(name string, fn PacketBatchSink) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan []Packet, func()) {
	return base.NewChannelSink(name, buffer)
}
