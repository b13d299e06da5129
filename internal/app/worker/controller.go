package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/adapters/queue"
	"github.com/aeroteameindhoven/kestrel/internal/adapters/serialport"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

const DefaultBaud = 115200

type SpawnConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
	Policy      ports.Policy
}

func (c *SpawnConfig) applyDefaults() {
	def := ports.DefaultPolicy()
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = serialport.DefaultReadTimeout
	}
	if c.Policy.ReconnectInterval <= 0 {
		c.Policy.ReconnectInterval = def.ReconnectInterval
	}
	if c.Policy.ResetPulse <= 0 {
		c.Policy.ResetPulse = def.ResetPulse
	}
	if c.Policy.MaxFrameSize <= 0 {
		c.Policy.MaxFrameSize = def.MaxFrameSize
	}
}

type options struct {
	opener ports.Opener
	obs    ports.Observability
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*options)

// WithOpener replaces the serial port opener, e.g. with a simulator.
func WithOpener(o ports.Opener) Option { return func(opts *options) { opts.opener = o } }

func WithObservability(obs ports.Observability) Option {
	return func(opts *options) { opts.obs = obs }
}

func WithLogger(l *slog.Logger) Option { return func(opts *options) { opts.log = l } }

// WithClock sets the source of packet receive times.
func WithClock(now func() time.Time) Option { return func(opts *options) { opts.now = now } }

// Controller is the handle to a running worker. All methods are safe for
// concurrent use and never block.
type Controller struct {
	port    string
	cmds    *queue.Mailbox[command]
	packets *queue.Mailbox[domain.Packet]
	state   *stateCell
	obs     ports.Observability
	done    chan struct{}
}

// Spawn starts a worker for cfg.Port. repaint is called from the worker
// goroutine whenever there is something new to show; it must not block.
func Spawn(ctx context.Context, cfg SpawnConfig, repaint func(), opts ...Option) *Controller {
	cfg.applyDefaults()
	o := options{
		opener: serialport.Opener{},
		obs:    ports.NopObservability{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	log := o.log.With("component", "worker")

	c := &Controller{
		port:    cfg.Port,
		cmds:    queue.NewMailbox[command](0),
		packets: queue.NewMailbox[domain.Packet](cfg.Policy.MaxPending),
		state:   &stateCell{s: domain.StateDisconnected},
		obs:     o.obs,
		done:    make(chan struct{}),
	}
	w := &Worker{
		conn: NewConnection(cfg.Port, o.opener, ports.OpenOptions{
			Baud:        cfg.Baud,
			ReadTimeout: cfg.ReadTimeout,
		}, cfg.Policy.MaxFrameSize, o.obs, log),
		cmds:    c.cmds,
		packets: c.packets,
		state:   c.state,
		policy:  cfg.Policy,
		repaint: repaint,
		obs:     o.obs,
		log:     log,
		now:     o.now,
	}

	go func() {
		defer close(c.done)
		w.Run(ctx)
	}()
	return c
}

func (c *Controller) State() domain.WorkerState { return c.state.get() }
func (c *Controller) PortName() string          { return c.port }

func (c *Controller) Attach()                             { c.cmds.Push(command{kind: cmdAttach}) }
func (c *Controller) Detach()                             { c.cmds.Push(command{kind: cmdDetach}) }
func (c *Controller) Reset()                              { c.cmds.Push(command{kind: cmdReset}) }
func (c *Controller) SendCommand(cmd domain.RobotCommand) { c.cmds.Push(command{kind: cmdSend, robot: cmd}) }

// DrainPackets returns every packet received since the last drain, oldest
// first.
func (c *Controller) DrainPackets() []domain.Packet {
	out := c.packets.DrainAll()
	c.obs.SetGauge(ports.GaugePendingPackets, 0)
	return out
}

// DrainNewMetrics is DrainPackets restricted to telemetry.
func (c *Controller) DrainNewMetrics() []domain.Metric {
	packets := c.DrainPackets()
	if len(packets) == 0 {
		return nil
	}
	out := make([]domain.Metric, 0, len(packets))
	for _, p := range packets {
		if p.IsTelemetry() {
			out = append(out, p.Metric)
		}
	}
	return out
}

// Done is closed once the worker has stopped and released the port.
func (c *Controller) Done() <-chan struct{} { return c.done }
