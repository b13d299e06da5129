package kestrel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aeroteameindhoven/kestrel/internal/adapters/control"
	"github.com/aeroteameindhoven/kestrel/internal/adapters/observability"
	"github.com/aeroteameindhoven/kestrel/internal/app/pipeline"
	"github.com/aeroteameindhoven/kestrel/internal/app/worker"
)

// ErrNotStarted is returned by operations that need a running worker.
var ErrNotStarted = errors.New("kestrel: runtime not started")

const shutdownTimeout = 5 * time.Second

// Option customizes the dependencies used by Runtime.
type Option func(*overrides)

type overrides struct {
	opener   Opener
	obs      Observability
	registry *prometheus.Registry
	log      *slog.Logger
	repaint  func()
}

// WithOpener replaces the serial port opener.
func WithOpener(o Opener) Option {
	return func(ov *overrides) {
		ov.opener = o
	}
}

// WithObservability plugs in a custom metrics backend instead of Prometheus.
func WithObservability(obs Observability) Option {
	return func(ov *overrides) {
		ov.obs = obs
	}
}

// WithRegistry registers the Prometheus collectors on reg and serves reg on
// /metrics instead of the global default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(ov *overrides) {
		ov.registry = reg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(ov *overrides) {
		ov.log = l
	}
}

// WithRepaint is called from the worker goroutine whenever new packets or a
// state change are available. It must not block.
func WithRepaint(fn func()) Option {
	return func(ov *overrides) {
		ov.repaint = fn
	}
}

// Runtime wires the ingestion worker, the control listener and the metrics
// server, and gives embedding programs one lifecycle to manage.
type Runtime struct {
	cfg      *Config
	opener   Opener
	obs      Observability
	gatherer prometheus.Gatherer
	log      *slog.Logger
	repaint  func()

	mu         sync.Mutex
	cancel     context.CancelFunc
	ctrl       *worker.Controller
	control    *control.Listener
	controlErr chan error
	metricsSrv *http.Server
	metricsLn  net.Listener
}

func New(cfg *Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var ov overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	log := ov.log
	if log == nil {
		log = slog.Default()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if ov.registry != nil {
		registerer, gatherer = ov.registry, ov.registry
	}
	obs := ov.obs
	if obs == nil {
		obs = observability.NewPromObs(registerer)
	}

	return &Runtime{
		cfg:      cfg,
		opener:   ov.opener,
		obs:      obs,
		gatherer: gatherer,
		log:      log,
		repaint:  ov.repaint,
	}, nil
}

// Start spawns the worker and the optional listeners. It returns
// immediately; call Run to block on a context instead. A control listener
// that cannot bind is logged and skipped, the worker runs regardless.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctrl != nil {
		return fmt.Errorf("kestrel: runtime already started")
	}

	if r.cfg.Metrics.Enabled {
		if err := r.startMetrics(); err != nil {
			return err
		}
	}

	wctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	wopts := []worker.Option{
		worker.WithObservability(r.obs),
		worker.WithLogger(r.log),
	}
	if r.opener != nil {
		wopts = append(wopts, worker.WithOpener(r.opener))
	}
	r.ctrl = worker.Spawn(wctx, worker.SpawnConfig{
		Port:        r.cfg.Serial.Port,
		Baud:        r.cfg.Serial.Baud,
		ReadTimeout: r.cfg.Serial.ReadTimeout,
		Policy:      r.cfg.Policy,
	}, r.repaint, wopts...)

	if r.cfg.Control.On() {
		ln, err := control.Listen(r.cfg.Control.Addr, r.ctrl, r.log)
		if err != nil {
			r.log.Error("control listener disabled", "error", err)
		} else {
			r.control = ln
			r.controlErr = make(chan error, 1)
			go func() { r.controlErr <- ln.Serve(wctx) }()
		}
	}
	return nil
}

func (r *Runtime) startMetrics() error {
	ln, err := net.Listen("tcp", r.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("bind metrics server on %s: %w", r.cfg.Metrics.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsLn = ln
	r.metricsSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := r.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("metrics server exited", "error", err)
		}
	}()
	r.log.Info("metrics server listening", "addr", ln.Addr().String())
	return nil
}

// Run starts the runtime and blocks until ctx is cancelled, then shuts
// down gracefully.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Stream starts the runtime if needed and writes every packet to sinks
// until ctx is cancelled. It shuts the runtime down before returning.
func (r *Runtime) Stream(ctx context.Context, sinks ...Sink) error {
	if r.Controller() == nil {
		if err := r.Start(ctx); err != nil {
			return err
		}
	}
	err := pipeline.RunHeadless(ctx, r.Controller(), sinks, r.cfg.Policy, r.obs, r.log)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(err, r.Shutdown(shutdownCtx))
}

// Controller returns the worker handle, or nil before Start.
func (r *Runtime) Controller() *worker.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl
}

// SendCommand queues cmd for the device. It is dropped by the worker while
// the link is down.
func (r *Runtime) SendCommand(cmd RobotCommand) error {
	ctrl := r.Controller()
	if ctrl == nil {
		return ErrNotStarted
	}
	ctrl.SendCommand(cmd)
	return nil
}

// ControlAddr returns the bound control address, or nil when the listener
// is disabled or failed to bind.
func (r *Runtime) ControlAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.control == nil {
		return nil
	}
	return r.control.Addr()
}

// MetricsAddr returns the bound metrics address, or nil when disabled.
func (r *Runtime) MetricsAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metricsLn == nil {
		return nil
	}
	return r.metricsLn.Addr()
}

// Shutdown stops the worker, which releases the serial port, then the
// control listener and the metrics server.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.cancel != nil {
		r.cancel()
	}
	if r.ctrl != nil {
		select {
		case <-r.ctrl.Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("wait for worker: %w", ctx.Err()))
		}
	}

	if r.control != nil {
		if err := r.control.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
		select {
		case err := <-r.controlErr:
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
		}
		r.control = nil
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	return errors.Join(errs...)
}
