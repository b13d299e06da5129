// Package worker runs the per-device ingestion loop and the controller the
// rest of the program uses to talk to it.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/codec"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
	"github.com/aeroteameindhoven/kestrel/internal/wire"
)

type commandKind uint8

const (
	cmdAttach commandKind = iota + 1
	cmdDetach
	cmdReset
	cmdSend
)

func (k commandKind) String() string {
	switch k {
	case cmdAttach:
		return "attach"
	case cmdDetach:
		return "detach"
	case cmdReset:
		return "reset"
	case cmdSend:
		return "send"
	default:
		return "unknown"
	}
}

type command struct {
	kind  commandKind
	robot domain.RobotCommand
}

// stateCell is written only by the worker goroutine.
type stateCell struct {
	mu sync.RWMutex
	s  domain.WorkerState
}

func (c *stateCell) get() domain.WorkerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s
}

func (c *stateCell) set(s domain.WorkerState) {
	c.mu.Lock()
	c.s = s
	c.mu.Unlock()
}

// Worker is the ingestion loop for one device.
type Worker struct {
	conn    *Connection
	cmds    ports.Mailbox[command]
	packets ports.Mailbox[domain.Packet]
	state   *stateCell
	policy  ports.Policy
	repaint func()
	obs     ports.Observability
	log     *slog.Logger
	now     func() time.Time
}

// Run loops until ctx is cancelled. The transport is released on return.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker started", "port", w.conn.Port())
	defer func() {
		if err := w.conn.Close(); err != nil {
			w.log.Warn("close transport", "error", err)
		}
		w.log.Info("worker stopped", "port", w.conn.Port())
	}()

	for ctx.Err() == nil {
		for _, cmd := range w.cmds.DrainAll() {
			w.handle(ctx, cmd)
		}

		switch w.state.get() {
		case domain.StateDisconnected:
			w.tryConnect(ctx)
		case domain.StateConnected:
			w.readOnce()
		case domain.StateDetached:
			select {
			case <-ctx.Done():
			case <-w.cmds.Ready():
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd command) {
	st := w.state.get()
	if st == domain.StateDetached && cmd.kind != cmdAttach {
		w.log.Info("ignoring command while detached", "command", cmd.kind.String())
		return
	}

	switch cmd.kind {
	case cmdAttach:
		if st != domain.StateDetached {
			w.log.Warn("attach requested but worker is not detached", "state", st.String())
			return
		}
		w.log.Info("attaching", "port", w.conn.Port())
		w.setState(domain.StateDisconnected)
		w.notify()

	case cmdDetach:
		wasConnected := w.conn.Connected()
		if err := w.conn.Close(); err != nil {
			w.log.Warn("close transport on detach", "error", err)
		}
		w.log.Info("detached", "port", w.conn.Port())
		w.setState(domain.StateDetached)
		if wasConnected {
			w.emit(domain.SystemPacket(domain.EventDisconnected, w.now()))
		}
		w.notify()

	case cmdReset:
		if st != domain.StateConnected {
			w.log.Warn("cannot reset device: not connected", "state", st.String())
			return
		}
		w.setState(domain.StateResetting)
		w.notify()
		w.log.Info("resetting device", "port", w.conn.Port(), "pulse", w.policy.ResetPulse)
		if err := w.conn.Reset(ctx, w.policy.ResetPulse); err != nil {
			w.failed("reset", err)
			if w.state.get() == domain.StateResetting {
				w.settle()
			}
			return
		}
		w.obs.IncCounter(ports.MetricResetsTotal, 1)
		w.setState(domain.StateConnected)
		w.notify()

	case cmdSend:
		if err := w.conn.Send(cmd.robot); err != nil {
			w.failed("send "+cmd.robot.String(), err)
			return
		}
		w.obs.IncCounter(ports.MetricCommandsSentTotal, 1)
		w.log.Info("sent robot command", "command", cmd.robot.String())
	}
}

// settle leaves Resetting for whatever the link now supports.
func (w *Worker) settle() {
	if w.conn.Connected() {
		w.setState(domain.StateConnected)
	} else {
		w.setState(domain.StateDisconnected)
	}
	w.notify()
}

// failed handles an error from a command that needed the link.
func (w *Worker) failed(op string, err error) {
	switch {
	case errors.Is(err, ErrNotConnected):
		w.log.Warn("cannot "+op+": not connected")
	case errors.Is(err, ErrDisconnected):
		w.disconnected(err)
	default:
		w.log.Error(op+" failed", "error", err)
	}
}

func (w *Worker) tryConnect(ctx context.Context) {
	ok, err := w.conn.Open()
	if ok {
		w.log.Info("connected", "port", w.conn.Port())
		w.obs.IncCounter(ports.MetricConnectsTotal, 1)
		w.setState(domain.StateConnected)
		w.emit(domain.SystemPacket(domain.EventConnected, w.now()))
		w.notify()
		return
	}
	if err != nil {
		w.log.Error("unexpected error opening port", "port", w.conn.Port(), "error", err)
	} else {
		w.log.Debug("port not found, sleeping", "port", w.conn.Port(), "interval", w.policy.ReconnectInterval)
	}
	w.sleep(ctx, w.policy.ReconnectInterval)
}

// sleep waits for d, returning early when a command is queued.
func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-w.cmds.Ready():
	case <-t.C:
	}
}

func (w *Worker) readOnce() {
	m, err := w.conn.ReadMetric()
	if err == nil {
		if m.Value.Kind() == domain.KindUnknown {
			w.obs.IncCounter(ports.MetricUnknownTagsTotal, 1)
		}
		w.obs.IncCounter(ports.MetricDecodedTotal, 1)
		w.emit(domain.TelemetryPacket(m, w.now()))
		w.notify()
		return
	}
	if errors.Is(err, ports.ErrReadTimeout) {
		return
	}
	if errors.Is(err, ErrDisconnected) {
		w.disconnected(err)
		return
	}
	w.decodeFailed(err)
}

func (w *Worker) disconnected(err error) {
	w.log.Info("disconnected", "port", w.conn.Port(), "cause", err)
	w.obs.IncCounter(ports.MetricDisconnectsTotal, 1)
	w.setState(domain.StateDisconnected)
	w.emit(domain.SystemPacket(domain.EventDisconnected, w.now()))
	w.notify()
}

func (w *Worker) decodeFailed(err error) {
	var (
		merr *wire.MalformedFramingError
		berr *wire.BadPacketLengthError
		perr *wire.PoorLayoutError
		lerr *codec.LengthError
	)
	switch {
	case errors.As(err, &merr):
		w.obs.IncCounter(ports.MetricFramingErrorsTotal, 1)
		w.log.Warn("malformed COBS frame", "raw_len", len(merr.Raw))
	case errors.Is(err, wire.ErrFrameTooLong):
		w.obs.IncCounter(ports.MetricFramingErrorsTotal, 1)
		w.log.Warn("frame too long, skipped to next delimiter")
	case errors.As(err, &berr):
		w.obs.IncCounter(ports.MetricPacketErrorsTotal, 1)
		w.log.Debug("bad packet length", "expected", berr.Expected, "got", berr.Got)
	case errors.As(err, &perr):
		w.obs.IncCounter(ports.MetricPacketErrorsTotal, 1)
		w.log.Warn("poor packet layout", "section", perr.Section.String(), "index", int(perr.Section))
	case errors.As(err, &lerr):
		w.obs.IncCounter(ports.MetricValueErrorsTotal, 1)
		w.log.Error("value length mismatch", "error", err)
	default:
		w.log.Error("read failed", "error", err)
	}
}

func (w *Worker) emit(p domain.Packet) {
	if !w.packets.Push(p) {
		w.obs.IncCounter(ports.MetricPacketsDroppedTotal, 1)
		w.log.Debug("consumer mailbox full, packet dropped")
		return
	}
	w.obs.SetGauge(ports.GaugePendingPackets, float64(w.packets.Len()))
}

func (w *Worker) setState(s domain.WorkerState) {
	w.state.set(s)
	w.obs.SetGauge(ports.GaugeWorkerState, float64(s))
}

func (w *Worker) notify() {
	if w.repaint != nil {
		w.repaint()
	}
}
