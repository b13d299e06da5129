package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
	"github.com/aeroteameindhoven/kestrel/internal/wire"
)

var (
	// ErrDisconnected means the link was lost. The transport has already
	// been released and any partially received frame discarded.
	ErrDisconnected = errors.New("device disconnected")
	// ErrNotConnected is returned by operations that need an open link.
	ErrNotConnected = errors.New("not connected")
)

// Connection owns the transport to one device and turns its byte stream
// into metrics.
type Connection struct {
	port   string
	opener ports.Opener
	opts   ports.OpenOptions
	obs    ports.Observability
	log    *slog.Logger

	tr     ports.Transport
	frames *wire.FrameReader
}

func NewConnection(port string, opener ports.Opener, opts ports.OpenOptions, maxFrameSize int, obs ports.Observability, log *slog.Logger) *Connection {
	if obs == nil {
		obs = ports.NopObservability{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Connection{
		port:   port,
		opener: opener,
		opts:   opts,
		obs:    obs,
		log:    log,
		frames: wire.NewFrameReader(nil, maxFrameSize),
	}
}

func (c *Connection) Port() string    { return c.port }
func (c *Connection) Connected() bool { return c.tr != nil }

// Open tries to open the port. It returns false without an error when the
// device is simply not there; any other failure is returned.
func (c *Connection) Open() (bool, error) {
	if c.tr != nil {
		return true, nil
	}
	tr, err := c.opener.Open(c.port, c.opts)
	if err != nil {
		if errors.Is(err, ports.ErrDeviceNotPresent) {
			return false, nil
		}
		return false, err
	}
	c.tr = tr
	c.frames.Reset(tr)
	return true, nil
}

// Close releases the transport and drops any in-flight bytes.
func (c *Connection) Close() error {
	if c.tr == nil {
		return nil
	}
	err := c.tr.Close()
	c.tr = nil
	c.frames.Reset(nil)
	return err
}

// ReadMetric performs one read attempt. ports.ErrReadTimeout means nothing
// complete arrived yet; ErrDisconnected means the link is gone. Framing and
// packet errors are returned as-is and leave the link usable.
func (c *Connection) ReadMetric() (domain.Metric, error) {
	if c.tr == nil {
		return domain.Metric{}, ErrNotConnected
	}
	frame, err := c.frames.Next()
	if err != nil {
		var merr *wire.MalformedFramingError
		switch {
		case errors.Is(err, ports.ErrReadTimeout):
			return domain.Metric{}, ports.ErrReadTimeout
		case errors.As(err, &merr), errors.Is(err, wire.ErrFrameTooLong):
			return domain.Metric{}, err
		default:
			return domain.Metric{}, c.lost(err)
		}
	}
	c.obs.IncCounter(ports.MetricFramesTotal, 1)
	c.obs.Observe(ports.HistFrameSizeBytes, float64(len(frame)))
	return wire.ParsePacket(frame)
}

// Reset pulses DTR, which the device wires to its reset line. The pulse is
// a deliberate blocking wait; it is cut short only by ctx.
func (c *Connection) Reset(ctx context.Context, pulse time.Duration) error {
	if c.tr == nil {
		return ErrNotConnected
	}
	if err := c.tr.SetDTR(true); err != nil {
		return c.lost(err)
	}
	t := time.NewTimer(pulse)
	select {
	case <-t.C:
	case <-ctx.Done():
		t.Stop()
	}
	if err := c.tr.SetDTR(false); err != nil {
		return c.lost(err)
	}
	return nil
}

// Send writes one command byte and waits for it to leave the host.
func (c *Connection) Send(cmd domain.RobotCommand) error {
	if c.tr == nil {
		return ErrNotConnected
	}
	if _, err := c.tr.Write([]byte{cmd.Byte()}); err != nil {
		return c.lost(err)
	}
	if err := c.tr.Drain(); err != nil {
		return c.lost(err)
	}
	return nil
}

func (c *Connection) lost(cause error) error {
	if err := c.Close(); err != nil {
		c.log.Debug("close after link loss", "port", c.port, "error", err)
	}
	return fmt.Errorf("%w: %w", ErrDisconnected, cause)
}
