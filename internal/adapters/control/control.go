// Package control is the out-of-band TCP listener that lets another process
// attach or detach the serial worker, e.g. to free the port for flashing.
//
// Each connection carries exactly one six-byte ASCII command, "attach" or
// "detach".
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

const (
	DefaultAddr = "127.0.0.1:6969"

	CommandAttach = "attach"
	CommandDetach = "detach"

	commandLen  = 6
	readTimeout = 2 * time.Second
)

// Target receives the decoded commands.
type Target interface {
	Attach()
	Detach()
}

type Listener struct {
	ln     net.Listener
	target Target
	logger *slog.Logger
}

// Listen binds addr. A bind failure is returned to the caller and does not
// affect the worker.
func Listen(addr string, target Target, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind control listener on %s: %w", addr, err)
	}
	return &Listener{
		ln:     ln,
		target: target,
		logger: logger.With("component", "control", "addr", ln.Addr().String()),
	}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve handles connections one at a time until ctx is done or the
// listener is closed.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = l.ln.Close() })
	defer stop()

	l.logger.Info("control listener ready")
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			l.logger.Error("failed to accept control connection", "error", err)
			continue
		}
		l.handle(conn)
	}
}

func (l *Listener) Close() error { return l.ln.Close() }

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	buf := make([]byte, commandLen)
	if _, err := io.ReadFull(conn, buf); err != nil {
		l.logger.Error("error reading control command", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	switch string(buf) {
	case CommandAttach:
		l.logger.Info("attach requested", "remote", conn.RemoteAddr().String())
		l.target.Attach()
	case CommandDetach:
		l.logger.Info("detach requested", "remote", conn.RemoteAddr().String())
		l.target.Detach()
	default:
		l.logger.Warn("unrecognized control command", "data", fmt.Sprintf("%q", buf))
	}
}

// Send delivers one command to a listener at addr.
func Send(ctx context.Context, addr, command string) error {
	if command != CommandAttach && command != CommandDetach {
		return fmt.Errorf("unknown control command %q", command)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial control listener: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := io.WriteString(conn, command); err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}
	return nil
}
