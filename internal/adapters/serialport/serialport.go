// Package serialport adapts go.bug.st/serial to the transport port.
package serialport

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"go.bug.st/serial"

	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// DefaultReadTimeout bounds each Read so the worker can poll its commands.
const DefaultReadTimeout = 100 * time.Millisecond

// Opener opens real serial ports (8N1).
type Opener struct{}

func (Opener) Open(name string, opts ports.OpenOptions) (ports.Transport, error) {
	mode := &serial.Mode{
		BaudRate: opts.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		if isNotPresent(err) {
			return nil, fmt.Errorf("open %s: %w", name, ports.ErrDeviceNotPresent)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	timeout := opts.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return &Port{port: p}, nil
}

func isNotPresent(err error) bool {
	var perr *serial.PortError
	if errors.As(err, &perr) && perr.Code() == serial.PortNotFound {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

// Port wraps an open serial.Port.
type Port struct {
	port serial.Port
}

// Read maps the library's (0, nil) timeout result to ports.ErrReadTimeout so
// buffered readers do not mistake a quiet line for a stuck one.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err != nil {
		return n, mapErr(err)
	}
	if n == 0 && len(b) > 0 {
		return 0, ports.ErrReadTimeout
	}
	return n, nil
}

func (p *Port) Write(b []byte) (int, error) {
	n, err := p.port.Write(b)
	return n, mapErr(err)
}

func (p *Port) SetDTR(asserted bool) error { return mapErr(p.port.SetDTR(asserted)) }

func (p *Port) Drain() error { return mapErr(p.port.Drain()) }

func (p *Port) Close() error { return p.port.Close() }

func mapErr(err error) error {
	var perr *serial.PortError
	if errors.As(err, &perr) && perr.Code() == serial.PortClosed {
		return fmt.Errorf("%w: %v", ports.ErrTransportClosed, err)
	}
	return err
}

// Lister enumerates serial ports known to the OS.
type Lister struct{}

func (Lister) ListPorts() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

var (
	_ ports.Opener     = Opener{}
	_ ports.Transport  = (*Port)(nil)
	_ ports.PortLister = Lister{}
)
