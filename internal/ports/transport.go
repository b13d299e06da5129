package ports

import (
	"errors"
	"io"
	"time"
)

var (
	// ErrDeviceNotPresent means the port does not exist (yet). Not an error
	// condition for the worker: it simply stays disconnected.
	ErrDeviceNotPresent = errors.New("device not present")
	// ErrReadTimeout is returned by Transport.Read when no byte arrived
	// within the read timeout.
	ErrReadTimeout = errors.New("read timeout")
	// ErrTransportClosed is returned by operations on a closed transport.
	ErrTransportClosed = errors.New("transport closed")
)

// Transport is an open serial link to the device.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
	// SetDTR drives the DTR line, which is wired to the device reset.
	SetDTR(asserted bool) error
	// Drain blocks until written bytes have been transmitted.
	Drain() error
}

// OpenOptions configures a transport.
type OpenOptions struct {
	Baud        int
	ReadTimeout time.Duration
}

// Opener opens a named port.
type Opener interface {
	Open(port string, opts OpenOptions) (Transport, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(port string, opts OpenOptions) (Transport, error)

func (f OpenerFunc) Open(port string, opts OpenOptions) (Transport, error) { return f(port, opts) }

// PortLister enumerates available ports.
type PortLister interface {
	ListPorts() ([]string, error)
}
