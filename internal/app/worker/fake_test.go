package worker

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// fakeTransport is an in-memory serial link. Reads time out after a few
// milliseconds of silence, like a port opened with a short read timeout.
type fakeTransport struct {
	in   chan []byte
	gone chan struct{}

	mu      sync.Mutex
	pending []byte
	closed  bool
	dtr     []bool
	dtrErr  error
	written []byte
	drains  int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:   make(chan []byte, 64),
		gone: make(chan struct{}),
	}
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return 0, ports.ErrTransportClosed
	}
	if len(f.pending) > 0 {
		n := copy(p, f.pending)
		f.pending = f.pending[n:]
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()

	select {
	case b := <-f.in:
		n := copy(p, b)
		if n < len(b) {
			f.mu.Lock()
			f.pending = append(f.pending, b[n:]...)
			f.mu.Unlock()
		}
		return n, nil
	case <-f.gone:
		return 0, io.ErrUnexpectedEOF
	case <-time.After(5 * time.Millisecond):
		return 0, ports.ErrReadTimeout
	}
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	select {
	case <-f.gone:
		return 0, io.ErrClosedPipe
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeTransport) SetDTR(asserted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dtrErr != nil {
		return f.dtrErr
	}
	f.dtr = append(f.dtr, asserted)
	return nil
}

func (f *fakeTransport) failDTR(err error) {
	f.mu.Lock()
	f.dtrErr = err
	f.mu.Unlock()
}

func (f *fakeTransport) Drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drains++
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) feed(b []byte) { f.in <- append([]byte(nil), b...) }

func (f *fakeTransport) unplug() { close(f.gone) }

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) dtrPulses() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.dtr...)
}

func (f *fakeTransport) writes() ([]byte, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written...), f.drains
}

type fakeOpener struct {
	mu      sync.Mutex
	present bool
	err     error
	opened  []*fakeTransport
	opts    ports.OpenOptions
}

func (o *fakeOpener) Open(port string, opts ports.OpenOptions) (ports.Transport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	if !o.present {
		return nil, fmt.Errorf("open %s: %w", port, ports.ErrDeviceNotPresent)
	}
	t := newFakeTransport()
	o.opened = append(o.opened, t)
	o.opts = opts
	return t, nil
}

func (o *fakeOpener) setPresent(v bool) {
	o.mu.Lock()
	o.present = v
	o.mu.Unlock()
}

func (o *fakeOpener) setErr(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
}

func (o *fakeOpener) openOptions() ports.OpenOptions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts
}

func (o *fakeOpener) opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opened)
}

func (o *fakeOpener) current() *fakeTransport {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.opened) == 0 {
		return nil
	}
	return o.opened[len(o.opened)-1]
}

var errBoom = errors.New("permission denied")
