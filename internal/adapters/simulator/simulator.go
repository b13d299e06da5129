// Package simulator is a stand-in for the robot on the other end of the
// serial line. It emits framed telemetry on a fixed cadence, restarts its
// clock when DTR is pulsed and acknowledges robot commands with a metric.
package simulator

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
	"github.com/aeroteameindhoven/kestrel/internal/wire"
)

const DefaultInterval = 20 * time.Millisecond

// sweepPoints is the number of readings in one ultrasonic sweep, one per
// degree from the far left to the far right.
const sweepPoints = 181

// Opener hands out simulated devices. The zero value is ready to use.
type Opener struct {
	// Interval between telemetry bursts; zero means DefaultInterval.
	Interval time.Duration
	// Logger receives simulated metrics that could not be framed; nil means
	// slog.Default().
	Logger *slog.Logger

	mu     sync.Mutex
	absent bool
}

// SetPresent plugs or unplugs the simulated device for subsequent opens.
func (o *Opener) SetPresent(present bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.absent = !present
}

func (o *Opener) Open(port string, opts ports.OpenOptions) (ports.Transport, error) {
	o.mu.Lock()
	absent := o.absent
	o.mu.Unlock()
	if absent {
		return nil, ports.ErrDeviceNotPresent
	}
	interval := o.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	dev := NewDevice(interval, opts.ReadTimeout, time.Now)
	if o.Logger != nil {
		dev.logger = o.Logger
	}
	return dev, nil
}

// Device is one simulated serial link.
type Device struct {
	interval    time.Duration
	readTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu      sync.Mutex
	boot    time.Time
	next    time.Time
	seq     uint64
	pending []byte
	acks    []domain.RobotCommand
	dtr     bool
	closed  bool
	dropped int
}

func NewDevice(interval, readTimeout time.Duration, now func() time.Time) *Device {
	if readTimeout <= 0 {
		readTimeout = 100 * time.Millisecond
	}
	t := now()
	return &Device{
		interval:    interval,
		readTimeout: readTimeout,
		now:         now,
		logger:      slog.Default(),
		boot:        t,
		next:        t,
	}
}

// Read returns buffered frame bytes, waiting up to the read timeout for the
// next burst.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, ports.ErrTransportClosed
	}
	if len(d.pending) == 0 {
		wait := d.next.Sub(d.now())
		if wait > d.readTimeout {
			d.mu.Unlock()
			time.Sleep(d.readTimeout)
			return 0, ports.ErrReadTimeout
		}
		if wait > 0 {
			d.mu.Unlock()
			time.Sleep(wait)
			d.mu.Lock()
			if d.closed {
				d.mu.Unlock()
				return 0, ports.ErrTransportClosed
			}
		}
		d.burst()
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return 0, ports.ErrReadTimeout
		}
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	d.mu.Unlock()
	return n, nil
}

// burst appends one round of telemetry to pending. Callers hold mu.
func (d *Device) burst() {
	now := d.now()
	d.next = now.Add(d.interval)
	if d.dtr {
		// held in reset
		return
	}
	ts := domain.TimestampFromMillis(uint32(now.Sub(d.boot).Milliseconds()))
	d.seq++
	phase := float64(d.seq) / 25

	for _, m := range d.readings(ts, phase) {
		d.emit(m)
	}
	for _, c := range d.acks {
		d.emit(domain.Metric{
			Timestamp: ts,
			Name:      domain.NewNamespace("command", domain.NewName(c.String())),
			Value:     domain.BoolValue(true),
		})
	}
	d.acks = d.acks[:0]
}

// emit frames m onto pending. Metrics that do not fit a packet are counted
// and logged. Callers hold mu.
func (d *Device) emit(m domain.Metric) {
	out, err := wire.AppendMetricFrame(d.pending, m)
	if err != nil {
		d.dropped++
		d.logger.Warn("simulated metric dropped", "name", m.Name.String(), "type", m.Value.Type(), "err", err)
		return
	}
	d.pending = out
}

// Dropped reports how many simulated metrics failed to frame.
func (d *Device) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *Device) readings(ts domain.Timestamp, phase float64) []domain.Metric {
	line := make([]byte, 0, 16)
	for i := 0; i < 8; i++ {
		v := 512 + 400*math.Sin(phase+float64(i)/2)
		line = domain.U16.AppendLE(line, uint64(v))
	}
	sweep := make([]byte, 0, 2*sweepPoints)
	for i := 0; i < sweepPoints; i++ {
		v := 200 + 80*math.Sin(phase/3+float64(i)/4)
		sweep = domain.U16.AppendLE(sweep, uint64(v))
	}
	metric := func(name string, v domain.MetricValue) domain.Metric {
		return domain.Metric{Timestamp: ts, Name: domain.ParseMetricName(name), Value: v}
	}
	return []domain.Metric{
		metric("ultrasonic:distance", domain.U32Value(uint32(200+80*math.Sin(phase)))),
		metric("ultrasonic:heading", domain.I16Value(int16(60*math.Sin(phase/2)))),
		metric("ultrasonic:last_readings", domain.ManyValue(domain.U16, sweep)),
		metric("motor:drive_speed", domain.F32Value(float32(math.Sin(phase/5)))),
		metric("imu:accel:x", domain.F32Value(float32(math.Cos(phase)))),
		metric("imu:heading", domain.I16Value(int16(180*math.Sin(phase/4)))),
		metric("battery:voltage", domain.F64Value(11.1+0.3*math.Sin(phase/10))),
		metric("motor:enabled", domain.BoolValue(d.seq%100 < 80)),
		metric("line:sensors", domain.ManyValue(domain.U16, line)),
		metric("uptime", domain.U64Value(d.seq)),
	}
}

// Write accepts single-byte robot commands; each is acknowledged in the
// next burst.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ports.ErrTransportClosed
	}
	for _, b := range p {
		d.acks = append(d.acks, domain.RobotCommand(b))
	}
	return len(p), nil
}

// SetDTR holds the device in reset while asserted. Releasing it restarts
// the device clock and drops unsent bytes.
func (d *Device) SetDTR(asserted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ports.ErrTransportClosed
	}
	if d.dtr && !asserted {
		d.boot = d.now()
		d.pending = nil
		d.acks = d.acks[:0]
	}
	d.dtr = asserted
	return nil
}

func (d *Device) Drain() error { return nil }

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

var _ ports.Opener = (*Opener)(nil)
