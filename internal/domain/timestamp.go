package domain

import "fmt"

// Timestamp is the device clock: milliseconds since the robot powered up.
type Timestamp uint32

const (
	MinTimestamp Timestamp = 0
	MaxTimestamp Timestamp = 1<<32 - 1
)

// TimestampFromMillis wraps a raw millisecond counter.
func TimestampFromMillis(ms uint32) Timestamp { return Timestamp(ms) }

// Millis returns the raw millisecond counter.
func (t Timestamp) Millis() uint32 { return uint32(t) }

// Sub returns t-u, saturating at zero.
func (t Timestamp) Sub(u Timestamp) Timestamp {
	if u >= t {
		return 0
	}
	return t - u
}

// String renders the timestamp as mm:ss.mmm. Minutes are not wrapped into hours.
func (t Timestamp) String() string {
	ms := uint32(t)
	return fmt.Sprintf("%02d:%02d.%03d", ms/60_000, (ms/1_000)%60, ms%1_000)
}

// Watermark tracks the highest device timestamp seen so far. A timestamp
// lower than the watermark means the device rebooted and restarted its clock.
type Watermark struct {
	max  Timestamp
	seen bool
}

// Observe records ts and reports whether it went backwards. After a reboot
// the watermark restarts from ts.
func (w *Watermark) Observe(ts Timestamp) (rebooted bool) {
	if w.seen && ts < w.max {
		w.max = ts
		return true
	}
	if !w.seen || ts > w.max {
		w.max = ts
	}
	w.seen = true
	return false
}

// Max returns the highest timestamp observed since the last reboot.
func (w *Watermark) Max() Timestamp { return w.max }

// Reset forgets everything observed.
func (w *Watermark) Reset() { *w = Watermark{} }
