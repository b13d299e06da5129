// Package board is the consumer-side view of the telemetry stream: the
// latest value of every metric, a bounded metric history, a packet log with
// connect and disconnect rows, and the operator's hide/focus choices.
package board

import (
	"slices"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

const DefaultHistoryLen = 512

// Entry is the latest reading of one metric.
type Entry struct {
	Name       domain.MetricName
	Timestamp  domain.Timestamp
	Value      domain.MetricValue
	Count      int
	ReceivedAt time.Time
}

// Board is not safe for concurrent use; it is owned by the presentation loop.
type Board struct {
	latest    map[domain.MetricName]*Entry
	history   *ring[domain.Metric]
	packets   *ring[domain.Packet]
	hidden    map[domain.MetricName]struct{}
	focused   map[domain.MetricName]struct{}
	watermark domain.Watermark

	reboots   int
	connected bool
	lastEvent time.Time
}

func New(historyLen int) *Board {
	if historyLen <= 0 {
		historyLen = DefaultHistoryLen
	}
	return &Board{
		latest:  make(map[domain.MetricName]*Entry),
		history: newRing[domain.Metric](historyLen),
		packets: newRing[domain.Packet](historyLen),
		hidden:  make(map[domain.MetricName]struct{}),
		focused: make(map[domain.MetricName]struct{}),
	}
}

// Apply folds drained packets into the board and reports how many device
// reboots they revealed. A timestamp lower than any seen before means the
// device restarted its clock; everything recorded before it is dropped
// because the two time bases cannot be compared.
func (b *Board) Apply(packets []domain.Packet) (reboots int) {
	for _, p := range packets {
		if !p.IsTelemetry() {
			b.connected = p.Event == domain.EventConnected
			b.lastEvent = p.ReceivedAt
			b.packets.push(p)
			continue
		}
		m := p.Metric
		if b.watermark.Observe(m.Timestamp) {
			reboots++
			b.reboots++
			b.forget()
		}
		e, ok := b.latest[m.Name]
		if !ok {
			e = &Entry{Name: m.Name}
			b.latest[m.Name] = e
		}
		e.Timestamp = m.Timestamp
		e.Value = m.Value
		e.ReceivedAt = p.ReceivedAt
		e.Count++
		b.history.push(m)
		b.packets.push(p)
	}
	return reboots
}

// forget drops telemetry from before a reboot. System rows stay in the
// packet log.
func (b *Board) forget() {
	clear(b.latest)
	b.history.clear()
	b.packets.filter(func(p domain.Packet) bool { return !p.IsTelemetry() })
}

// Now is the latest device timestamp seen since the last reboot.
func (b *Board) Now() domain.Timestamp { return b.watermark.Max() }

func (b *Board) Reboots() int    { return b.reboots }
func (b *Board) Connected() bool { return b.connected }

// LastEvent is the host time of the latest connect or disconnect.
func (b *Board) LastEvent() time.Time { return b.lastEvent }

// SinceLatest is the device time elapsed since e was received.
func (b *Board) SinceLatest(e Entry) domain.Timestamp { return b.Now().Sub(e.Timestamp) }

// Latest lists visible metrics ordered by name.
func (b *Board) Latest() []Entry {
	out := make([]Entry, 0, len(b.latest))
	for name, e := range b.latest {
		if _, hidden := b.hidden[name]; hidden {
			continue
		}
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, c Entry) int { return a.Name.Compare(c.Name) })
	return out
}

// Lookup returns the latest entry of name, hidden or not.
func (b *Board) Lookup(name domain.MetricName) (Entry, bool) {
	e, ok := b.latest[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Packets returns the packet log in arrival order, oldest first. System
// packets are always included; telemetry of hidden metrics is not.
func (b *Board) Packets() []domain.Packet {
	out := make([]domain.Packet, 0, b.packets.len())
	for i := 0; i < b.packets.len(); i++ {
		p := b.packets.at(i)
		if p.IsTelemetry() && b.IsHidden(p.Metric.Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Series projects the history of name onto real numbers for plotting.
func (b *Board) Series(name domain.MetricName) []float64 {
	var out []float64
	for i := 0; i < b.history.len(); i++ {
		m := b.history.at(i)
		if m.Name != name {
			continue
		}
		if v, ok := m.Value.Float64(); ok {
			out = append(out, v)
		}
	}
	return out
}

func (b *Board) Hide(name domain.MetricName) {
	b.hidden[name] = struct{}{}
	delete(b.focused, name)
}

func (b *Board) Unhide(name domain.MetricName) { delete(b.hidden, name) }
func (b *Board) UnhideAll()                    { clear(b.hidden) }

func (b *Board) IsHidden(name domain.MetricName) bool {
	_, ok := b.hidden[name]
	return ok
}

func (b *Board) HiddenCount() int { return len(b.hidden) }

// ToggleFocus focuses or unfocuses name. Only metrics whose latest value is
// a plottable scalar can gain focus.
func (b *Board) ToggleFocus(name domain.MetricName) bool {
	if _, ok := b.focused[name]; ok {
		delete(b.focused, name)
		return false
	}
	e, ok := b.latest[name]
	if !ok || !e.Value.IsFocusable() {
		return false
	}
	b.focused[name] = struct{}{}
	return true
}

func (b *Board) IsFocused(name domain.MetricName) bool {
	_, ok := b.focused[name]
	return ok
}

// Focused lists focused metrics ordered by name.
func (b *Board) Focused() []domain.MetricName {
	out := make([]domain.MetricName, 0, len(b.focused))
	for name := range b.focused {
		out = append(out, name)
	}
	slices.SortFunc(out, domain.MetricName.Compare)
	return out
}

// Clear forgets the latest value and the history of name.
func (b *Board) Clear(name domain.MetricName) {
	delete(b.latest, name)
	b.history.filter(func(m domain.Metric) bool { return m.Name != name })
	b.packets.filter(func(p domain.Packet) bool { return !p.IsTelemetry() || p.Metric.Name != name })
}
