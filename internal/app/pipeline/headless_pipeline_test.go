package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

func TestWriteBatchesChunksAndSkipsFailingSink(t *testing.T) {
	packets := make([]domain.Packet, 5)
	good := &mockSink{}
	bad := &mockSink{err: errors.New("disk full")}
	obs := &mockObs{}

	writeBatches(packets, []ports.Sink{bad, good}, 2, obs, quiet())

	if got := good.sizes(); len(got) != 3 || got[0] != 2 || got[2] != 1 {
		t.Fatalf("unexpected batch sizes %v", got)
	}
	if obs.counters[ports.MetricSinkWrittenTotal] != 5 {
		t.Fatalf("expected 5 written packets, got %v", obs.counters[ports.MetricSinkWrittenTotal])
	}
	if len(bad.sizes()) != 3 {
		t.Fatalf("failing sink should still be offered every batch")
	}
}

func TestRunHeadlessDrainsUntilCancelled(t *testing.T) {
	src := &mockSource{batches: [][]domain.Packet{
		{domain.SystemPacket(domain.EventConnected, time.Now())},
		nil,
		{{}, {}},
	}}
	sink := &mockSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- RunHeadless(ctx, src, []ports.Sink{sink}, ports.Policy{IdleSleep: time.Millisecond}, nil, quiet())
	}()

	deadline := time.After(2 * time.Second)
	for sink.total() < 3 {
		select {
		case <-deadline:
			t.Fatalf("timed out, sink saw %d packets", sink.total())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type mockSource struct {
	mu      sync.Mutex
	batches [][]domain.Packet
}

func (m *mockSource) DrainPackets() []domain.Packet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batches) == 0 {
		return nil
	}
	b := m.batches[0]
	m.batches = m.batches[1:]
	return b
}

type mockSink struct {
	mu      sync.Mutex
	err     error
	batches []int
}

func (m *mockSink) Name() string { return "mock" }

func (m *mockSink) WriteBatch(p []domain.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, len(p))
	return m.err
}

func (m *mockSink) sizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.batches...)
}

func (m *mockSink) total() int {
	n := 0
	for _, s := range m.sizes() {
		n += s
	}
	return n
}

type mockObs struct {
	counters map[string]float64
}

func (m *mockObs) IncCounter(name string, v float64) {
	if m.counters == nil {
		m.counters = map[string]float64{}
	}
	m.counters[name] += v
}
func (m *mockObs) SetGauge(string, float64) {}
func (m *mockObs) Observe(string, float64)  {}
