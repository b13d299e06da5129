package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(reg)

	obs.IncCounter(ports.MetricDecodedTotal, 5)
	if got := testutil.ToFloat64(obs.counters[ports.MetricDecodedTotal]); got != 5 {
		t.Fatalf("expected decoded counter 5, got %f", got)
	}

	obs.IncCounter(ports.MetricFramingErrorsTotal, 2)
	if got := testutil.ToFloat64(obs.counters[ports.MetricFramingErrorsTotal]); got != 2 {
		t.Fatalf("expected framing error counter 2, got %f", got)
	}

	obs.SetGauge(ports.GaugeWorkerState, 3)
	if got := testutil.ToFloat64(obs.gauges[ports.GaugeWorkerState]); got != 3 {
		t.Fatalf("expected state gauge 3, got %f", got)
	}

	obs.Observe(ports.HistFrameSizeBytes, 34)
	hCollector := obs.histos[ports.HistFrameSizeBytes].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected frame size histogram to record 1 sample, got %d", samples)
	}

	obs.IncCounter("not_a_metric", 1)
	if n := testutil.CollectAndCount(reg, ports.MetricDecodedTotal); n != 1 {
		t.Fatalf("expected decoded counter to be registered once, got %d", n)
	}
}

func TestPromObsSeparateRegistries(t *testing.T) {
	NewPromObs(prometheus.NewRegistry())
	NewPromObs(prometheus.NewRegistry())
}
