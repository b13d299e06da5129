package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the kestrel collectors on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewPromObs(reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	counters := map[string]prometheus.Counter{
		ports.MetricFramesTotal:         counter(ports.MetricFramesTotal, "Frames recovered from the serial stream."),
		ports.MetricDecodedTotal:        counter(ports.MetricDecodedTotal, "Metrics decoded and handed to the consumer."),
		ports.MetricFramingErrorsTotal:  counter(ports.MetricFramingErrorsTotal, "Frames dropped because of bad byte stuffing or size."),
		ports.MetricPacketErrorsTotal:   counter(ports.MetricPacketErrorsTotal, "Packets dropped because of bad length or layout."),
		ports.MetricValueErrorsTotal:    counter(ports.MetricValueErrorsTotal, "Packets dropped because the value did not match its type."),
		ports.MetricUnknownTagsTotal:    counter(ports.MetricUnknownTagsTotal, "Metrics carrying an unrecognised type tag."),
		ports.MetricConnectsTotal:       counter(ports.MetricConnectsTotal, "Successful port opens."),
		ports.MetricDisconnectsTotal:    counter(ports.MetricDisconnectsTotal, "Connections lost."),
		ports.MetricResetsTotal:         counter(ports.MetricResetsTotal, "Device resets performed."),
		ports.MetricCommandsSentTotal:   counter(ports.MetricCommandsSentTotal, "Robot commands written to the device."),
		ports.MetricSinkWrittenTotal:    counter(ports.MetricSinkWrittenTotal, "Packets written to sinks."),
		ports.MetricPacketsDroppedTotal: counter(ports.MetricPacketsDroppedTotal, "Packets dropped because the consumer mailbox was full."),
	}
	state := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.GaugeWorkerState,
		Help: "Worker state: 0 disconnected, 1 connected, 2 resetting, 3 detached.",
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.GaugePendingPackets,
		Help: "Packets queued for the consumer.",
	})
	frameSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.HistFrameSizeBytes,
		Help:    "Size of decoded frames.",
		Buckets: prometheus.ExponentialBuckets(8, 2, 12),
	})
	sinkLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.HistSinkLatencySeconds,
		Help:    "Time spent writing one batch to a sink.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	collectors := []prometheus.Collector{state, pending, frameSize, sinkLatency}
	for _, c := range counters {
		collectors = append(collectors, c)
	}
	reg.MustRegister(collectors...)

	return &PromObs{
		counters: counters,
		gauges: map[string]prometheus.Gauge{
			ports.GaugeWorkerState:    state,
			ports.GaugePendingPackets: pending,
		},
		histos: map[string]prometheus.Observer{
			ports.HistFrameSizeBytes:     frameSize,
			ports.HistSinkLatencySeconds: sinkLatency,
		},
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) Observe(name string, v float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

var _ ports.Observability = (*PromObs)(nil)
