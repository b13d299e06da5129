package ports

// Metric names understood by Observability implementations.
const (
	MetricFramesTotal         = "kestrel_frames_total"
	MetricDecodedTotal        = "kestrel_metrics_decoded_total"
	MetricFramingErrorsTotal  = "kestrel_framing_errors_total"
	MetricPacketErrorsTotal   = "kestrel_packet_errors_total"
	MetricValueErrorsTotal    = "kestrel_value_errors_total"
	MetricUnknownTagsTotal    = "kestrel_unknown_tags_total"
	MetricConnectsTotal       = "kestrel_connects_total"
	MetricDisconnectsTotal    = "kestrel_disconnects_total"
	MetricResetsTotal         = "kestrel_resets_total"
	MetricCommandsSentTotal   = "kestrel_commands_sent_total"
	MetricSinkWrittenTotal    = "kestrel_sink_written_total"
	MetricPacketsDroppedTotal = "kestrel_packets_dropped_total"

	GaugeWorkerState    = "kestrel_worker_state"
	GaugePendingPackets = "kestrel_pending_packets"

	HistFrameSizeBytes     = "kestrel_frame_size_bytes"
	HistSinkLatencySeconds = "kestrel_sink_latency_seconds"
)

type Observability interface {
	IncCounter(name string, v float64)
	SetGauge(name string, v float64)
	Observe(name string, v float64)
}

// NopObservability discards everything.
type NopObservability struct{}

func (NopObservability) IncCounter(string, float64) {}
func (NopObservability) SetGauge(string, float64)   {}
func (NopObservability) Observe(string, float64)    {}
