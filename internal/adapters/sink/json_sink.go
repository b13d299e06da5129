package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// JSONSink writes one JSON object per packet (JSON Lines).
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Name() string { return "jsonl" }

type jsonRecord struct {
	ReceivedAt time.Time `json:"received_at"`
	Event      string    `json:"event,omitempty"`
	Timestamp  *uint32   `json:"ts_ms,omitempty"`
	Name       string    `json:"name,omitempty"`
	Type       string    `json:"type,omitempty"`
	Value      any       `json:"value,omitempty"`
}

// WriteBatch encodes every packet of the batch. A packet that fails to encode
// is skipped and reported in the joined error.
func (s *JSONSink) WriteBatch(packets []domain.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, p := range packets {
		rec := jsonRecord{ReceivedAt: p.ReceivedAt}
		if p.IsTelemetry() {
			ts := p.Metric.Timestamp.Millis()
			rec.Timestamp = &ts
			rec.Name = p.Metric.Name.String()
			rec.Type = p.Metric.Value.Type()
			rec.Value = jsonValue(p.Metric.Value)
		} else {
			rec.Event = p.Event.String()
		}
		if err := s.enc.Encode(rec); err != nil {
			errs = append(errs, fmt.Errorf("encode packet: %w", err))
		}
	}
	return errors.Join(errs...)
}

// jsonValue maps a metric value onto JSON-native types. Unknown values are
// emitted as their raw bytes (base64). Non-finite floats become the strings
// "NaN", "+Inf" and "-Inf".
func jsonValue(v domain.MetricValue) any {
	switch v.Kind() {
	case domain.KindOne:
		if b, ok := v.AsBool(); ok {
			return b
		}
		if u, ok := v.AsUnsignedInteger(); ok {
			return u
		}
		if i, ok := v.AsSignedInteger(); ok {
			return i
		}
		f, _ := v.AsFloat()
		return jsonFloat(f)
	case domain.KindMany:
		if seq, ok := v.BoolSeq(); ok {
			return slices.AppendSeq([]bool{}, seq)
		}
		if seq, ok := v.UnsignedIntegerSeq(); ok {
			return slices.AppendSeq([]uint64{}, seq)
		}
		if seq, ok := v.SignedIntegerSeq(); ok {
			return slices.AppendSeq([]int64{}, seq)
		}
		if seq, ok := v.FloatSeq(); ok {
			out := []any{}
			for f := range seq {
				out = append(out, jsonFloat(f))
			}
			return out
		}
		return []any{}
	default:
		return v.Raw()
	}
}

func jsonFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

var _ ports.Sink = (*JSONSink)(nil)
