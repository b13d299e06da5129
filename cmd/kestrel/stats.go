package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/spf13/pflag"
)

var statsTargets = []string{
	"kestrel_worker_state",
	"kestrel_frames_total",
	"kestrel_metrics_decoded_total",
	"kestrel_framing_errors_total",
	"kestrel_packet_errors_total",
	"kestrel_value_errors_total",
	"kestrel_disconnects_total",
}

var stateNames = []string{"disconnected", "connected", "resetting", "detached"}

func statsCommand(args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(ctx, *url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	values, err := scrapeValues(resp.Body, statsTargets)
	if err != nil {
		return err
	}
	fmt.Println(formatSnapshot(time.Now(), values))
	return nil
}

// scrapeValues picks unlabelled samples out of the Prometheus text format.
func scrapeValues(r io.Reader, names []string) (map[string]float64, error) {
	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("parse exposition: %w", err)
	}
	values := make(map[string]float64, len(names))
	for _, name := range names {
		mf, ok := families[name]
		if !ok {
			continue
		}
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) > 0 {
				continue
			}
			if v, ok := sampleValue(m); ok {
				values[name] = v
			}
		}
	}
	return values, nil
}

func sampleValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.Counter != nil:
		return m.GetCounter().GetValue(), true
	case m.Gauge != nil:
		return m.GetGauge().GetValue(), true
	case m.Untyped != nil:
		return m.GetUntyped().GetValue(), true
	}
	return 0, false
}

func formatSnapshot(at time.Time, values map[string]float64) string {
	state := "unknown"
	if s, ok := values["kestrel_worker_state"]; ok && int(s) >= 0 && int(s) < len(stateNames) {
		state = stateNames[int(s)]
	}
	return fmt.Sprintf("[%s] state=%s frames=%.0f metrics=%.0f framing_errors=%.0f packet_errors=%.0f value_errors=%.0f disconnects=%.0f",
		at.Format(time.RFC3339),
		state,
		values["kestrel_frames_total"],
		values["kestrel_metrics_decoded_total"],
		values["kestrel_framing_errors_total"],
		values["kestrel_packet_errors_total"],
		values["kestrel_value_errors_total"],
		values["kestrel_disconnects_total"],
	)
}
