package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/p4rtxlate/p4rtxlate/metrics"
)

// TestMetricsRegistered exercises every exported metric once and confirms
// the default registry reports a matching family name, the way teacher's
// metrics_test.go linted its own registered set.
func TestMetricsRegistered(t *testing.T) {
	metrics.TranslationLatencyHistogram.With(prometheus.Labels{"direction": "pi_to_ir"}).Observe(0.001)
	metrics.TranslationErrorCount.With(prometheus.Labels{"code": "InvalidArgument"}).Inc()
	metrics.EntryCountHistogram.With(prometheus.Labels{"direction": "pi_to_ir"}).Observe(1)
	metrics.SequencerBatchCount.Inc()
	metrics.SequencerBatchSizeHistogram.Observe(2)
	metrics.SequencerCycleCount.Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}

	want := []string{
		"p4rtxlate_translation_latency_histogram",
		"p4rtxlate_translation_error_total",
		"p4rtxlate_entry_count_histogram",
		"p4rtxlate_sequencer_batch_total",
		"p4rtxlate_sequencer_batch_size_histogram",
		"p4rtxlate_sequencer_cycle_total",
	}
	got := make(map[string]bool, len(families))
	for _, f := range families {
		got[f.GetName()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("metric family %q not found among registered families: %v", name, strings.Join(keys(got), ", "))
		}
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
