// Package metrics defines prometheus metric types and provides convenience
// methods to add accounting to various parts of the translation pipeline.
//
// When defining new operations or metrics, these are helpful values to
// track:
//  - things coming into or going out of the system: translation calls,
//    sequencer batches, writes.
//  - the success or error status of any of the above.
//  - the distribution of processing latency.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranslationLatencyHistogram tracks the latency of one PI<->IR
	// write-request translation call, labeled by the direction performed.
	TranslationLatencyHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "p4rtxlate_translation_latency_histogram",
			Help: "translation call latency distribution (seconds), by direction",
			Buckets: []float64{
				0.0001, 0.00016, 0.00025, 0.0004, 0.00063,
				0.001, 0.0016, 0.0025, 0.004, 0.0063,
				0.01, 0.016, 0.025, 0.04, 0.063,
				0.1, 0.16, 0.25,
			},
		},
		[]string{"direction"})

	// TranslationErrorCount measures the number of translation failures,
	// broken down by the p4err.Code returned.
	//
	// Example usage:
	//   metrics.TranslationErrorCount.With(prometheus.Labels{"code": "InvalidArgument"}).Inc()
	TranslationErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p4rtxlate_translation_error_total",
			Help: "The total number of translation errors encountered, by code.",
		}, []string{"code"})

	// EntryCountHistogram tracks the number of updates carried by a single
	// WriteRequest translated in one call.
	EntryCountHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "p4rtxlate_entry_count_histogram",
			Help: "table entry count per translated request/response, by direction",
			Buckets: []float64{
				1, 2, 3, 4, 5, 6, 8,
				10, 16, 25, 40, 63,
				100, 160, 250, 400, 630,
				1000, 1600, 2500, 4000, 6300,
				10000,
			},
		},
		[]string{"direction"})

	// SequencerBatchCount counts the number of dependency-ordered batches
	// the sequencer has emitted.
	SequencerBatchCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "p4rtxlate_sequencer_batch_total",
			Help: "Number of batches emitted by the update sequencer.",
		},
	)

	// SequencerBatchSizeHistogram tracks how many updates land in a single
	// sequencer batch.
	SequencerBatchSizeHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "p4rtxlate_sequencer_batch_size_histogram",
			Help: "update count per sequencer batch",
			Buckets: []float64{
				1, 2, 3, 4, 5, 6, 8,
				10, 16, 25, 40, 63,
				100, 160, 250, 400, 630,
				1000,
			},
		},
	)

	// SequencerCycleCount counts how many times the sequencer has been
	// invoked to order a set of pending updates.
	SequencerCycleCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "p4rtxlate_sequencer_cycle_total",
			Help: "Number of times Sequence has been called.",
		},
	)
)

// init() prints a log message to let the user know that the package has
// been loaded and the metrics registered. The metrics are auto-registered,
// which means they are registered as soon as this package is loaded, and
// the exact time this occurs (and whether this occurs at all in a given
// context) can be opaque.
func init() {
	log.Println("Prometheus metrics in p4rtxlate.metrics are registered.")
}
