package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline Prometheus metrics.
var (
	SearchTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_turns_total",
			Help:      "Chat turns answered, by reply kind",
		},
		[]string{"kind"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of a whole chat turn in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ExtractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_total",
			Help:      "Intent extractions, by path (llm/rules/keywords/previous)",
		},
		[]string{"path"},
	)

	Candidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Candidates per turn at each pipeline stage",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"stage"}, // "strict" / "relaxed" / "verified"
	)

	SessionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_cache_total",
			Help:      "Session cache lookups",
		},
		[]string{"kind", "result"},
	)
)

// SearchRecorder reports pipeline outcomes to the package metrics.
type SearchRecorder struct{}

// RecordTurn counts a finished turn.
func (SearchRecorder) RecordTurn(kind string, d time.Duration) {
	SearchTurnsTotal.WithLabelValues(kind).Inc()
	SearchDuration.Observe(d.Seconds())
}

// RecordCandidates observes the candidate count of a stage.
func (SearchRecorder) RecordCandidates(stage string, n int) {
	Candidates.WithLabelValues(stage).Observe(float64(n))
}

// RecordExtraction counts an intent extraction.
func (SearchRecorder) RecordExtraction(path string) {
	ExtractionTotal.WithLabelValues(path).Inc()
}
