package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the search module.
type Metrics struct {
	// Final classification per request
	SearchOutcome *prometheus.CounterVec

	// Individual upstream attempts by result
	UpstreamAttempts *prometheus.CounterVec

	// Upstream round-trip latency, completed exchanges only
	UpstreamLatency prometheus.Histogram
}

// New creates a new Metrics instance with all search module metrics
// registered. Call once per process; tests pass a nil *Metrics instead.
func New() *Metrics {
	return &Metrics{
		SearchOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tlo_gateway_search_outcomes_total",
			Help: "Total search outcomes by classification",
		}, []string{"outcome"}), // outcome: "success", "upstream_error", "parse_failure", "timeout"

		UpstreamAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tlo_gateway_upstream_attempts_total",
			Help: "Total upstream attempts by result",
		}, []string{"result"}), // result: "completed", "transport_error"

		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tlo_gateway_upstream_duration_seconds",
			Help:    "Duration of completed upstream exchanges",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

// IncrementOutcome records a final search classification.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.SearchOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementAttempt records one upstream attempt result.
func (m *Metrics) IncrementAttempt(result string) {
	if m != nil {
		m.UpstreamAttempts.WithLabelValues(result).Inc()
	}
}

// ObserveUpstreamLatency records the duration of a completed exchange.
func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m != nil {
		m.UpstreamLatency.Observe(d.Seconds())
	}
}
