package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for submissions.
const (
	OutcomeGranted     = "granted"
	OutcomeInvalidBody = "invalid_body"
	OutcomeInvalid     = "validation_error"
	OutcomeHoneypot    = "honeypot"
	OutcomeRateLimited = "rate_limited"
	OutcomeLookupError = "lookup_error"
	OutcomeStoreError  = "store_error"
)

// Metrics holds Prometheus metrics for download submissions.
type Metrics struct {
	Submissions   *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
}

// New creates submission metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "download_gate_submissions_total",
			Help: "Total number of download submissions by outcome",
		}, []string{"outcome"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "download_gate_store_duration_seconds",
			Help:    "Latency of record store calls",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"op"}),
	}
}

// RecordOutcome increments the submissions counter for outcome.
func (m *Metrics) RecordOutcome(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveStore records one store call.
func (m *Metrics) ObserveStore(op string, seconds float64) {
	m.StoreDuration.WithLabelValues(op).Observe(seconds)
}
