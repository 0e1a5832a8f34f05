package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	WindowChecks      *prometheus.CounterVec
	WindowCheckErrors prometheus.Counter
}

// New registers the rate limit metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WindowChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "downloadgate_ratelimit_checks_total",
			Help: "Sliding window checks by outcome",
		}, []string{"outcome"}),
		WindowCheckErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "downloadgate_ratelimit_check_errors_total",
			Help: "Sliding window checks that failed to read the store",
		}),
	}
}

func (m *Metrics) RecordCheck(allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.WindowChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCheckErrors() {
	m.WindowCheckErrors.Inc()
}
