package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	Emitted      prometheus.Counter
	Dropped      prometheus.Counter
	Delivered    prometheus.Counter
	SinkFailures prometheus.Counter
}

// NewMetrics creates audit metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "download_gate_audit_emitted_total",
			Help: "Total number of audit events accepted into the buffer",
		}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "download_gate_audit_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full or closed",
		}),
		Delivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "download_gate_audit_delivered_total",
			Help: "Total number of audit events written to the sink",
		}),
		SinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "download_gate_audit_sink_failures_total",
			Help: "Total number of audit events the sink failed to accept",
		}),
	}
}

// IncEmitted increments the emitted counter.
func (m *Metrics) IncEmitted() {
	m.Emitted.Inc()
}

// IncDropped increments the dropped counter.
func (m *Metrics) IncDropped() {
	m.Dropped.Inc()
}

// IncDelivered increments the delivered counter.
func (m *Metrics) IncDelivered() {
	m.Delivered.Inc()
}

// IncSinkFailures increments the sink failures counter.
func (m *Metrics) IncSinkFailures() {
	m.SinkFailures.Inc()
}
