package worker

import (
	"context"
	"log/slog"
	"time"

	audit "downloadgate/pkg/platform/audit"
	"downloadgate/pkg/platform/audit/publisher"
)

const defaultDeliveryTimeout = 5 * time.Second

// Worker consumes audit events from a channel and hands them to a sink.
// Sink failures are logged and counted; they never stop the worker.
type Worker struct {
	sink    audit.Sink
	inbox   <-chan audit.Event
	logger  *slog.Logger
	metrics *publisher.Metrics
	timeout time.Duration
}

// Option configures the Worker.
type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithMetrics(m *publisher.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithDeliveryTimeout bounds each sink call.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func NewWorker(sink audit.Sink, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{sink: sink, inbox: inbox, timeout: defaultDeliveryTimeout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run delivers events until the inbox is closed. Cancelling ctx does not stop
// delivery of the backlog; close the publisher to finish.
func (w *Worker) Run(ctx context.Context) error {
	base := context.WithoutCancel(ctx)
	for event := range w.inbox {
		w.deliver(base, event)
	}
	return nil
}

func (w *Worker) deliver(base context.Context, event audit.Event) {
	ctx, cancel := context.WithTimeout(base, w.timeout)
	defer cancel()

	if err := w.sink.Append(ctx, event); err != nil {
		if w.metrics != nil {
			w.metrics.IncSinkFailures()
		}
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "audit sink append failed",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return
	}
	if w.metrics != nil {
		w.metrics.IncDelivered()
	}
}
