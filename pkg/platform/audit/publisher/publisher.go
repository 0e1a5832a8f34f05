// Package publisher hands audit events from the request path to a background
// worker through a bounded buffer. Emit never blocks: when the buffer is full
// the event is dropped and counted.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "downloadgate/pkg/platform/audit"
)

const defaultBuffer = 1024

// Publisher is a non-blocking audit.Emitter backed by a buffered channel.
type Publisher struct {
	mu      sync.RWMutex
	closed  bool
	events  chan audit.Event
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer sets the channel capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets a logger for drop reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher creates a publisher; drain it with a worker reading Inbox.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{}
	for _, opt := range opts {
		opt(p)
	}
	if p.events == nil {
		p.events = make(chan audit.Event, defaultBuffer)
	}
	return p
}

// Emit enqueues the event or drops it when the buffer is full or closed.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.drop(ctx, event, "closed")
		return
	}
	select {
	case p.events <- event:
		if p.metrics != nil {
			p.metrics.IncEmitted()
		}
	default:
		p.drop(ctx, event, "buffer full")
	}
}

func (p *Publisher) drop(ctx context.Context, event audit.Event, reason string) {
	if p.metrics != nil {
		p.metrics.IncDropped()
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", event.Action,
			"request_id", event.RequestID,
			"reason", reason,
		)
	}
}

// Inbox is the channel a worker drains. It is closed by Close.
func (p *Publisher) Inbox() <-chan audit.Event {
	return p.events
}

// Close stops accepting events and closes the inbox so the worker can finish
// the buffered backlog. It is safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.events)
}
