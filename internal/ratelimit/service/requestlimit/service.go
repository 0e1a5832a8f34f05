package requestlimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"downloadgate/internal/ratelimit/config"
	"downloadgate/internal/ratelimit/metrics"
	"downloadgate/internal/ratelimit/models"
	"downloadgate/internal/ratelimit/ports"
)

type WindowCounter = ports.WindowCounter

// Service enforces a read-time sliding window over persisted submissions.
//
// The check and the later insert are separate store calls with no lock
// between them: two concurrent requests from one identity near the cap may
// both pass. The window deters abuse; it is not a hard quota.
type Service struct {
	counter WindowCounter
	logger  *slog.Logger
	config  config.Config
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg config.Config) Option {
	return func(s *Service) {
		s.config = cfg.WithDefaults()
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(counter WindowCounter, opts ...Option) (*Service, error) {
	if counter == nil {
		return nil, errors.New("window counter is required")
	}

	svc := &Service{
		counter: counter,
		config:  *config.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check counts the identity's records in the window ending at now and denies
// once the count reaches the configured maximum. It never writes.
func (s *Service) Check(ctx context.Context, ipHash string, now time.Time) (*models.RateLimitResult, error) {
	since := now.Add(-s.config.Window)

	count, err := s.counter.CountSince(ctx, ipHash, since.UnixMilli())
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementCheckErrors()
		}
		return nil, fmt.Errorf("count submissions in window: %w", err)
	}

	limit := s.config.MaxRequests
	result := &models.RateLimitResult{
		Allowed:   count < limit,
		Limit:     limit,
		Remaining: max(limit-count-1, 0),
		ResetAt:   now.Add(s.config.Window),
	}
	if !result.Allowed {
		result.Remaining = 0
		result.ResetAt = s.resetAt(ctx, ipHash, since, now)
		result.RetryAfter = retryAfterSeconds(result.ResetAt.Sub(now))
		if s.logger != nil {
			s.logger.InfoContext(ctx, "submission window exhausted",
				"limit", limit,
				"window_seconds", int(s.config.Window.Seconds()),
			)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCheck(result.Allowed)
	}
	return result, nil
}

// resetAt is when the oldest record in the window ages out and a slot frees.
// A failed or empty lookup falls back to a full window from now.
func (s *Service) resetAt(ctx context.Context, ipHash string, since, now time.Time) time.Time {
	oldest, ok, err := s.counter.OldestSince(ctx, ipHash, since.UnixMilli())
	if err != nil || !ok {
		if err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "oldest submission lookup failed", "error", err)
		}
		return now.Add(s.config.Window)
	}
	return time.UnixMilli(oldest).Add(s.config.Window)
}

// retryAfterSeconds rounds up so a client never retries before the slot frees.
func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	return max(secs, 1)
}

// Window returns the configured window length.
func (s *Service) Window() time.Duration {
	return s.config.Window
}
