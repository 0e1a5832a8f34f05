package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ratelimitModels "downloadgate/internal/ratelimit/models"
	"downloadgate/internal/submission/metrics"
	"downloadgate/internal/submission/models"
	dErrors "downloadgate/pkg/domain-errors"
	"downloadgate/pkg/platform/agent"
	"downloadgate/pkg/platform/audit"
	"downloadgate/pkg/platform/privacy"
	"downloadgate/pkg/requestcontext"
)

// Public messages for pipeline failures.
const (
	MsgInvalidBody  = "Invalid request body."
	MsgRateLimited  = "Too many requests. Try again later."
	MsgLookupFailed = "Could not process download request."
	MsgStoreFailed  = "Could not store download request."
)

const defaultStoreTimeout = 5 * time.Second

// Store appends accepted records.
type Store interface {
	Insert(ctx context.Context, rec *models.SubmissionRecord) error
}

// RateLimiter decides whether an identity may submit again.
type RateLimiter interface {
	Check(ctx context.Context, ipHash string, now time.Time) (*ratelimitModels.RateLimitResult, error)
}

// SubmitInput is a parsed request: the JSON-decoded body plus client metadata.
type SubmitInput struct {
	Address   string
	UserAgent string
	Body      any
	Now       time.Time
}

// SubmitResult carries the download reference on success. RateLimit is set
// whenever the window was consulted, including when the request was denied.
type SubmitResult struct {
	Download  *models.DownloadReference
	RecordID  string
	RateLimit *ratelimitModels.RateLimitResult
}

// Service runs the intake pipeline after the body has been parsed:
// normalize, validate, hash identity, check the window, persist.
type Service struct {
	store        Store
	limiter      RateLimiter
	salt         string
	download     models.DownloadReference
	storeTimeout time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	auditor      audit.Emitter
	tracer       trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) {
		if a != nil {
			s.auditor = a
		}
	}
}

// WithStoreTimeout bounds each store call, layered on the request context.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(store Store, limiter RateLimiter, salt string, download models.DownloadReference, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if salt == "" {
		return nil, errors.New("identity salt is required")
	}
	if download.DownloadURL == "" || download.SHA256 == "" {
		return nil, errors.New("download url and checksum are required")
	}

	svc := &Service{
		store:        store,
		limiter:      limiter,
		salt:         salt,
		download:     download,
		storeTimeout: defaultStoreTimeout,
		logger:       slog.Default(),
		auditor:      audit.Discard{},
		tracer:       otel.Tracer("downloadgate/internal/submission/service"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Submit runs the pipeline. Every failure is a domain error carrying the
// public code and message. A denied or failed request persists nothing.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "submission.Submit")
	defer span.End()

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	requestID := requestcontext.RequestID(ctx)
	client := agent.Describe(in.UserAgent)

	candidate, ok := models.Normalize(in.Body)
	if !ok {
		s.reject(ctx, span, metrics.OutcomeInvalidBody, audit.EventSubmissionInvalid, dErrors.CodeInvalidBody, now, client, nil)
		return nil, dErrors.New(dErrors.CodeInvalidBody, MsgInvalidBody)
	}

	if err := models.Validate(*candidate); err != nil {
		if candidate.Website != "" {
			s.reject(ctx, span, metrics.OutcomeHoneypot, audit.EventHoneypotTriggered, dErrors.CodeValidation, now, client, candidate)
		} else {
			s.reject(ctx, span, metrics.OutcomeInvalid, audit.EventSubmissionInvalid, dErrors.CodeValidation, now, client, candidate)
		}
		return nil, err
	}

	ipHash := privacy.HashIdentity(in.Address, s.salt)

	decision, err := s.checkWindow(ctx, ipHash, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "rate window lookup failed",
			"request_id", requestID,
			"error", err,
		)
		s.fail(ctx, span, metrics.OutcomeLookupError, dErrors.CodeInternal, now, client, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MsgLookupFailed)
	}
	result := &SubmitResult{RateLimit: decision}
	span.SetAttributes(attribute.Int("ratelimit.remaining", decision.Remaining))

	if !decision.Allowed {
		s.reject(ctx, span, metrics.OutcomeRateLimited, audit.EventRateLimitExceeded, dErrors.CodeRateLimited, now, client, candidate)
		return result, dErrors.New(dErrors.CodeRateLimited, MsgRateLimited)
	}

	record, err := models.NewSubmissionRecord(*candidate, ipHash, in.UserAgent, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "build download record failed",
			"request_id", requestID,
			"error", err,
		)
		s.fail(ctx, span, metrics.OutcomeStoreError, dErrors.CodeStoreWrite, now, client, err)
		return nil, dErrors.Wrap(err, dErrors.CodeStoreWrite, MsgStoreFailed)
	}

	if err := s.insert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "download record insert failed",
			"request_id", requestID,
			"error", err,
		)
		s.fail(ctx, span, metrics.OutcomeStoreError, dErrors.CodeStoreWrite, now, client, err)
		return nil, dErrors.Wrap(err, dErrors.CodeStoreWrite, MsgStoreFailed)
	}

	s.logger.InfoContext(ctx, "download granted",
		"request_id", requestID,
		"record_id", record.ID,
		"purposes", len(candidate.Purposes),
		"browser", client.Browser,
	)
	if s.metrics != nil {
		s.metrics.RecordOutcome(metrics.OutcomeGranted)
	}
	span.SetAttributes(attribute.String("submission.outcome", metrics.OutcomeGranted))

	event := s.event(ctx, audit.EventDownloadGranted, now, client, candidate)
	event.RecordID = record.ID
	s.auditor.Emit(ctx, event)

	download := s.download
	result.Download = &download
	result.RecordID = record.ID
	return result, nil
}

func (s *Service) checkWindow(ctx context.Context, ipHash string, now time.Time) (*ratelimitModels.RateLimitResult, error) {
	ctx, span := s.tracer.Start(ctx, "store.CountSince")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	start := time.Now()
	decision, err := s.limiter.Check(ctx, ipHash, now)
	if s.metrics != nil {
		s.metrics.ObserveStore("count", time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
	}
	return decision, err
}

func (s *Service) insert(ctx context.Context, record *models.SubmissionRecord) error {
	ctx, span := s.tracer.Start(ctx, "store.Insert")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.Insert(ctx, record)
	if s.metrics != nil {
		s.metrics.ObserveStore("insert", time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// reject handles policy outcomes: info log, metrics, audit.
func (s *Service) reject(ctx context.Context, span trace.Span, outcome string, action audit.AuditEvent, code dErrors.Code, now time.Time, client agent.Summary, c *models.SubmissionCandidate) {
	s.logger.InfoContext(ctx, "download request rejected",
		"request_id", requestcontext.RequestID(ctx),
		"outcome", outcome,
	)
	if s.metrics != nil {
		s.metrics.RecordOutcome(outcome)
	}
	span.SetAttributes(attribute.String("submission.outcome", outcome))

	event := s.event(ctx, action, now, client, c)
	event.Reason = string(code)
	s.auditor.Emit(ctx, event)
}

// fail handles infrastructure outcomes; the caller has already logged the cause.
func (s *Service) fail(ctx context.Context, span trace.Span, outcome string, code dErrors.Code, now time.Time, client agent.Summary, err error) {
	if s.metrics != nil {
		s.metrics.RecordOutcome(outcome)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)

	event := s.event(ctx, audit.EventStoreFailed, now, client, nil)
	event.Reason = string(code)
	s.auditor.Emit(ctx, event)
}

func (s *Service) event(ctx context.Context, action audit.AuditEvent, now time.Time, client agent.Summary, c *models.SubmissionCandidate) audit.Event {
	event := audit.NewEvent(action, now)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Client = client
	if c != nil {
		for _, p := range c.Purposes {
			event.Purposes = append(event.Purposes, p.String())
		}
		for _, a := range c.Affiliations {
			event.Affiliations = append(event.Affiliations, a.String())
		}
		event.Lang = c.Lang
		event.PluginVersion = c.PluginVersion
	}
	return event
}
