package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,RateLimiter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	ratelimitModels "downloadgate/internal/ratelimit/models"
	"downloadgate/internal/submission/metrics"
	"downloadgate/internal/submission/models"
	"downloadgate/internal/submission/service/mocks"
	dErrors "downloadgate/pkg/domain-errors"
	"downloadgate/pkg/platform/audit"
	"downloadgate/pkg/platform/privacy"
	"downloadgate/pkg/requestcontext"
)

// =============================================================================
// Submission Service Test Suite
// =============================================================================
// The service owns stage ordering: each rejection must stop the pipeline
// before any later collaborator is touched. gomock fails on unexpected calls,
// so a missing EXPECT is the assertion that a stage was skipped.

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, e audit.Event) {
	r.events = append(r.events, e)
}

type SubmitServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	limiter *mocks.MockRateLimiter
	auditor *recordingAuditor
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
	now     time.Time
}

const (
	testSalt    = "pepper"
	testAddress = "203.0.113.7"
)

var testDownload = models.DownloadReference{
	DownloadURL: "https://cdn.example.org/plugin-1.4.2.zip",
	SHA256:      "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
}

func TestSubmitServiceSuite(t *testing.T) {
	suite.Run(t, new(SubmitServiceSuite))
}

func (s *SubmitServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.limiter = mocks.NewMockRateLimiter(s.ctrl)
	s.auditor = &recordingAuditor{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	s.now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	svc, err := New(s.store, s.limiter, testSalt, testDownload,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithAuditor(s.auditor),
		WithStoreTimeout(2*time.Second),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *SubmitServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validBody() map[string]any {
	return map[string]any{
		"firstName":      "Ada",
		"lastName":       "Lovelace",
		"email":          "Ada@Example.org",
		"purposes":       []any{"composer"},
		"affiliations":   []any{"amfn"},
		"consentTerms":   true,
		"consentUpdates": true,
		"lang":           "en",
		"pluginVersion":  "1.4.2",
	}
}

func (s *SubmitServiceSuite) input(body any) SubmitInput {
	return SubmitInput{Address: testAddress, UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0", Body: body, Now: s.now}
}

func (s *SubmitServiceSuite) allow() *ratelimitModels.RateLimitResult {
	return &ratelimitModels.RateLimitResult{Allowed: true, Limit: 5, Remaining: 4, ResetAt: s.now.Add(10 * time.Minute)}
}

func (s *SubmitServiceSuite) requireCode(err error, code dErrors.Code, msg string) {
	s.T().Helper()
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected domain error, got %v", err)
	s.Equal(code, de.Code)
	s.Equal(msg, de.Message)
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *SubmitServiceSuite) TestNew() {
	s.Run("nil store", func() {
		_, err := New(nil, s.limiter, testSalt, testDownload)
		s.ErrorContains(err, "record store is required")
	})
	s.Run("nil limiter", func() {
		_, err := New(s.store, nil, testSalt, testDownload)
		s.ErrorContains(err, "rate limiter is required")
	})
	s.Run("empty salt", func() {
		_, err := New(s.store, s.limiter, "", testDownload)
		s.ErrorContains(err, "salt")
	})
	s.Run("missing download", func() {
		_, err := New(s.store, s.limiter, testSalt, models.DownloadReference{DownloadURL: "x"})
		s.ErrorContains(err, "checksum")
	})
}

// =============================================================================
// Pipeline
// =============================================================================

func (s *SubmitServiceSuite) TestAccepted() {
	wantHash := privacy.HashIdentity(testAddress, testSalt)
	var stored *models.SubmissionRecord

	s.limiter.EXPECT().Check(gomock.Any(), wantHash, s.now).
		DoAndReturn(func(ctx context.Context, _ string, _ time.Time) (*ratelimitModels.RateLimitResult, error) {
			_, hasDeadline := ctx.Deadline()
			s.True(hasDeadline, "store timeout applied to window lookup")
			return s.allow(), nil
		})
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rec *models.SubmissionRecord) error {
			_, hasDeadline := ctx.Deadline()
			s.True(hasDeadline, "store timeout applied to insert")
			stored = rec
			return nil
		})

	result, err := s.service.Submit(s.ctx, s.input(validBody()))
	s.Require().NoError(err)
	s.Require().NotNil(result.Download)
	s.Equal(testDownload, *result.Download)
	s.Equal(4, result.RateLimit.Remaining)

	s.Require().NotNil(stored)
	s.Equal(result.RecordID, stored.ID)
	s.Equal(wantHash, stored.IPHash)
	s.Equal("ada@example.org", stored.Email)
	s.Equal(s.now.UnixMilli(), stored.CreatedAtMs)
	s.Equal(`["composer"]`, stored.PurposesJSON)
	s.NotContains(stored.IPHash, testAddress)

	s.Require().Len(s.auditor.events, 1)
	event := s.auditor.events[0]
	s.Equal(string(audit.EventDownloadGranted), event.Action)
	s.Equal(stored.ID, event.RecordID)
	s.Equal("req-1", event.RequestID)
	s.Equal([]string{"composer"}, event.Purposes)
	s.Equal("Firefox", event.Client.Browser)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeGranted)))
}

func (s *SubmitServiceSuite) TestNonObjectBody() {
	for _, body := range []any{nil, []any{validBody()}, "text", 3.0} {
		_, err := s.service.Submit(s.ctx, s.input(body))
		s.requireCode(err, dErrors.CodeInvalidBody, MsgInvalidBody)
	}
	s.Equal(4.0, testutil.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeInvalidBody)))
}

func (s *SubmitServiceSuite) TestValidationStopsBeforeRateCheck() {
	body := validBody()
	body["affiliations"] = []any{"none", "amfn"}

	_, err := s.service.Submit(s.ctx, s.input(body))
	s.requireCode(err, dErrors.CodeValidation, models.MsgAffiliationNoneExclusive)
	s.Require().Len(s.auditor.events, 1)
	s.Equal(string(audit.EventSubmissionInvalid), s.auditor.events[0].Action)
	s.Equal(string(dErrors.CodeValidation), s.auditor.events[0].Reason)
}

func (s *SubmitServiceSuite) TestHoneypotLooksLikeGenericValidationFailure() {
	body := validBody()
	body["website"] = "http://spam.example"

	_, err := s.service.Submit(s.ctx, s.input(body))
	s.requireCode(err, dErrors.CodeValidation, models.MsgValidationFailed)
	s.Require().Len(s.auditor.events, 1)
	s.Equal(string(audit.EventHoneypotTriggered), s.auditor.events[0].Action)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeHoneypot)))
}

func (s *SubmitServiceSuite) TestRateLimitedPersistsNothing() {
	denied := &ratelimitModels.RateLimitResult{Allowed: false, Limit: 5, ResetAt: s.now.Add(10 * time.Minute), RetryAfter: 600}
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), s.now).Return(denied, nil)

	result, err := s.service.Submit(s.ctx, s.input(validBody()))
	s.requireCode(err, dErrors.CodeRateLimited, MsgRateLimited)
	s.Require().NotNil(result)
	s.Nil(result.Download)
	s.Equal(600, result.RateLimit.RetryAfter)
	s.Equal(string(audit.EventRateLimitExceeded), s.auditor.events[0].Action)
}

func (s *SubmitServiceSuite) TestWindowLookupFailure() {
	cause := errors.New("database is locked")
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, cause)

	result, err := s.service.Submit(s.ctx, s.input(validBody()))
	s.Nil(result)
	s.requireCode(err, dErrors.CodeInternal, MsgLookupFailed)
	s.ErrorIs(err, cause)
	s.Equal(string(audit.EventStoreFailed), s.auditor.events[0].Action)
}

func (s *SubmitServiceSuite) TestInsertFailure() {
	cause := errors.New("disk full")
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(s.allow(), nil)
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(cause)

	result, err := s.service.Submit(s.ctx, s.input(validBody()))
	s.Nil(result)
	s.requireCode(err, dErrors.CodeStoreWrite, MsgStoreFailed)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeStoreError)))
}

func (s *SubmitServiceSuite) TestDefaultsNowWhenUnset() {
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, now time.Time) (*ratelimitModels.RateLimitResult, error) {
			s.WithinDuration(time.Now(), now, time.Minute)
			return s.allow(), nil
		})
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	in := s.input(validBody())
	in.Now = time.Time{}
	_, err := s.service.Submit(s.ctx, in)
	s.NoError(err)
}
