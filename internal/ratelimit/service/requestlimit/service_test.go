package requestlimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"downloadgate/internal/ratelimit/config"
	"downloadgate/internal/ratelimit/metrics"
)

type stubCounter struct {
	count     int
	err       error
	gotHash   string
	gotSince  int64
	callCount int

	oldest    int64
	hasOldest bool
	oldestErr error
}

func (c *stubCounter) CountSince(_ context.Context, ipHash string, sinceMs int64) (int, error) {
	c.callCount++
	c.gotHash = ipHash
	c.gotSince = sinceMs
	return c.count, c.err
}

func (c *stubCounter) OldestSince(_ context.Context, _ string, sinceMs int64) (int64, bool, error) {
	if c.oldestErr != nil {
		return 0, false, c.oldestErr
	}
	if !c.hasOldest || c.oldest < sinceMs {
		return 0, false, nil
	}
	return c.oldest, true, nil
}

type RequestLimitSuite struct {
	suite.Suite
	ctx     context.Context
	counter *stubCounter
	metrics *metrics.Metrics
	svc     *Service
	now     time.Time
}

func TestRequestLimitSuite(t *testing.T) {
	suite.Run(t, new(RequestLimitSuite))
}

func (s *RequestLimitSuite) SetupTest() {
	s.ctx = context.Background()
	s.counter = &stubCounter{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	svc, err := New(s.counter, WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.svc = svc
}

func (s *RequestLimitSuite) TestRequiresCounter() {
	_, err := New(nil)
	s.Error(err)
}

func (s *RequestLimitSuite) TestQueriesTrailingWindow() {
	_, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.Equal("hash-a", s.counter.gotHash)
	s.Equal(s.now.Add(-10*time.Minute).UnixMilli(), s.counter.gotSince)
}

func (s *RequestLimitSuite) TestAllowsBelowLimit() {
	s.counter.count = 4
	result, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(5, result.Limit)
	s.Equal(0, result.Remaining)
	s.Equal(0, result.RetryAfter)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WindowChecks.WithLabelValues("allowed")))
}

func (s *RequestLimitSuite) TestDeniesAtLimit() {
	for _, count := range []int{5, 6, 50} {
		s.counter.count = count
		result, err := s.svc.Check(s.ctx, "hash-a", s.now)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(600, result.RetryAfter)
	}
	s.Equal(3.0, testutil.ToFloat64(s.metrics.WindowChecks.WithLabelValues("denied")))
}

func (s *RequestLimitSuite) TestDeniedResetTracksOldestRecord() {
	s.counter.count = 5
	s.counter.oldest = s.now.Add(-5 * time.Second).UnixMilli()
	s.counter.hasOldest = true

	result, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.WithinDuration(s.now.Add(595*time.Second), result.ResetAt, 0)
	s.Equal(595, result.RetryAfter)
}

func (s *RequestLimitSuite) TestRetryAfterRoundsUp() {
	s.counter.count = 5
	s.counter.oldest = s.now.Add(-10*time.Minute + 1500*time.Millisecond).UnixMilli()
	s.counter.hasOldest = true

	result, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.Equal(2, result.RetryAfter)

	s.counter.oldest = s.now.Add(-10 * time.Minute).UnixMilli()
	result, err = s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.Equal(1, result.RetryAfter, "never advertises a zero wait")
}

func (s *RequestLimitSuite) TestOldestLookupFailureFallsBackToFullWindow() {
	s.counter.count = 5
	s.counter.oldestErr = errors.New("connection reset")

	result, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.WithinDuration(s.now.Add(10*time.Minute), result.ResetAt, 0)
	s.Equal(600, result.RetryAfter)
}

func (s *RequestLimitSuite) TestAllowedResetIsFullWindow() {
	s.counter.count = 2
	s.counter.oldest = s.now.Add(-5 * time.Minute).UnixMilli()
	s.counter.hasOldest = true

	result, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.WithinDuration(s.now.Add(10*time.Minute), result.ResetAt, 0)
}

func (s *RequestLimitSuite) TestCustomPolicy() {
	svc, err := New(s.counter, WithConfig(config.Config{MaxRequests: 2, Window: time.Minute}))
	s.Require().NoError(err)

	s.counter.count = 1
	result, err := svc.Check(s.ctx, "hash-b", s.now)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(s.now.Add(-time.Minute).UnixMilli(), s.counter.gotSince)

	s.counter.count = 2
	result, err = svc.Check(s.ctx, "hash-b", s.now)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(60, result.RetryAfter)
}

func (s *RequestLimitSuite) TestZeroConfigFallsBackToDefaults() {
	svc, err := New(s.counter, WithConfig(config.Config{}))
	s.Require().NoError(err)
	s.Equal(config.DefaultWindow, svc.Window())
}

func (s *RequestLimitSuite) TestStoreErrorSurfaces() {
	s.counter.err = errors.New("database is locked")
	result, err := s.svc.Check(s.ctx, "hash-a", s.now)
	s.Require().Error(err)
	s.Nil(result)
	s.ErrorIs(err, s.counter.err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WindowCheckErrors))
}
