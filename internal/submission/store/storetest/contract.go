// Package storetest holds the behaviour every store engine must share.
package storetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"downloadgate/internal/submission/models"
	"downloadgate/internal/submission/store"
	"downloadgate/pkg/platform/sentinel"
)

// ContractSuite exercises a store.Store. Engines embed it and set NewStore;
// ResetStore runs before every test when set.
type ContractSuite struct {
	suite.Suite
	NewStore   func() store.Store
	ResetStore func(ctx context.Context) error

	Store store.Store
	Ctx   context.Context
}

func (s *ContractSuite) SetupTest() {
	s.Ctx = context.Background()
	if s.ResetStore != nil {
		s.Require().NoError(s.ResetStore(s.Ctx))
	}
	s.Store = s.NewStore()
}

// Record builds a persisted record for ipHash at the given time.
func Record(ipHash string, at time.Time) *models.SubmissionRecord {
	c := models.SubmissionCandidate{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.org",
		Purposes:       []models.Purpose{models.PurposeComposer},
		Affiliations:   []models.Affiliation{models.AffiliationNone},
		ConsentTerms:   true,
		ConsentUpdates: true,
	}
	rec, err := models.NewSubmissionRecord(c, ipHash, "Mozilla/5.0", at)
	if err != nil {
		panic(err)
	}
	return rec
}

var base = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func (s *ContractSuite) TestCountEmpty() {
	count, err := s.Store.CountSince(s.Ctx, "nobody", 0)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *ContractSuite) TestCountsOnlyMatchingIdentityInWindow() {
	for i := range 3 {
		s.Require().NoError(s.Store.Insert(s.Ctx, Record("hash-a", base.Add(time.Duration(i)*time.Minute))))
	}
	s.Require().NoError(s.Store.Insert(s.Ctx, Record("hash-b", base)))

	count, err := s.Store.CountSince(s.Ctx, "hash-a", base.UnixMilli())
	s.Require().NoError(err)
	s.Equal(3, count)

	count, err = s.Store.CountSince(s.Ctx, "hash-a", base.Add(time.Minute).UnixMilli())
	s.Require().NoError(err)
	s.Equal(2, count, "window start is inclusive")

	count, err = s.Store.CountSince(s.Ctx, "hash-a", base.Add(time.Hour).UnixMilli())
	s.Require().NoError(err)
	s.Equal(0, count)

	count, err = s.Store.CountSince(s.Ctx, "hash-b", 0)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ContractSuite) TestOldestSinceFindsEarliestInWindow() {
	for _, offset := range []time.Duration{2 * time.Minute, 0, time.Minute} {
		s.Require().NoError(s.Store.Insert(s.Ctx, Record("hash-e", base.Add(offset))))
	}
	s.Require().NoError(s.Store.Insert(s.Ctx, Record("hash-f", base.Add(-time.Hour))))

	oldest, ok, err := s.Store.OldestSince(s.Ctx, "hash-e", 0)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(base.UnixMilli(), oldest)

	oldest, ok, err = s.Store.OldestSince(s.Ctx, "hash-e", base.Add(30*time.Second).UnixMilli())
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(base.Add(time.Minute).UnixMilli(), oldest)

	_, ok, err = s.Store.OldestSince(s.Ctx, "hash-e", base.Add(time.Hour).UnixMilli())
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.Store.OldestSince(s.Ctx, "nobody", 0)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ContractSuite) TestDuplicateIDConflicts() {
	rec := Record("hash-c", base)
	s.Require().NoError(s.Store.Insert(s.Ctx, rec))
	err := s.Store.Insert(s.Ctx, rec)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *ContractSuite) TestEmptyOptionalsAccepted() {
	rec := Record("hash-d", base)
	rec.Lang, rec.PluginVersion, rec.UserAgent = "", "", ""
	s.Require().NoError(s.Store.Insert(s.Ctx, rec))
}
