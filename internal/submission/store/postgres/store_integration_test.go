//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"downloadgate/internal/submission/store"
	"downloadgate/internal/submission/store/postgres"
	"downloadgate/internal/submission/store/storetest"
	"downloadgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	storetest.ContractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(postgres.New(s.postgres.Pool).Migrate(context.Background()))

	s.NewStore = func() store.Store { return postgres.New(s.postgres.Pool) }
	s.ResetStore = func(ctx context.Context) error {
		return s.postgres.TruncateTables(ctx, store.TableName)
	}
}

func (s *PostgresStoreSuite) TestEmptyOptionalsStoredAsNull() {
	rec := storetest.Record("hash-null", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	rec.Lang, rec.UserAgent = "", ""
	s.Require().NoError(s.Store.Insert(s.Ctx, rec))

	var lang, userAgent *string
	var purposes []string
	err := s.postgres.Pool.QueryRow(s.Ctx,
		`SELECT lang, user_agent, purposes_json FROM downloads WHERE id = $1`, rec.ID).
		Scan(&lang, &userAgent, &purposes)
	s.Require().NoError(err)
	s.Nil(lang)
	s.Nil(userAgent)
	s.Equal([]string{"composer"}, purposes)
}
