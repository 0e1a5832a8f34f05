package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"downloadgate/internal/submission/store"
	"downloadgate/internal/submission/store/storetest"
)

var storetestBase = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type MemoryStoreSuite struct {
	storetest.ContractSuite
}

func TestMemoryStoreSuite(t *testing.T) {
	s := new(MemoryStoreSuite)
	s.NewStore = func() store.Store { return New() }
	suite.Run(t, s)
}

func (s *MemoryStoreSuite) TestRecordsAreCopies() {
	st := s.Store.(*InMemoryStore)
	s.Require().NoError(st.Insert(s.Ctx, storetest.Record("hash-x", storetestBase)))
	recs := st.Records()
	recs[0].Email = "changed@example.org"
	s.Equal("ada@example.org", st.Records()[0].Email)
	s.Equal(1, st.Len())
}
