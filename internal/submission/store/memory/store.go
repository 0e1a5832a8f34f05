package memory

import (
	"context"
	"fmt"
	"sync"

	"downloadgate/internal/submission/models"
	"downloadgate/pkg/platform/sentinel"
)

// InMemoryStore keeps records in insertion order. It is meant for tests and
// single-process development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.SubmissionRecord
	ids     map[string]struct{}
}

func New() *InMemoryStore {
	return &InMemoryStore{ids: make(map[string]struct{})}
}

func (s *InMemoryStore) Insert(_ context.Context, rec *models.SubmissionRecord) error {
	if rec == nil {
		return fmt.Errorf("insert download record: nil record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[rec.ID]; exists {
		return fmt.Errorf("insert download record %s: %w", rec.ID, sentinel.ErrConflict)
	}
	s.ids[rec.ID] = struct{}{}
	s.records = append(s.records, *rec)
	return nil
}

func (s *InMemoryStore) CountSince(_ context.Context, ipHash string, sinceMs int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.records {
		if s.records[i].IPHash == ipHash && s.records[i].CreatedAtMs >= sinceMs {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) OldestSince(_ context.Context, ipHash string, sinceMs int64) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var oldest int64
	found := false
	for i := range s.records {
		rec := &s.records[i]
		if rec.IPHash != ipHash || rec.CreatedAtMs < sinceMs {
			continue
		}
		if !found || rec.CreatedAtMs < oldest {
			oldest, found = rec.CreatedAtMs, true
		}
	}
	return oldest, found, nil
}

// Records returns a copy of every stored record.
func (s *InMemoryStore) Records() []models.SubmissionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SubmissionRecord(nil), s.records...)
}

// Len reports how many records are stored.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
