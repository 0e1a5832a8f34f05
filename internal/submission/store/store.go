// Package store defines the persistence contract for accepted download
// requests. The table is append-only: there is no update or delete path.
package store

import (
	"context"

	"downloadgate/internal/submission/models"
)

// TableName is the relational table every SQL engine writes to.
const TableName = "downloads"

// Store persists submission records and answers rate-window counts.
type Store interface {
	// Insert appends rec. A duplicate ID yields sentinel.ErrConflict.
	Insert(ctx context.Context, rec *models.SubmissionRecord) error
	// CountSince returns the number of records for ipHash with
	// CreatedAtMs >= sinceMs.
	CountSince(ctx context.Context, ipHash string, sinceMs int64) (int, error)
	// OldestSince returns the earliest CreatedAtMs >= sinceMs for ipHash;
	// ok is false when there is none.
	OldestSince(ctx context.Context, ipHash string, sinceMs int64) (createdAtMs int64, ok bool, err error)
}

// Nullable maps empty optional text to SQL NULL.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
