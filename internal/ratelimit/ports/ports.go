// Package ports defines the storage contract the ratelimit module depends on.
package ports

import "context"

// WindowCounter counts persisted submissions for one hashed identity.
type WindowCounter interface {
	// CountSince returns how many records for ipHash have created_at_ms >= sinceMs.
	CountSince(ctx context.Context, ipHash string, sinceMs int64) (int, error)
	// OldestSince returns the smallest created_at_ms >= sinceMs for ipHash.
	// ok is false when no record falls in that range.
	OldestSince(ctx context.Context, ipHash string, sinceMs int64) (createdAtMs int64, ok bool, err error)
}
