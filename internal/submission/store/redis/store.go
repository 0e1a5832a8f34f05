// Package redis implements the download record store on Redis: one hash per
// record and one sorted set per identity hash scored by created_at_ms.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"downloadgate/internal/submission/models"
	"downloadgate/internal/submission/store"
	"downloadgate/pkg/platform/sentinel"
)

const (
	recordKeyPrefix   = "downloads:record:"
	identityKeyPrefix = "downloads:ip:"
)

// Store persists download records in Redis.
type Store struct {
	client *redis.Client
}

var _ store.Store = (*Store)(nil)

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}

func identityKey(ipHash string) string {
	return identityKeyPrefix + ipHash
}

// insertScript claims the record key and writes the hash and the window
// entry in one server-side step. It returns 0 when the key already exists.
//
// KEYS[1] record hash, KEYS[2] identity sorted set.
// ARGV[1] score, ARGV[2] member, ARGV[3..] hash field/value pairs.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// Insert writes the record hash and its window entry atomically. A duplicate
// ID leaves the existing record untouched. Empty optional fields are omitted
// from the hash.
func (s *Store) Insert(ctx context.Context, rec *models.SubmissionRecord) error {
	args := []any{rec.CreatedAtMs, rec.ID}
	args = append(args, recordFields(rec)...)

	written, err := insertScript.Run(ctx, s.client,
		[]string{recordKey(rec.ID), identityKey(rec.IPHash)},
		args...,
	).Int()
	if err != nil {
		return fmt.Errorf("insert download record: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("insert download record %s: %w", rec.ID, sentinel.ErrConflict)
	}
	return nil
}

// recordFields flattens rec into HSET field/value pairs in column order.
func recordFields(rec *models.SubmissionRecord) []any {
	fields := []any{
		"id", rec.ID,
		"created_at", rec.CreatedAt,
		"created_at_ms", rec.CreatedAtMs,
		"first_name", rec.FirstName,
		"last_name", rec.LastName,
		"email", rec.Email,
		"purposes_json", rec.PurposesJSON,
		"affiliations_json", rec.AffiliationsJSON,
		"consent_terms", rec.ConsentTerms,
		"consent_stats", rec.ConsentStats,
		"consent_updates", rec.ConsentUpdates,
		"ip_hash", rec.IPHash,
	}
	optional := []struct {
		name  string
		value string
	}{
		{"purpose_other", rec.PurposeOther},
		{"institution", rec.Institution},
		{"institution_other", rec.InstitutionOther},
		{"lang", rec.Lang},
		{"plugin_version", rec.PluginVersion},
		{"user_agent", rec.UserAgent},
	}
	for _, o := range optional {
		if o.value != "" {
			fields = append(fields, o.name, o.value)
		}
	}
	return fields
}

func (s *Store) CountSince(ctx context.Context, ipHash string, sinceMs int64) (int, error) {
	count, err := s.client.ZCount(ctx, identityKey(ipHash), strconv.FormatInt(sinceMs, 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count downloads since: %w", err)
	}
	return int(count), nil
}

func (s *Store) OldestSince(ctx context.Context, ipHash string, sinceMs int64) (int64, bool, error) {
	members, err := s.client.ZRangeByScoreWithScores(ctx, identityKey(ipHash), &redis.ZRangeBy{
		Min:   strconv.FormatInt(sinceMs, 10),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return 0, false, fmt.Errorf("oldest download since: %w", err)
	}
	if len(members) == 0 {
		return 0, false, nil
	}
	return int64(members[0].Score), true, nil
}
