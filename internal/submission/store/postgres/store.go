// Package postgres implements the download record store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"downloadgate/internal/submission/models"
	"downloadgate/internal/submission/store"
	"downloadgate/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id UUID PRIMARY KEY,
	created_at TEXT NOT NULL,
	created_at_ms BIGINT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	purposes_json JSONB NOT NULL,
	purpose_other TEXT NULL,
	institution TEXT NULL,
	affiliations_json JSONB NOT NULL,
	institution_other TEXT NULL,
	consent_terms SMALLINT NOT NULL,
	consent_stats SMALLINT NOT NULL,
	consent_updates SMALLINT NOT NULL,
	lang TEXT NULL,
	plugin_version TEXT NULL,
	user_agent TEXT NULL,
	ip_hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_downloads_ip_created ON downloads (ip_hash, created_at_ms);
`

// Store persists download records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool from dsn and verifies it.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the downloads table and its window index if missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate downloads table: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, rec *models.SubmissionRecord) error {
	query := `
		INSERT INTO downloads (
			id, created_at, created_at_ms, first_name, last_name, email,
			purposes_json, purpose_other, institution, affiliations_json, institution_other,
			consent_terms, consent_stats, consent_updates, lang, plugin_version, user_agent, ip_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10::jsonb, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.CreatedAt,
		rec.CreatedAtMs,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.PurposesJSON,
		store.Nullable(rec.PurposeOther),
		store.Nullable(rec.Institution),
		rec.AffiliationsJSON,
		store.Nullable(rec.InstitutionOther),
		rec.ConsentTerms,
		rec.ConsentStats,
		rec.ConsentUpdates,
		store.Nullable(rec.Lang),
		store.Nullable(rec.PluginVersion),
		store.Nullable(rec.UserAgent),
		rec.IPHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert download record %s: %w", rec.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert download record: %w", err)
	}
	return nil
}

func (s *Store) CountSince(ctx context.Context, ipHash string, sinceMs int64) (int, error) {
	query := `SELECT COUNT(*) FROM downloads WHERE ip_hash = $1 AND created_at_ms >= $2`
	var count int
	if err := s.pool.QueryRow(ctx, query, ipHash, sinceMs).Scan(&count); err != nil {
		return 0, fmt.Errorf("count downloads since: %w", err)
	}
	return count, nil
}

func (s *Store) OldestSince(ctx context.Context, ipHash string, sinceMs int64) (int64, bool, error) {
	query := `SELECT MIN(created_at_ms) FROM downloads WHERE ip_hash = $1 AND created_at_ms >= $2`
	var oldest *int64
	if err := s.pool.QueryRow(ctx, query, ipHash, sinceMs).Scan(&oldest); err != nil {
		return 0, false, fmt.Errorf("oldest download since: %w", err)
	}
	if oldest == nil {
		return 0, false, nil
	}
	return *oldest, true, nil
}
