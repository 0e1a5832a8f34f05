// Package sqlite implements the download record store on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"downloadgate/internal/submission/models"
	"downloadgate/internal/submission/store"
	"downloadgate/pkg/platform/sentinel"
	"downloadgate/pkg/platform/tx"
)

const defaultMaxOpenConns = 4

const insertQuery = `
INSERT INTO downloads (
	id, created_at, created_at_ms, first_name, last_name, email,
	purposes_json, purpose_other, institution, affiliations_json, institution_other,
	consent_terms, consent_stats, consent_updates, lang, plugin_version, user_agent, ip_hash
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const countSinceQuery = `SELECT COUNT(1) FROM downloads WHERE ip_hash = ? AND created_at_ms >= ?`

const oldestSinceQuery = `SELECT MIN(created_at_ms) FROM downloads WHERE ip_hash = ? AND created_at_ms >= ?`

// Store wraps a SQLite database connection.
type Store struct {
	db *sql.DB

	insertStmt      *sql.Stmt
	countSinceStmt  *sql.Stmt
	oldestSinceStmt *sql.Stmt
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the SQLite database at path, runs migrations, and
// enables WAL mode for concurrent readers.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	// Per-connection PRAGMAs go in the DSN so every pooled connection gets them.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=busy_timeout(5000)&_pragma=synchronous(normal)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxOpenConns)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite setup (journal_mode): %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.prepareStatements(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS downloads (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	created_at_ms INTEGER NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	purposes_json TEXT NOT NULL,
	purpose_other TEXT NULL,
	institution TEXT NULL,
	affiliations_json TEXT NOT NULL,
	institution_other TEXT NULL,
	consent_terms INTEGER NOT NULL,
	consent_stats INTEGER NOT NULL,
	consent_updates INTEGER NOT NULL,
	lang TEXT NULL,
	plugin_version TEXT NULL,
	user_agent TEXT NULL,
	ip_hash TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_downloads_ip_created ON downloads(ip_hash, created_at_ms)`,
}

// Migrate creates the downloads table and its window index if missing.
// Both statements apply in one transaction.
func (s *Store) Migrate(ctx context.Context) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		t, _ := tx.From(ctx)
		for _, stmt := range migrations {
			if _, err := t.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate downloads table: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) prepareStatements(ctx context.Context) error {
	var err error
	if s.insertStmt, err = s.db.PrepareContext(ctx, insertQuery); err != nil {
		return fmt.Errorf("prepare insert query: %w", err)
	}
	if s.countSinceStmt, err = s.db.PrepareContext(ctx, countSinceQuery); err != nil {
		closeErr := s.closePreparedStatements()
		return errors.Join(fmt.Errorf("prepare count query: %w", err), closeErr)
	}
	if s.oldestSinceStmt, err = s.db.PrepareContext(ctx, oldestSinceQuery); err != nil {
		closeErr := s.closePreparedStatements()
		return errors.Join(fmt.Errorf("prepare oldest query: %w", err), closeErr)
	}
	return nil
}

// Insert writes rec, joining the caller's transaction when ctx carries one.
func (s *Store) Insert(ctx context.Context, rec *models.SubmissionRecord) error {
	stmt := s.insertStmt
	if t, ok := tx.From(ctx); ok {
		stmt = t.StmtContext(ctx, s.insertStmt)
	}
	_, err := stmt.ExecContext(ctx,
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
		if isConstraintViolation(err) {
			return fmt.Errorf("insert download record %s: %w", rec.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert download record: %w", err)
	}
	return nil
}

func (s *Store) CountSince(ctx context.Context, ipHash string, sinceMs int64) (int, error) {
	var count int
	if err := s.countSinceStmt.QueryRowContext(ctx, ipHash, sinceMs).Scan(&count); err != nil {
		return 0, fmt.Errorf("count downloads since: %w", err)
	}
	return count, nil
}

func (s *Store) OldestSince(ctx context.Context, ipHash string, sinceMs int64) (int64, bool, error) {
	var oldest sql.NullInt64
	if err := s.oldestSinceStmt.QueryRowContext(ctx, ipHash, sinceMs).Scan(&oldest); err != nil {
		return 0, false, fmt.Errorf("oldest download since: %w", err)
	}
	return oldest.Int64, oldest.Valid, nil
}

// Close closes the prepared statements and the database.
func (s *Store) Close() error {
	stmtErr := s.closePreparedStatements()
	return errors.Join(stmtErr, s.db.Close())
}

func (s *Store) closePreparedStatements() error {
	var err error
	err = errors.Join(err, closeStmt(&s.insertStmt))
	err = errors.Join(err, closeStmt(&s.countSinceStmt))
	err = errors.Join(err, closeStmt(&s.oldestSinceStmt))
	return err
}

func closeStmt(stmt **sql.Stmt) error {
	if stmt == nil || *stmt == nil {
		return nil
	}
	err := (*stmt).Close()
	*stmt = nil
	return err
}

func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func ensureParentDir(path string) error {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
