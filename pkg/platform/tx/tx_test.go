package tx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE items (name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countItems(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM items`).Scan(&n))
	return n
}

func TestWithTxNil(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTx(ctx, nil))
	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db := openDB(t)
		err := Run(context.Background(), db, func(ctx context.Context) error {
			tx, ok := From(ctx)
			require.True(t, ok)
			_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countItems(t, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := openDB(t)
		boom := errors.New("boom")
		err := Run(context.Background(), db, func(ctx context.Context) error {
			tx, _ := From(ctx)
			_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
			require.NoError(t, err)
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, countItems(t, db))
	})

	t.Run("reuses an outer transaction", func(t *testing.T) {
		db := openDB(t)
		err := Run(context.Background(), db, func(outer context.Context) error {
			outerTx, _ := From(outer)
			return Run(outer, db, func(inner context.Context) error {
				innerTx, _ := From(inner)
				assert.Same(t, outerTx, innerTx)
				return nil
			})
		})
		require.NoError(t, err)
	})
}
