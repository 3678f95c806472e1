package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(context.Background(), Settings{DbPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO snapshot_queries (profile, query_key, source, label, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)`,
		"shop", "abc", "ga4", "January 2024", "2024-01-01", "2024-01-31",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM snapshot_queries WHERE profile = ?", "shop").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDB(context.Background(), Settings{DbPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(context.Background(), Settings{DbPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestInTransaction(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	insert := func(ctx context.Context, tx *sql.Tx) error {
		assert.Same(t, tx, GetTransaction(ctx))
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_queries (profile, query_key, source, label, start_date, end_date) VALUES ('p', 'k', 's', 'l', 'a', 'b')`)
		return err
	}

	require.NoError(t, InTransaction(ctx, db, insert))

	rollback := errors.New("rollback")
	err = InTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM snapshot_queries`)
		require.NoError(t, err)
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshot_queries").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNewDB_FilePragmas(t *testing.T) {
	db, err := NewDB(context.Background(), Settings{DbPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "snap.db?"+filePragmas, withPragmas("snap.db"))
	assert.Equal(t, "file:snap.db?mode=rwc&"+filePragmas, withPragmas("file:snap.db?mode=rwc"))
}
