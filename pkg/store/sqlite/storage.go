package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const SnapshotQueriesSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_queries (
		profile VARCHAR NOT NULL,
		query_key VARCHAR NOT NULL,
		source VARCHAR NOT NULL,
		label VARCHAR NOT NULL,
		start_date VARCHAR NOT NULL,
		end_date VARCHAR NOT NULL,
		fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile, query_key)
	);
`

const SnapshotRowsSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_rows (
		profile VARCHAR NOT NULL,
		query_key VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		dimensions JSON NOT NULL,
		metrics JSON NOT NULL,
		PRIMARY KEY (profile, query_key, position)
	);
`

var bootQueries = []string{
	SnapshotQueriesSchema,
	SnapshotRowsSchema,
}

type Settings struct {
	DbPath string
}

// filePragmas let a second process (the CLI next to the web server) wait for
// the write lock instead of failing with SQLITE_BUSY.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// NewDB opens the sqlite file at settings.DbPath and creates the snapshot
// tables. ":memory:" is allowed. The pool is pinned to one connection: sqlite
// takes one writer at a time and concurrent recorders queue on the pool
// rather than on the file lock.
func NewDB(ctx context.Context, settings Settings) (*sql.DB, error) {
	dsn := settings.DbPath
	if dsn != ":memory:" {
		dsn = withPragmas(dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", settings.DbPath, err)
	}
	db.SetMaxOpenConns(1)

	for _, query := range bootQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("boot query: %w", err)
		}
	}
	return db, nil
}

func withPragmas(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + filePragmas
	}
	return path + "?" + filePragmas
}
