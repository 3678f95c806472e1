package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/models/store"
	"github.com/de-tools/traffic-atlas/pkg/store/sqlite"
)

var ErrNotFound = errors.New("snapshot not found")

// Store keeps raw report rows per profile so a dashboard can be rebuilt
// offline from exactly what a source returned.
type Store interface {
	Save(ctx context.Context, profile, source string, q domain.RangeQuery, rows []domain.RawRow) error
	Load(ctx context.Context, profile, source string, q domain.RangeQuery) ([]domain.RawRow, error)
	List(ctx context.Context, profile string) ([]store.SnapshotQuery, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db}, nil
}

// QueryKey identifies a query by the source it was sent to and everything
// that shapes its result. The label is excluded: it only tags rows after
// they are fetched.
func QueryKey(source string, q domain.RangeQuery) string {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.WriteString("\x00")
	}

	write("s:" + source)
	write(q.StartDate())
	write(q.EndDate())
	for _, dim := range q.Dimensions {
		write("d:" + dim)
	}
	for _, m := range q.Metrics {
		write("m:" + m)
	}
	if q.Filter != nil {
		write("f:" + q.Filter.Field + "=" + q.Filter.Value)
	}
	write(strconv.FormatInt(q.Limit, 10))
	return strconv.FormatUint(d.Sum64(), 16)
}

func (s *snapshotStore) Save(
	ctx context.Context,
	profile, source string,
	q domain.RangeQuery,
	rows []domain.RawRow,
) error {
	key := QueryKey(source, q)

	return sqlite.InTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snapshot_rows WHERE profile = ? AND query_key = ?`,
			profile, key,
		); err != nil {
			return fmt.Errorf("delete snapshot rows: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_queries (profile, query_key, source, label, start_date, end_date, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (profile, query_key) DO UPDATE SET
				source = excluded.source,
				label = excluded.label,
				fetched_at = excluded.fetched_at`,
			profile, key, source, q.Label, q.StartDate(), q.EndDate(), time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("upsert snapshot query: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_rows (profile, query_key, position, dimensions, metrics)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			dims, err := json.Marshal(row.DimensionValues)
			if err != nil {
				return fmt.Errorf("marshal dimensions: %w", err)
			}
			metrics, err := json.Marshal(row.MetricValues)
			if err != nil {
				return fmt.Errorf("marshal metrics: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, profile, key, i, string(dims), string(metrics)); err != nil {
				return fmt.Errorf("insert snapshot row: %w", err)
			}
		}
		return nil
	})
}

func (s *snapshotStore) Load(ctx context.Context, profile, source string, q domain.RangeQuery) ([]domain.RawRow, error) {
	key := QueryKey(source, q)

	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT source FROM snapshot_queries WHERE profile = ? AND query_key = ?`,
		profile, key,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT dimensions, metrics FROM snapshot_rows WHERE profile = ? AND query_key = ? ORDER BY position`,
		profile, key,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot rows: %w", err)
	}
	defer rows.Close()

	result := make([]domain.RawRow, 0)
	for rows.Next() {
		var dimsRaw, metricsRaw []byte
		if err := rows.Scan(&dimsRaw, &metricsRaw); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		var row domain.RawRow
		if err := json.Unmarshal(dimsRaw, &row.DimensionValues); err != nil {
			return nil, fmt.Errorf("unmarshal dimensions: %w", err)
		}
		if err := json.Unmarshal(metricsRaw, &row.MetricValues); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return result, nil
}

func (s *snapshotStore) List(ctx context.Context, profile string) ([]store.SnapshotQuery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT query_key, source, label, start_date, end_date, fetched_at
		FROM snapshot_queries
		WHERE profile = ?
		ORDER BY fetched_at DESC`,
		profile,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	queries := make([]store.SnapshotQuery, 0)
	for rows.Next() {
		sq := store.SnapshotQuery{Profile: profile}
		if err := rows.Scan(&sq.QueryKey, &sq.Source, &sq.Label, &sq.StartDate, &sq.EndDate, &sq.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		queries = append(queries, sq)
	}
	return queries, rows.Err()
}
