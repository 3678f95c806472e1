package report

import (
	"context"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Source runs a report for the query's dimensions, metrics, range and optional
// exact-match filter. Implementations return rows in their native order.
type Source interface {
	Name() string
	RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error)
}

// Fetch executes q against source. It does not retry; a source failure is
// returned as a *domain.ReportFetchError carrying the query's label.
func Fetch(ctx context.Context, source Source, q domain.RangeQuery) ([]domain.RawRow, error) {
	logger := zerolog.Ctx(ctx)
	started := time.Now()

	rows, err := source.RunReport(ctx, q)
	if err != nil {
		logger.Error().
			Err(err).
			Str("source", source.Name()).
			Str("label", q.Label).
			Msg("report fetch failed")
		return nil, &domain.ReportFetchError{Label: q.Label, Err: err}
	}

	logger.Debug().
		Str("source", source.Name()).
		Str("label", q.Label).
		Str("start", q.StartDate()).
		Str("end", q.EndDate()).
		Int("rows", len(rows)).
		Dur("took", time.Since(started)).
		Msg("report fetched")

	return rows, nil
}
