package report

import (
	"context"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Labels tag the two periods of a comparison.
type Labels struct {
	Current    string
	Comparison string
}

// FixedLabels is used by over-time charts where month names would collide
// when both periods fall in the same month.
var FixedLabels = Labels{Current: "Current Month", Comparison: "Comparison Month"}

// MonthLabels labels each period by the month its range starts in.
func MonthLabels(p domain.Periods) Labels {
	return Labels{
		Current:    domain.MonthLabel(p.Current.Start),
		Comparison: domain.MonthLabel(p.Comparison.Start),
	}
}

// Pipeline fetches and normalizes one report shape from one source.
type Pipeline struct {
	source Source
	schema domain.Schema
	opts   []domain.QueryOption
}

func NewPipeline(source Source, schema domain.Schema, opts ...domain.QueryOption) *Pipeline {
	return &Pipeline{source: source, schema: schema, opts: opts}
}

func (p *Pipeline) Schema() domain.Schema {
	return p.schema
}

func (p *Pipeline) query(r domain.DateRange, label string) (domain.RangeQuery, error) {
	return domain.NewRangeQuery(r.Start, r.End, label,
		p.schema.SourceDimensions(), p.schema.SourceMetrics(), p.opts...)
}

// Single fetches and normalizes one labelled range.
func (p *Pipeline) Single(ctx context.Context, r domain.DateRange, label string) ([]domain.Record, error) {
	q, err := p.query(r, label)
	if err != nil {
		return nil, err
	}

	rows, err := Fetch(ctx, p.source, q)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(rows, label, p.schema)
}

// Compare fetches both periods concurrently and merges them, current first.
// Either failure fails the whole comparison.
func (p *Pipeline) Compare(ctx context.Context, periods domain.Periods, labels Labels) (domain.Dataset, error) {
	if err := periods.Validate(); err != nil {
		return domain.Dataset{}, err
	}

	if labels.Current == labels.Comparison {
		zerolog.Ctx(ctx).Warn().
			Str("label", labels.Current).
			Str("source", p.source.Name()).
			Msg("both periods share a label; per-period aggregates will mix")
	}

	var current, comparison []domain.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = p.Single(gctx, periods.Current, labels.Current)
		return err
	})
	g.Go(func() error {
		var err error
		comparison, err = p.Single(gctx, periods.Comparison, labels.Comparison)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dataset{}, err
	}

	return Merge(current, comparison), nil
}
