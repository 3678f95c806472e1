package searchconsole

import (
	"context"
	"fmt"
	"strconv"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/sources"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	searchconsole "google.golang.org/api/searchconsole/v1"
)

// SourceName identifies this source in metrics and snapshots.
const SourceName = "searchconsole"

// DefaultRowLimit matches what the dashboards have always requested.
const DefaultRowLimit = 1000

// Source runs search analytics queries for one verified site.
type Source struct {
	siteURL string
	svc     *searchconsole.Service
}

func New(ctx context.Context, siteURL string, opts ...option.ClientOption) (*Source, error) {
	svc, err := searchconsole.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search console client: %w", err)
	}
	return &Source{siteURL: siteURL, svc: svc}, nil
}

func NewFromCredentialsFile(ctx context.Context, siteURL, path string) (*Source, error) {
	opt, err := sources.ServiceAccount(ctx, path, searchconsole.WebmastersReadonlyScope)
	if err != nil {
		return nil, err
	}
	return New(ctx, siteURL, opt)
}

func (s *Source) Name() string {
	return SourceName
}

// RunReport maps each response row to its keys plus the requested metrics,
// in query order. Supported metrics are clicks, impressions, ctr and position.
func (s *Source) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	pick := make([]func(*searchconsole.ApiDataRow) float64, 0, len(q.Metrics))
	for _, m := range q.Metrics {
		f, ok := metrics[m]
		if !ok {
			return nil, fmt.Errorf("unsupported search console metric %q", m)
		}
		pick = append(pick, f)
	}

	req := &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  q.StartDate(),
		EndDate:    q.EndDate(),
		Dimensions: q.Dimensions,
		RowLimit:   DefaultRowLimit,
	}
	if q.Limit > 0 {
		req.RowLimit = q.Limit
	}
	if q.Filter != nil {
		req.DimensionFilterGroups = []*searchconsole.ApiDimensionFilterGroup{{
			Filters: []*searchconsole.ApiDimensionFilter{{
				Dimension:  q.Filter.Field,
				Operator:   "equals",
				Expression: q.Filter.Value,
			}},
		}}
	}

	resp, err := s.svc.Searchanalytics.Query(s.siteURL, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search analytics query for %s: %w", s.siteURL, err)
	}

	rows := make([]domain.RawRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := domain.RawRow{
			DimensionValues: append([]string{}, r.Keys...),
			MetricValues:    make([]string, 0, len(pick)),
		}
		for _, f := range pick {
			row.MetricValues = append(row.MetricValues, strconv.FormatFloat(f(r), 'f', -1, 64))
		}
		rows = append(rows, row)
	}

	zerolog.Ctx(ctx).Debug().
		Str("site", s.siteURL).
		Int("rows", len(rows)).
		Msg("search console report")
	return rows, nil
}

var metrics = map[string]func(*searchconsole.ApiDataRow) float64{
	"clicks":      func(r *searchconsole.ApiDataRow) float64 { return r.Clicks },
	"impressions": func(r *searchconsole.ApiDataRow) float64 { return r.Impressions },
	"ctr":         func(r *searchconsole.ApiDataRow) float64 { return r.Ctr },
	"position":    func(r *searchconsole.ApiDataRow) float64 { return r.Position },
}
