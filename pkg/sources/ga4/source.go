package ga4

import (
	"context"
	"fmt"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/sources"
	"github.com/rs/zerolog"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// SourceName identifies this source in metrics and snapshots.
const SourceName = "ga4"

// pageSize is the largest page the Data API returns per call.
const pageSize = 10000

// Source runs reports against one GA4 property.
type Source struct {
	property string
	svc      *analyticsdata.Service
}

func New(ctx context.Context, propertyID string, opts ...option.ClientOption) (*Source, error) {
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics data client: %w", err)
	}
	return &Source{property: "properties/" + propertyID, svc: svc}, nil
}

// NewFromCredentialsFile authenticates with a service-account key limited to
// read-only analytics access.
func NewFromCredentialsFile(ctx context.Context, propertyID, path string) (*Source, error) {
	opt, err := sources.ServiceAccount(ctx, path, analyticsdata.AnalyticsReadonlyScope)
	if err != nil {
		return nil, err
	}
	return New(ctx, propertyID, opt)
}

func (s *Source) Name() string {
	return SourceName
}

// RunReport issues a RunReport call for q. Without a limit it pages until
// the reported row count is reached.
func (s *Source) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: q.StartDate(), EndDate: q.EndDate()}},
	}
	for _, d := range q.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range q.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}
	if q.Filter != nil {
		req.DimensionFilter = &analyticsdata.FilterExpression{
			Filter: &analyticsdata.Filter{
				FieldName: q.Filter.Field,
				StringFilter: &analyticsdata.StringFilter{
					Value:     q.Filter.Value,
					MatchType: "EXACT",
				},
			},
		}
	}

	limit := q.Limit
	if limit <= 0 {
		req.Limit = pageSize
	} else {
		req.Limit = min(limit, pageSize)
	}

	var rows []domain.RawRow
	for {
		resp, err := s.svc.Properties.RunReport(s.property, req).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("run report for %s: %w", s.property, err)
		}

		for _, r := range resp.Rows {
			rows = append(rows, convertRow(r))
		}

		done := len(resp.Rows) == 0 || int64(len(rows)) >= resp.RowCount
		if limit > 0 && int64(len(rows)) >= limit {
			done = true
		}
		if done {
			break
		}
		req.Offset = int64(len(rows))
	}

	if limit > 0 && int64(len(rows)) > limit {
		rows = rows[:limit]
	}

	zerolog.Ctx(ctx).Debug().
		Str("property", s.property).
		Int("rows", len(rows)).
		Msg("ga4 report")
	return rows, nil
}

func convertRow(r *analyticsdata.Row) domain.RawRow {
	row := domain.RawRow{
		DimensionValues: make([]string, 0, len(r.DimensionValues)),
		MetricValues:    make([]string, 0, len(r.MetricValues)),
	}
	for _, v := range r.DimensionValues {
		row.DimensionValues = append(row.DimensionValues, v.Value)
	}
	for _, v := range r.MetricValues {
		row.MetricValues = append(row.MetricValues, v.Value)
	}
	return row
}
