package report

import (
	"context"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/stretchr/testify/mock"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string {
	return "mock"
}

func (m *mockSource) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRow), args.Error(1)
}

func rec(label string, fields map[string]domain.Value) domain.Record {
	r := domain.Record{domain.PeriodField: domain.StringValue(label)}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func row(dims []string, metrics ...string) domain.RawRow {
	return domain.RawRow{DimensionValues: dims, MetricValues: metrics}
}
