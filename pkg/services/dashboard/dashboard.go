package dashboard

import (
	"context"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

const topN = 10

// Table names double as PageStates keys.
const (
	TableRevenueByCategory = "Revenue By Category"
	TableSpendByService    = "Spend By Service"
)

// Builder assembles one dashboard page for a pair of periods.
type Builder interface {
	Name() string
	Build(ctx context.Context, periods domain.Periods) (*domain.Report, error)
}

const (
	ga4DateLayout = "20060102"
	isoDateLayout = "2006-01-02"
)

// isoDates rewrites GA4's compact YYYYMMDD dates in place so they sort and
// chart the same as Search Console dates. Values that do not parse are kept.
func isoDates(records []domain.Record, field string) {
	for _, r := range records {
		v, ok := r.Get(field)
		if !ok {
			continue
		}
		t, err := time.Parse(ga4DateLayout, v.Str)
		if err != nil {
			continue
		}
		r[field] = domain.StringValue(t.Format(isoDateLayout))
	}
}

func newReport(title string, periods domain.Periods, currentLabel, comparisonLabel string) *domain.Report {
	return &domain.Report{
		Title:           title,
		Periods:         periods,
		CurrentLabel:    currentLabel,
		ComparisonLabel: comparisonLabel,
	}
}

func lineChart(title, metric string, series []domain.Series) domain.Chart {
	return domain.Chart{Title: title, Kind: domain.ChartLine, Metric: metric, Series: series}
}

func barChart(title, metric string, groups []domain.PeriodGroup) domain.Chart {
	return domain.Chart{Title: title, Kind: domain.ChartBar, Metric: metric, Groups: groups}
}
