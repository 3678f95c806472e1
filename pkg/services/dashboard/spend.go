package dashboard

import (
	"context"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
)

var spendSchema = domain.Schema{
	Dimensions: []domain.Field{{Name: "Service", Source: "SERVICE"}},
	Metrics:    []domain.Field{{Name: "Cost", Source: "UnblendedCost", Kind: domain.KindFloat}},
}

type spend struct {
	services *report.Pipeline
}

// NewSpend builds the cloud spend page from a Cost Explorer source.
func NewSpend(ce report.Source) Builder {
	return &spend{services: report.NewPipeline(ce, spendSchema)}
}

func (s *spend) Name() string {
	return "spend"
}

func (s *spend) Build(ctx context.Context, periods domain.Periods) (*domain.Report, error) {
	labels := report.MonthLabels(periods)

	ds, err := s.services.Compare(ctx, periods, labels)
	if err != nil {
		return nil, err
	}

	r := newReport("Cloud Spend", periods, labels.Current, labels.Comparison)
	r.Summary = []domain.SummaryMetric{
		report.Summarize(ds, "Cost", labels.Current, labels.Comparison, domain.Sum),
	}
	r.Sections = []domain.ReportSection{
		{Title: "Month on Month Spend", Columns: withPeriod(spendSchema), Records: ds.Records},
	}
	r.Tables = []domain.AggregateTable{
		report.GroupAndSort(ds, TableSpendByService, "Service", "Cost"),
	}
	return r, nil
}
