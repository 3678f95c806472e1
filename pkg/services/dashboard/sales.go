package dashboard

import (
	"context"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"golang.org/x/sync/errgroup"
)

var (
	productSchema = domain.Schema{
		Dimensions: []domain.Field{
			{Name: "Product", Source: "itemName"},
			{Name: "Category", Source: "itemCategory"},
		},
		Metrics: []domain.Field{
			{Name: "Views", Source: "itemsViewed", Kind: domain.KindInteger},
			{Name: "Items Sold", Source: "itemsPurchased", Kind: domain.KindInteger},
			{Name: "Revenue", Source: "itemRevenue", Kind: domain.KindFloat},
			{Name: "Conversion Rate", Source: "purchaseToViewRate", Kind: domain.KindPercent},
		},
	}

	salesOverTimeSchema = domain.Schema{
		Dimensions: []domain.Field{{Name: "Date", Source: "date"}},
		Metrics:    []domain.Field{{Name: "Sales", Source: "purchaseRevenue", Kind: domain.KindFloat}},
	}

	topProductsSchema = domain.Schema{
		Dimensions: []domain.Field{
			{Name: "Product", Source: "itemName"},
			{Name: "Category", Source: "itemCategory"},
		},
		Metrics: []domain.Field{{Name: "Sales", Source: "itemsPurchased", Kind: domain.KindInteger}},
	}
)

type sales struct {
	products    *report.Pipeline
	overTime    *report.Pipeline
	topProducts *report.Pipeline
}

// NewSales builds the product sales page from a GA4 source.
func NewSales(ga4 report.Source) Builder {
	return &sales{
		products:    report.NewPipeline(ga4, productSchema),
		overTime:    report.NewPipeline(ga4, salesOverTimeSchema),
		topProducts: report.NewPipeline(ga4, topProductsSchema),
	}
}

func (s *sales) Name() string {
	return "sales"
}

func (s *sales) Build(ctx context.Context, periods domain.Periods) (*domain.Report, error) {
	labels := report.MonthLabels(periods)

	var (
		products domain.Dataset
		overTime domain.Dataset
		top      []domain.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.Compare(gctx, periods, labels)
		return err
	})
	g.Go(func() error {
		var err error
		overTime, err = s.overTime.Compare(gctx, periods, report.FixedLabels)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.topProducts.Single(gctx, periods.Current, labels.Current)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	isoDates(overTime.Records, "Date")

	r := newReport("Product Sales Dashboard", periods, labels.Current, labels.Comparison)
	r.Summary = []domain.SummaryMetric{
		report.Summarize(products, "Revenue", labels.Current, labels.Comparison, domain.Sum),
		report.Summarize(products, "Items Sold", labels.Current, labels.Comparison, domain.Sum),
		report.SummarizeRatio(products, "Avg Order Value", "Revenue", "Items Sold", labels.Current, labels.Comparison),
	}
	r.Sections = []domain.ReportSection{
		{Title: "Sales Data", Columns: withPeriod(productSchema), Records: products.Records},
		{Title: "Top 10 Products", Columns: topProductsSchema.Columns(), Records: report.TopN(top, "Sales", topN)},
	}
	r.Charts = []domain.Chart{
		lineChart("Sales Over Time", "Sales", report.TimeSeries(overTime, "Date", "Sales")),
	}
	r.Tables = []domain.AggregateTable{
		report.GroupAndSort(products, TableRevenueByCategory, "Category", "Revenue"),
	}
	return r, nil
}

func withPeriod(s domain.Schema) []string {
	return append([]string{domain.PeriodField}, s.Columns()...)
}
