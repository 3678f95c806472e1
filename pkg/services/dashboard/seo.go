package dashboard

import (
	"context"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"golang.org/x/sync/errgroup"
)

const organicSearch = "Organic Search"

var (
	engagementMetrics = []domain.Field{
		{Name: "Active Users", Source: "activeUsers", Kind: domain.KindInteger},
		{Name: "New Users", Source: "newUsers", Kind: domain.KindInteger},
		{Name: "Engaged Sessions", Source: "engagedSessions", Kind: domain.KindInteger},
	}

	channelSchema = domain.Schema{
		Dimensions: []domain.Field{{Name: "Channel", Source: "sessionDefaultChannelGroup"}},
		Metrics:    engagementMetrics,
	}

	sessionsSchema = domain.Schema{
		Dimensions: []domain.Field{{Name: "Date", Source: "date"}},
		Metrics:    []domain.Field{{Name: "Sessions", Source: "sessions", Kind: domain.KindInteger}},
	}

	landingPageSchema = domain.Schema{
		Dimensions: []domain.Field{{Name: "Landing Page", Source: "landingPage"}},
		Metrics:    engagementMetrics,
	}

	// Search Console reports CTR as a raw [0,1] rate.
	searchSchema = domain.Schema{
		Dimensions: []domain.Field{{Name: "Date", Source: "date"}},
		Metrics: []domain.Field{
			{Name: "Clicks", Source: "clicks", Kind: domain.KindInteger},
			{Name: "Impressions", Source: "impressions", Kind: domain.KindInteger},
			{Name: "CTR", Source: "ctr", Kind: domain.KindFloat},
			{Name: "Position", Source: "position", Kind: domain.KindFloat},
		},
	}
)

type seo struct {
	channels     *report.Pipeline
	sessions     *report.Pipeline
	landingPages *report.Pipeline
	search       *report.Pipeline
}

// NewSEO builds the SEO page. gsc may be nil, in which case the Search
// Console sections are left out.
func NewSEO(ga4, gsc report.Source) Builder {
	s := &seo{
		channels:     report.NewPipeline(ga4, channelSchema, domain.WithFilter("sessionDefaultChannelGroup", organicSearch)),
		sessions:     report.NewPipeline(ga4, sessionsSchema),
		landingPages: report.NewPipeline(ga4, landingPageSchema),
	}
	if gsc != nil {
		s.search = report.NewPipeline(gsc, searchSchema, domain.WithLimit(1000))
	}
	return s
}

func (s *seo) Name() string {
	return "seo"
}

func (s *seo) Build(ctx context.Context, periods domain.Periods) (*domain.Report, error) {
	labels := report.MonthLabels(periods)

	var (
		channels domain.Dataset
		sessions domain.Dataset
		search   domain.Dataset
		landing  []domain.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		channels, err = s.channels.Compare(gctx, periods, labels)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.Compare(gctx, periods, report.FixedLabels)
		return err
	})
	g.Go(func() error {
		var err error
		landing, err = s.landingPages.Single(gctx, periods.Current, labels.Current)
		return err
	})
	if s.search != nil {
		g.Go(func() error {
			var err error
			search, err = s.search.Compare(gctx, periods, report.FixedLabels)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	isoDates(sessions.Records, "Date")

	r := newReport("SEO Data Dashboard", periods, labels.Current, labels.Comparison)
	for _, f := range engagementMetrics {
		r.Summary = append(r.Summary, report.Summarize(channels, f.Name, labels.Current, labels.Comparison, domain.Sum))
	}
	r.Sections = []domain.ReportSection{
		{Title: "Month on Month Data", Columns: withPeriod(channelSchema), Records: channels.Records},
		{Title: "Top 10 Landing Pages", Columns: landingPageSchema.Columns(), Records: report.TopN(landing, "Active Users", topN)},
	}
	r.Charts = []domain.Chart{
		lineChart("Sessions Over Time", "Sessions", report.TimeSeries(sessions, "Date", "Sessions")),
		barChart("Active Users MoM", "Active Users", report.GroupByPeriod(channels, "Channel", "Active Users")),
		barChart("New Users MoM", "New Users", report.GroupByPeriod(channels, "Channel", "New Users")),
	}

	if s.search == nil {
		return r, nil
	}

	cur, cmp := report.FixedLabels.Current, report.FixedLabels.Comparison
	r.Summary = append(r.Summary,
		report.Summarize(search, "Clicks", cur, cmp, domain.Sum),
		report.Summarize(search, "Impressions", cur, cmp, domain.Sum),
		report.Summarize(search, "CTR", cur, cmp, domain.Mean),
		report.Summarize(search, "Position", cur, cmp, domain.Mean),
	)
	r.Sections = append(r.Sections, domain.ReportSection{
		Title: "Month on Month GSC Data", Columns: withPeriod(searchSchema), Records: search.Records,
	})
	r.Charts = append(r.Charts,
		lineChart("Clicks Over Time", "Clicks", report.TimeSeries(search, "Date", "Clicks")),
		lineChart("Impressions Over Time", "Impressions", report.TimeSeries(search, "Date", "Impressions")),
	)
	return r, nil
}
