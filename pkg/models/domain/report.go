package domain

// Report is the complete output of one dashboard page for a pair of periods.
type Report struct {
	Title           string
	Periods         Periods
	CurrentLabel    string
	ComparisonLabel string
	Summary         []SummaryMetric
	Sections        []ReportSection
	Charts          []Chart
	Tables          []AggregateTable
}

// ReportSection is a flat record table, e.g. "Month on Month Data".
type ReportSection struct {
	Title   string
	Columns []string
	Records []Record
}

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// Chart carries the series for one chart; rendering happens elsewhere.
type Chart struct {
	Title  string
	Kind   ChartKind
	Metric string
	Series []Series
	Groups []PeriodGroup
}

func (r *Report) Table(name string) (AggregateTable, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return AggregateTable{}, false
}

func (r *Report) Section(title string) (ReportSection, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return ReportSection{}, false
}

func (r *Report) Metric(name string) (SummaryMetric, bool) {
	for _, m := range r.Summary {
		if m.Name == name {
			return m, true
		}
	}
	return SummaryMetric{}, false
}
