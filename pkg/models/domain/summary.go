package domain

type Reducer int

const (
	Sum Reducer = iota
	Mean
)

func (r Reducer) String() string {
	if r == Mean {
		return "mean"
	}
	return "sum"
}

// SummaryMetric compares one metric across the two periods. A nil Change
// means the percent change is undefined (zero comparison value).
type SummaryMetric struct {
	Name       string
	Current    float64
	Comparison float64
	Change     *float64
}

func (m SummaryMetric) Defined() bool {
	return m.Change != nil
}

type AggregateRow struct {
	Key   string
	Value float64
}

// AggregateTable is grouped by KeyField with ValueField summed, sorted
// descending.
type AggregateTable struct {
	Name       string
	KeyField   string
	ValueField string
	Rows       []AggregateRow
}

func (t AggregateTable) Len() int {
	return len(t.Rows)
}

type PageRow struct {
	Index int
	AggregateRow
}

type Page struct {
	Table      string
	Number     int
	Size       int
	TotalPages int
	TotalRows  int
	Rows       []PageRow
}

// PageState is the user's pagination position on a single table.
type PageState struct {
	PageSize    int
	CurrentPage int
}

type SeriesPoint struct {
	Date  string
	Value float64
}

// Series is one line of an over-time chart.
type Series struct {
	Label  string
	Points []SeriesPoint
}

// PeriodGroup is one bar in a period-by-key chart.
type PeriodGroup struct {
	Period string
	Key    string
	Value  float64
}
