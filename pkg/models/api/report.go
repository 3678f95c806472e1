package api

// NotAvailable is shown in place of an undefined percent change.
const NotAvailable = "N/A"

type Period struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type SummaryMetric struct {
	Name       string   `json:"name"`
	Current    float64  `json:"current"`
	Comparison float64  `json:"comparison"`
	Change     *float64 `json:"change"`
	ChangeText string   `json:"change_text"`
}

type Section struct {
	Title   string           `json:"title"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

type Group struct {
	Period string  `json:"period"`
	Key    string  `json:"key"`
	Value  float64 `json:"value"`
}

type Chart struct {
	Title  string   `json:"title"`
	Kind   string   `json:"kind"`
	Metric string   `json:"metric"`
	Series []Series `json:"series,omitempty"`
	Groups []Group  `json:"groups,omitempty"`
}

type TableRow struct {
	Index int     `json:"index"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type Page struct {
	Table      string     `json:"table"`
	KeyField   string     `json:"key_field"`
	ValueField string     `json:"value_field"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	TotalRows  int        `json:"total_rows"`
	PageSizes  []int      `json:"page_sizes"`
	Rows       []TableRow `json:"rows"`
}

type Report struct {
	Title      string          `json:"title"`
	Current    Period          `json:"current"`
	Comparison Period          `json:"comparison"`
	Summary    []SummaryMetric `json:"summary"`
	Sections   []Section       `json:"sections"`
	Charts     []Chart         `json:"charts"`
	Tables     []Page          `json:"tables"`
}
