package adapters

import (
	"fmt"
	"slices"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
)

// FormatChange renders a percent change for display, "N/A" when undefined.
func FormatChange(change *float64) string {
	if change == nil {
		return api.NotAvailable
	}
	return fmt.Sprintf("%+.1f%%", *change)
}

func MapSummaryMetricDomainToApi(m domain.SummaryMetric) api.SummaryMetric {
	out := api.SummaryMetric{
		Name:       m.Name,
		Current:    m.Current,
		Comparison: m.Comparison,
		ChangeText: FormatChange(m.Change),
	}
	if m.Change != nil {
		change := *m.Change
		out.Change = &change
	}
	return out
}

func MapSectionDomainToApi(s domain.ReportSection) api.Section {
	out := api.Section{
		Title:   s.Title,
		Columns: slices.Clone(s.Columns),
		Rows:    make([]map[string]any, 0, len(s.Records)),
	}
	for _, r := range s.Records {
		row := make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v.Interface()
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func MapChartDomainToApi(c domain.Chart) api.Chart {
	out := api.Chart{
		Title:  c.Title,
		Kind:   string(c.Kind),
		Metric: c.Metric,
	}
	for _, s := range c.Series {
		series := api.Series{Label: s.Label, Points: make([]api.Point, 0, len(s.Points))}
		for _, p := range s.Points {
			series.Points = append(series.Points, api.Point{Date: p.Date, Value: p.Value})
		}
		out.Series = append(out.Series, series)
	}
	for _, g := range c.Groups {
		out.Groups = append(out.Groups, api.Group{Period: g.Period, Key: g.Key, Value: g.Value})
	}
	return out
}

func MapPageDomainToApi(table domain.AggregateTable, p domain.Page) api.Page {
	out := api.Page{
		Table:      p.Table,
		KeyField:   table.KeyField,
		ValueField: table.ValueField,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages,
		TotalRows:  p.TotalRows,
		PageSizes:  slices.Clone(report.PageSizes),
		Rows:       make([]api.TableRow, 0, len(p.Rows)),
	}
	for _, r := range p.Rows {
		out.Rows = append(out.Rows, api.TableRow{Index: r.Index, Key: r.Key, Value: r.Value})
	}
	return out
}

// MapReportDomainToApi converts r, paginating each aggregate table at the
// positions stored in pages.
func MapReportDomainToApi(
	r *domain.Report,
	paginator *report.Paginator,
	pages *report.PageStates,
) (api.Report, error) {
	out := api.Report{
		Title: r.Title,
		Current: api.Period{
			Label: r.CurrentLabel,
			Start: r.Periods.Current.StartDate(),
			End:   r.Periods.Current.EndDate(),
		},
		Comparison: api.Period{
			Label: r.ComparisonLabel,
			Start: r.Periods.Comparison.StartDate(),
			End:   r.Periods.Comparison.EndDate(),
		},
		Summary:  make([]api.SummaryMetric, 0, len(r.Summary)),
		Sections: make([]api.Section, 0, len(r.Sections)),
		Charts:   make([]api.Chart, 0, len(r.Charts)),
		Tables:   make([]api.Page, 0, len(r.Tables)),
	}

	for _, m := range r.Summary {
		out.Summary = append(out.Summary, MapSummaryMetricDomainToApi(m))
	}
	for _, s := range r.Sections {
		out.Sections = append(out.Sections, MapSectionDomainToApi(s))
	}
	for _, c := range r.Charts {
		out.Charts = append(out.Charts, MapChartDomainToApi(c))
	}
	for _, t := range r.Tables {
		page, err := pages.Current(paginator, t)
		if err != nil {
			return api.Report{}, fmt.Errorf("paginate %s: %w", t.Name, err)
		}
		out.Tables = append(out.Tables, MapPageDomainToApi(t, page))
	}
	return out, nil
}
