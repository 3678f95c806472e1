package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
)

type TableConfig struct {
	NameWidth   int
	NumberWidth int
	ChangeWidth int
	CellWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:   32,
		NumberWidth: 16,
		ChangeWidth: 10,
		CellWidth:   18,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const reportTemplate = `
{{.Title}}

Current:    {{.Current.Label}} ({{.Current.Start}} to {{.Current.End}})
Comparison: {{.Comparison.Label}} ({{.Comparison.Start}} to {{.Comparison.End}})
{{if .Summary}}
=== Summary ===
{{summarySeparator}}
{{summaryHeader}}
{{summarySeparator}}
{{range .Summary}}{{summaryRow .}}
{{end}}{{summarySeparator}}
{{end}}{{range .Sections}}
=== {{.Title}} ===
{{if .Rows}}{{sectionTable .}}{{else}}No data
{{end}}{{end}}{{range .Charts}}
=== {{.Title}} ({{.Kind}}, {{.Metric}}) ===
{{range .Series}}{{.Label}}: {{len .Points}} points, total {{number (seriesTotal .)}}
{{end}}{{range .Groups}}{{.Period}} / {{.Key}}: {{number .Value}}
{{end}}{{end}}{{range .Tables}}
=== {{.Table}} (page {{.Page}} of {{.TotalPages}}, {{.TotalRows}} rows) ===
{{pageSeparator}}
{{pageRow "#" .KeyField .ValueField}}
{{pageSeparator}}
{{range .Rows}}{{pageRow .Index .Key (number .Value)}}
{{end}}{{pageSeparator}}
{{end}}`

func (c *Reporter) Handle(report api.Report) error {
	cfg := c.config
	funcMap := template.FuncMap{
		"number": formatNumber,
		"summarySeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", cfg.NameWidth+2),
				strings.Repeat("-", cfg.NumberWidth+2),
				strings.Repeat("-", cfg.NumberWidth+2),
				strings.Repeat("-", cfg.ChangeWidth+2))
		},
		"summaryHeader": func() string {
			return fmt.Sprintf("| %-*s | %*s | %*s | %*s |",
				cfg.NameWidth, "Metric",
				cfg.NumberWidth, report.Current.Label,
				cfg.NumberWidth, report.Comparison.Label,
				cfg.ChangeWidth, "Change")
		},
		"summaryRow": func(m api.SummaryMetric) string {
			return fmt.Sprintf("| %-*s | %*s | %*s | %*s |",
				cfg.NameWidth, truncate(m.Name, cfg.NameWidth),
				cfg.NumberWidth, formatNumber(m.Current),
				cfg.NumberWidth, formatNumber(m.Comparison),
				cfg.ChangeWidth, m.ChangeText)
		},
		"sectionTable": func(s api.Section) string {
			return c.sectionTable(s)
		},
		"seriesTotal": func(s api.Series) float64 {
			var total float64
			for _, p := range s.Points {
				total += p.Value
			}
			return total
		},
		"pageSeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", 6),
				strings.Repeat("-", cfg.NameWidth+2),
				strings.Repeat("-", cfg.NumberWidth+2))
		},
		"pageRow": func(index any, key, value string) string {
			return fmt.Sprintf("| %4v | %-*s | %*s |",
				index,
				cfg.NameWidth, truncate(key, cfg.NameWidth),
				cfg.NumberWidth, value)
		},
	}

	t, err := template.New("report").Funcs(funcMap).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func (c *Reporter) sectionTable(s api.Section) string {
	width := c.config.CellWidth

	var sb strings.Builder
	sep := "+"
	for range s.Columns {
		sep += strings.Repeat("-", width+2) + "+"
	}

	sb.WriteString(sep + "\n|")
	for _, col := range s.Columns {
		fmt.Fprintf(&sb, " %-*s |", width, truncate(col, width))
	}
	sb.WriteString("\n" + sep + "\n")

	for _, row := range s.Rows {
		sb.WriteString("|")
		for _, col := range s.Columns {
			fmt.Fprintf(&sb, " %-*s |", width, truncate(formatCell(row[col]), width))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(sep + "\n")
	return sb.String()
}

func formatCell(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return formatNumber(n)
	default:
		return fmt.Sprint(n)
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
