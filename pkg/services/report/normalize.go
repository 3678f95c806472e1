package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

// Normalize applies schema to row positionally and tags the result with label.
func Normalize(row domain.RawRow, label string, schema domain.Schema) (domain.Record, error) {
	if len(row.DimensionValues) != len(schema.Dimensions) || len(row.MetricValues) != len(schema.Metrics) {
		return nil, &domain.SchemaMismatchError{
			Label:              label,
			ExpectedDimensions: len(schema.Dimensions),
			ExpectedMetrics:    len(schema.Metrics),
			GotDimensions:      len(row.DimensionValues),
			GotMetrics:         len(row.MetricValues),
		}
	}

	rec := make(domain.Record, len(schema.Dimensions)+len(schema.Metrics)+1)
	rec[domain.PeriodField] = domain.StringValue(label)

	for i, f := range schema.Dimensions {
		rec[f.Name] = domain.StringValue(row.DimensionValues[i])
	}

	for i, f := range schema.Metrics {
		v, err := parseMetric(f, row.MetricValues[i])
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}

	return rec, nil
}

// NormalizeAll normalizes every row or none: the first failure aborts the
// whole fetch so partial data never reaches the aggregates.
func NormalizeAll(rows []domain.RawRow, label string, schema domain.Schema) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := Normalize(row, label, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseMetric(f domain.Field, raw string) (domain.Value, error) {
	s := strings.TrimSpace(raw)

	switch f.Kind {
	case domain.KindString:
		return domain.StringValue(raw), nil

	case domain.KindInteger:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return domain.IntValue(i), nil
		}
		// GA4 occasionally renders integer metrics as "12.0".
		fl, err := strconv.ParseFloat(s, 64)
		if err != nil || fl != math.Trunc(fl) || fl < math.MinInt64 || fl >= math.MaxInt64 {
			return domain.Value{}, &domain.NumericParseError{Field: f.Name, Raw: raw, Err: err}
		}
		return domain.IntValue(int64(fl)), nil

	case domain.KindFloat, domain.KindPercent:
		fl, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) {
			return domain.Value{}, &domain.NumericParseError{Field: f.Name, Raw: raw, Err: err}
		}
		if f.Kind == domain.KindPercent {
			return domain.PercentValue(fl * 100), nil
		}
		return domain.FloatValue(fl), nil
	}

	return domain.Value{}, &domain.NumericParseError{Field: f.Name, Raw: raw}
}
