package report

import (
	"slices"
	"sort"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

// Merge concatenates the two periods. Records keep their own period label and
// nothing is deduplicated.
func Merge(current, comparison []domain.Record) domain.Dataset {
	records := make([]domain.Record, 0, len(current)+len(comparison))
	records = append(records, current...)
	records = append(records, comparison...)
	return domain.Dataset{Records: records}
}

// PercentChange returns nil when comparison is exactly zero. Negative
// denominators are computed literally.
func PercentChange(current, comparison float64) *float64 {
	if comparison == 0 {
		return nil
	}
	change := (current - comparison) / comparison * 100
	return &change
}

func Summarize(
	ds domain.Dataset,
	field, labelCurrent, labelComparison string,
	reducer domain.Reducer,
) domain.SummaryMetric {
	current := reduce(ds.ForPeriod(labelCurrent), field, reducer)
	comparison := reduce(ds.ForPeriod(labelComparison), field, reducer)

	return domain.SummaryMetric{
		Name:       field,
		Current:    current,
		Comparison: comparison,
		Change:     PercentChange(current, comparison),
	}
}

// SummarizeRatio derives numerator/denominator per period from the summed
// columns, never from per-row ratios. A period whose denominator sums to zero
// reports 0 and leaves the change undefined.
func SummarizeRatio(
	ds domain.Dataset,
	name, numerator, denominator, labelCurrent, labelComparison string,
) domain.SummaryMetric {
	cur, curOK := ratio(ds.ForPeriod(labelCurrent), numerator, denominator)
	cmp, cmpOK := ratio(ds.ForPeriod(labelComparison), numerator, denominator)

	m := domain.SummaryMetric{Name: name, Current: cur, Comparison: cmp}
	if curOK && cmpOK {
		m.Change = PercentChange(cur, cmp)
	}
	return m
}

func ratio(records []domain.Record, numerator, denominator string) (float64, bool) {
	den := reduce(records, denominator, domain.Sum)
	if den == 0 {
		return 0, false
	}
	return reduce(records, numerator, domain.Sum) / den, true
}

func reduce(records []domain.Record, field string, reducer domain.Reducer) float64 {
	var (
		total float64
		n     int
	)
	for _, r := range records {
		v, ok := r.Number(field)
		if !ok {
			continue
		}
		total += v
		n++
	}

	if reducer == domain.Mean {
		if n == 0 {
			return 0
		}
		return total / float64(n)
	}
	return total
}

// GroupAndSort sums valueField per keyField across both periods, drops empty
// or missing keys, and sorts descending. Ties keep first-seen key order.
func GroupAndSort(ds domain.Dataset, name, keyField, valueField string) domain.AggregateTable {
	rows := groupSum(ds.Records, keyField, valueField)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value > rows[j].Value
	})

	return domain.AggregateTable{
		Name:       name,
		KeyField:   keyField,
		ValueField: valueField,
		Rows:       rows,
	}
}

func groupSum(records []domain.Record, keyField, valueField string) []domain.AggregateRow {
	index := make(map[string]int)
	var rows []domain.AggregateRow

	for _, r := range records {
		key := r.Text(keyField)
		if key == "" {
			continue
		}
		v, _ := r.Number(valueField)

		i, seen := index[key]
		if !seen {
			i = len(rows)
			index[key] = i
			rows = append(rows, domain.AggregateRow{Key: key})
		}
		rows[i].Value += v
	}
	return rows
}

// TopN returns the n records with the largest valueField, ties in source order.
func TopN(records []domain.Record, valueField string, n int) []domain.Record {
	sorted := slices.Clone(records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := sorted[i].Number(valueField)
		b, _ := sorted[j].Number(valueField)
		return a > b
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TimeSeries builds one line per period label (in the order labels first
// appear) with points summed per date and sorted by date.
func TimeSeries(ds domain.Dataset, dateField, valueField string) []domain.Series {
	var labels []string
	byLabel := make(map[string][]domain.Record)
	for _, r := range ds.Records {
		label := r.Period()
		if _, ok := byLabel[label]; !ok {
			labels = append(labels, label)
		}
		byLabel[label] = append(byLabel[label], r)
	}

	series := make([]domain.Series, 0, len(labels))
	for _, label := range labels {
		sums := groupSum(byLabel[label], dateField, valueField)
		points := make([]domain.SeriesPoint, 0, len(sums))
		for _, s := range sums {
			points = append(points, domain.SeriesPoint{Date: s.Key, Value: s.Value})
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Date < points[j].Date
		})
		series = append(series, domain.Series{Label: label, Points: points})
	}
	return series
}

// GroupByPeriod sums valueField per (period, key) pair in first-seen order.
func GroupByPeriod(ds domain.Dataset, keyField, valueField string) []domain.PeriodGroup {
	type groupKey struct{ period, key string }
	index := make(map[groupKey]int)
	var groups []domain.PeriodGroup

	for _, r := range ds.Records {
		k := groupKey{period: r.Period(), key: r.Text(keyField)}
		if k.key == "" {
			continue
		}
		v, _ := r.Number(valueField)

		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, domain.PeriodGroup{Period: k.period, Key: k.key})
		}
		groups[i].Value += v
	}
	return groups
}
