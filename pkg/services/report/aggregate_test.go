package report

import (
	"testing"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cur = "February 2024"
	cmp = "January 2024"
)

func TestMerge(t *testing.T) {
	a := []domain.Record{rec(cur, map[string]domain.Value{"x": domain.IntValue(1)})}
	b := []domain.Record{
		rec(cmp, map[string]domain.Value{"x": domain.IntValue(1)}),
		rec(cmp, map[string]domain.Value{"x": domain.IntValue(1)}),
	}

	ds := Merge(a, b)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, cur, ds.Records[0].Period())
	assert.Len(t, ds.ForPeriod(cmp), 2)
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		comparison float64
		expected   *float64
	}{
		{name: "growth", current: 150, comparison: 100, expected: ptr(50.0)},
		{name: "decline", current: 50, comparison: 100, expected: ptr(-50.0)},
		{name: "unchanged", current: 10, comparison: 10, expected: ptr(0.0)},
		{name: "zero comparison", current: 10, comparison: 0, expected: nil},
		{name: "both zero", current: 0, comparison: 0, expected: nil},
		{name: "negative comparison is literal", current: -5, comparison: -10, expected: ptr(-50.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(tt.current, tt.comparison)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 1e-9)
		})
	}
}

func TestSummarize(t *testing.T) {
	ds := Merge(
		[]domain.Record{
			rec(cur, map[string]domain.Value{"Clicks": domain.IntValue(30), "CTR": domain.FloatValue(0.2)}),
			rec(cur, map[string]domain.Value{"Clicks": domain.IntValue(20), "CTR": domain.FloatValue(0.4)}),
		},
		[]domain.Record{
			rec(cmp, map[string]domain.Value{"Clicks": domain.IntValue(40), "CTR": domain.FloatValue(0.1)}),
		},
	)

	t.Run("sum", func(t *testing.T) {
		m := Summarize(ds, "Clicks", cur, cmp, domain.Sum)
		assert.Equal(t, "Clicks", m.Name)
		assert.InDelta(t, 50.0, m.Current, 1e-9)
		assert.InDelta(t, 40.0, m.Comparison, 1e-9)
		require.True(t, m.Defined())
		assert.InDelta(t, 25.0, *m.Change, 1e-9)
	})

	t.Run("mean", func(t *testing.T) {
		m := Summarize(ds, "CTR", cur, cmp, domain.Mean)
		assert.InDelta(t, 0.3, m.Current, 1e-9)
		assert.InDelta(t, 0.1, m.Comparison, 1e-9)
		require.True(t, m.Defined())
		assert.InDelta(t, 200.0, *m.Change, 1e-9)
	})

	t.Run("empty comparison period is undefined", func(t *testing.T) {
		m := Summarize(ds, "Clicks", cur, "March 2024", domain.Sum)
		assert.Zero(t, m.Comparison)
		assert.False(t, m.Defined())
	})

	t.Run("missing field", func(t *testing.T) {
		m := Summarize(ds, "Impressions", cur, cmp, domain.Mean)
		assert.Zero(t, m.Current)
		assert.Zero(t, m.Comparison)
		assert.Nil(t, m.Change)
	})
}

func TestSummarizeRatio_RatioOfSums(t *testing.T) {
	// Per-row AOVs are 100 and 10 (mean 55); ratio of sums is 1010/11.
	ds := Merge(
		[]domain.Record{
			rec(cur, map[string]domain.Value{"Revenue": domain.FloatValue(1000), "Items": domain.IntValue(10)}),
			rec(cur, map[string]domain.Value{"Revenue": domain.FloatValue(10), "Items": domain.IntValue(1)}),
		},
		[]domain.Record{
			rec(cmp, map[string]domain.Value{"Revenue": domain.FloatValue(0), "Items": domain.IntValue(0)}),
		},
	)

	m := SummarizeRatio(ds, "Avg Order Value", "Revenue", "Items", cur, cmp)
	assert.Equal(t, "Avg Order Value", m.Name)
	assert.InDelta(t, 1010.0/11.0, m.Current, 1e-9)
	assert.NotEqual(t, 55.0, m.Current)
	assert.Zero(t, m.Comparison)
	assert.False(t, m.Defined())
}

func TestSummarizeRatio_Defined(t *testing.T) {
	ds := Merge(
		[]domain.Record{rec(cur, map[string]domain.Value{"Revenue": domain.FloatValue(300), "Items": domain.IntValue(3)})},
		[]domain.Record{rec(cmp, map[string]domain.Value{"Revenue": domain.FloatValue(200), "Items": domain.IntValue(4)})},
	)

	m := SummarizeRatio(ds, "AOV", "Revenue", "Items", cur, cmp)
	assert.InDelta(t, 100.0, m.Current, 1e-9)
	assert.InDelta(t, 50.0, m.Comparison, 1e-9)
	require.NotNil(t, m.Change)
	assert.InDelta(t, 100.0, *m.Change, 1e-9)
}

func TestGroupAndSort(t *testing.T) {
	ds := Merge(
		[]domain.Record{
			rec(cur, map[string]domain.Value{"Page": domain.StringValue("A"), "Sessions": domain.IntValue(100)}),
			rec(cur, map[string]domain.Value{"Page": domain.StringValue("B"), "Sessions": domain.IntValue(50)}),
		},
		[]domain.Record{
			rec(cmp, map[string]domain.Value{"Page": domain.StringValue("A"), "Sessions": domain.IntValue(80)}),
			rec(cmp, map[string]domain.Value{"Page": domain.StringValue(""), "Sessions": domain.IntValue(999)}),
		},
	)

	table := GroupAndSort(ds, "Landing Pages", "Page", "Sessions")
	assert.Equal(t, "Landing Pages", table.Name)
	assert.Equal(t, []domain.AggregateRow{
		{Key: "A", Value: 180},
		{Key: "B", Value: 50},
	}, table.Rows)
}

func TestGroupAndSort_TiesKeepFirstSeenOrder(t *testing.T) {
	ds := domain.Dataset{Records: []domain.Record{
		rec(cur, map[string]domain.Value{"k": domain.StringValue("x"), "v": domain.IntValue(5)}),
		rec(cur, map[string]domain.Value{"k": domain.StringValue("y"), "v": domain.IntValue(5)}),
		rec(cur, map[string]domain.Value{"k": domain.StringValue("z"), "v": domain.IntValue(7)}),
	}}

	table := GroupAndSort(ds, "t", "k", "v")
	keys := make([]string, 0, table.Len())
	for _, r := range table.Rows {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"z", "x", "y"}, keys)
}

func TestGroupAndSort_Empty(t *testing.T) {
	table := GroupAndSort(domain.Dataset{}, "t", "k", "v")
	assert.Equal(t, 0, table.Len())
}

func TestTopN(t *testing.T) {
	records := []domain.Record{
		rec(cur, map[string]domain.Value{"n": domain.StringValue("a"), "v": domain.IntValue(1)}),
		rec(cur, map[string]domain.Value{"n": domain.StringValue("b"), "v": domain.IntValue(9)}),
		rec(cur, map[string]domain.Value{"n": domain.StringValue("c"), "v": domain.IntValue(5)}),
	}

	top := TopN(records, "v", 2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Text("n"))
	assert.Equal(t, "c", top[1].Text("n"))
	assert.Equal(t, "a", records[0].Text("n"), "input must not be reordered")

	assert.Len(t, TopN(records, "v", 10), 3)
}

func TestTimeSeries(t *testing.T) {
	ds := Merge(
		[]domain.Record{
			rec("Current Month", map[string]domain.Value{"Date": domain.StringValue("2024-02-02"), "Sessions": domain.IntValue(3)}),
			rec("Current Month", map[string]domain.Value{"Date": domain.StringValue("2024-02-01"), "Sessions": domain.IntValue(2)}),
			rec("Current Month", map[string]domain.Value{"Date": domain.StringValue("2024-02-01"), "Sessions": domain.IntValue(1)}),
		},
		[]domain.Record{
			rec("Comparison Month", map[string]domain.Value{"Date": domain.StringValue("2024-01-01"), "Sessions": domain.IntValue(7)}),
		},
	)

	series := TimeSeries(ds, "Date", "Sessions")
	require.Len(t, series, 2)
	assert.Equal(t, "Current Month", series[0].Label)
	assert.Equal(t, []domain.SeriesPoint{
		{Date: "2024-02-01", Value: 3},
		{Date: "2024-02-02", Value: 3},
	}, series[0].Points)
	assert.Equal(t, "Comparison Month", series[1].Label)
	assert.Equal(t, []domain.SeriesPoint{{Date: "2024-01-01", Value: 7}}, series[1].Points)
}

func TestGroupByPeriod(t *testing.T) {
	ds := Merge(
		[]domain.Record{
			rec(cur, map[string]domain.Value{"Channel": domain.StringValue("Organic Search"), "Users": domain.IntValue(10)}),
			rec(cur, map[string]domain.Value{"Channel": domain.StringValue("Organic Search"), "Users": domain.IntValue(5)}),
		},
		[]domain.Record{
			rec(cmp, map[string]domain.Value{"Channel": domain.StringValue("Organic Search"), "Users": domain.IntValue(8)}),
		},
	)

	groups := GroupByPeriod(ds, "Channel", "Users")
	assert.Equal(t, []domain.PeriodGroup{
		{Period: cur, Key: "Organic Search", Value: 15},
		{Period: cmp, Key: "Organic Search", Value: 8},
	}, groups)
}

func ptr(f float64) *float64 {
	return &f
}
