package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewRangeQuery(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "start before end", start: "2024-01-01", end: "2024-01-31"},
		{name: "single day", start: "2024-02-10", end: "2024-02-10"},
		{name: "start after end", start: "2024-03-02", end: "2024-03-01", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewRangeQuery(date(tc.start), date(tc.end), "label",
				[]string{"itemName"}, []string{"itemRevenue"})
			if tc.wantErr {
				var rangeErr *InvalidRangeError
				require.True(t, errors.As(err, &rangeErr))
				assert.Equal(t, date(tc.start), rangeErr.Start)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.start, q.StartDate())
			assert.Equal(t, tc.end, q.EndDate())
		})
	}
}

func TestNewRangeQuery_SameDayIgnoresClock(t *testing.T) {
	start := time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	_, err := NewRangeQuery(start, end, "x", nil, nil)
	assert.NoError(t, err)
}

func TestNewRangeQuery_Options(t *testing.T) {
	dims := []string{"sessionDefaultChannelGroup"}
	q, err := NewRangeQuery(date("2024-01-01"), date("2024-01-31"), "January 2024",
		dims, []string{"activeUsers"},
		WithFilter("sessionDefaultChannelGroup", "Organic Search"),
		WithLimit(10),
	)
	require.NoError(t, err)

	require.NotNil(t, q.Filter)
	assert.Equal(t, "Organic Search", q.Filter.Value)
	assert.Equal(t, int64(10), q.Limit)

	dims[0] = "mutated"
	assert.Equal(t, "sessionDefaultChannelGroup", q.Dimensions[0])
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "January 2024", MonthLabel(date("2024-01-18")))
}

func TestDateRange_Days(t *testing.T) {
	r := DateRange{Start: date("2024-01-01"), End: date("2024-01-31")}
	assert.Equal(t, 31, r.Days())
}

func TestPeriods_Validate(t *testing.T) {
	p := Periods{
		Current:    DateRange{Start: date("2024-02-01"), End: date("2024-02-29")},
		Comparison: DateRange{Start: date("2024-01-31"), End: date("2024-01-01")},
	}
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, p.Validate(), &rangeErr)
}
