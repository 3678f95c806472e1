package domain

import (
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// Filter restricts a report to rows whose dimension equals Value exactly.
type Filter struct {
	Field string
	Value string
}

// DateRange is an inclusive calendar-day interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Validate() error {
	if day(r.Start).After(day(r.End)) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

func (r DateRange) StartDate() string {
	return r.Start.Format(dateLayout)
}

func (r DateRange) EndDate() string {
	return r.End.Format(dateLayout)
}

// Days returns the inclusive number of calendar days covered by the range.
func (r DateRange) Days() int {
	return int(day(r.End).Sub(day(r.Start)).Hours()/24) + 1
}

// Periods pairs the two ranges a comparison is built from.
type Periods struct {
	Current    DateRange
	Comparison DateRange
}

func (p Periods) Validate() error {
	if err := p.Current.Validate(); err != nil {
		return err
	}
	return p.Comparison.Validate()
}

// RangeQuery describes a single report request for one labelled period.
type RangeQuery struct {
	DateRange
	Label      string
	Dimensions []string
	Metrics    []string
	Filter     *Filter
	Limit      int64
}

type QueryOption func(*RangeQuery)

func WithFilter(field, value string) QueryOption {
	return func(q *RangeQuery) {
		q.Filter = &Filter{Field: field, Value: value}
	}
}

func WithLimit(limit int64) QueryOption {
	return func(q *RangeQuery) {
		q.Limit = limit
	}
}

// NewRangeQuery validates the range and copies the field lists so callers can
// reuse their slices.
func NewRangeQuery(
	start, end time.Time,
	label string,
	dimensions, metrics []string,
	opts ...QueryOption,
) (RangeQuery, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return RangeQuery{}, err
	}

	q := RangeQuery{
		DateRange:  r,
		Label:      label,
		Dimensions: slices.Clone(dimensions),
		Metrics:    slices.Clone(metrics),
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q, nil
}

// MonthLabel renders the month-and-year label used to tag a period in tables,
// e.g. "January 2024".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
