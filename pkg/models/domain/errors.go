package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPageSize = errors.New("invalid page size")

type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start (%s) is after end (%s)",
		e.Start.Format(dateLayout), e.End.Format(dateLayout))
}

// ReportFetchError attributes a source failure to the period it was fetching.
type ReportFetchError struct {
	Label string
	Err   error
}

func (e *ReportFetchError) Error() string {
	return fmt.Sprintf("could not load %s data: %v", e.Label, e.Err)
}

func (e *ReportFetchError) Unwrap() error {
	return e.Err
}

type SchemaMismatchError struct {
	Label              string
	ExpectedDimensions int
	ExpectedMetrics    int
	GotDimensions      int
	GotMetrics         int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"row for %q does not match schema: expected %d dimensions and %d metrics, got %d and %d",
		e.Label, e.ExpectedDimensions, e.ExpectedMetrics, e.GotDimensions, e.GotMetrics)
}

type NumericParseError struct {
	Field string
	Raw   string
	Err   error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("field %q: cannot parse %q as a number", e.Field, e.Raw)
}

func (e *NumericParseError) Unwrap() error {
	return e.Err
}

type PageOutOfRangeError struct {
	Page       int
	TotalPages int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d is out of range (1-%d)", e.Page, e.TotalPages)
}

// InvalidDateError reports a date parameter that is not YYYY-MM-DD.
type InvalidDateError struct {
	Param string
	Raw   string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid '%s' date format %q. Expected format: YYYY-MM-DD", e.Param, e.Raw)
}
