package dashboard

import (
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

// PeriodParams holds the four raw date inputs of a comparison. Empty values
// fall back to DefaultPeriods.
type PeriodParams struct {
	CurrentFrom string
	CurrentTo   string
	CompareFrom string
	CompareTo   string
}

// DefaultPeriods compares the month to date against the whole previous month.
func DefaultPeriods(now time.Time) domain.Periods {
	y, m, d := now.Date()
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return domain.Periods{
		Current: domain.DateRange{
			Start: monthStart,
			End:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		},
		Comparison: domain.DateRange{
			Start: monthStart.AddDate(0, -1, 0),
			End:   monthStart.AddDate(0, 0, -1),
		},
	}
}

// ParsePeriods resolves p against the defaults for now and validates both
// ranges.
func ParsePeriods(p PeriodParams, now time.Time) (domain.Periods, error) {
	periods := DefaultPeriods(now)

	fields := []struct {
		param string
		raw   string
		dst   *time.Time
	}{
		{"current_from", p.CurrentFrom, &periods.Current.Start},
		{"current_to", p.CurrentTo, &periods.Current.End},
		{"compare_from", p.CompareFrom, &periods.Comparison.Start},
		{"compare_to", p.CompareTo, &periods.Comparison.End},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		t, err := time.Parse(isoDateLayout, f.raw)
		if err != nil {
			return domain.Periods{}, &domain.InvalidDateError{Param: f.param, Raw: f.raw}
		}
		*f.dst = t
	}

	if err := periods.Validate(); err != nil {
		return domain.Periods{}, err
	}
	return periods, nil
}
