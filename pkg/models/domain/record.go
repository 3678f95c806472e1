package domain

import "strconv"

// PeriodField is present on every normalized record.
const PeriodField = "period_label"

// RawRow holds unparsed values aligned by position with the query's
// dimensions and metrics.
type RawRow struct {
	DimensionValues []string
	MetricValues    []string
}

type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
	KindFloat
	// KindPercent is a [0,1] rate stored scaled to [0,100].
	KindPercent
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindPercent:
		return "percent"
	default:
		return "unknown"
	}
}

func (k FieldKind) Numeric() bool {
	return k != KindString
}

// Field names a normalized column. Source is the name sent to the report
// API verbatim; when empty, Name is used.
type Field struct {
	Name   string
	Source string
	Kind   FieldKind
}

func (f Field) SourceName() string {
	if f.Source == "" {
		return f.Name
	}
	return f.Source
}

// Schema maps positional raw values onto named fields. Dimensions are always
// strings; metric kinds decide how the raw text is parsed.
type Schema struct {
	Dimensions []Field
	Metrics    []Field
}

// SourceDimensions lists the dimension names to request from the API.
func (s Schema) SourceDimensions() []string {
	return sourceNames(s.Dimensions)
}

// SourceMetrics lists the metric names to request from the API.
func (s Schema) SourceMetrics() []string {
	return sourceNames(s.Metrics)
}

// Columns lists the normalized field names in schema order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Dimensions)+len(s.Metrics))
	for _, f := range s.Dimensions {
		cols = append(cols, f.Name)
	}
	for _, f := range s.Metrics {
		cols = append(cols, f.Name)
	}
	return cols
}

func sourceNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.SourceName())
	}
	return names
}

type Value struct {
	Kind  FieldKind
	Str   string
	Int   int64
	Float float64
}

func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func IntValue(i int64) Value {
	return Value{Kind: KindInteger, Int: i}
}

func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

func PercentValue(f float64) Value {
	return Value{Kind: KindPercent, Float: f}
}

// Number returns the numeric value and false for string values.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat, KindPercent:
		return v.Float, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat, KindPercent:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Interface returns the Go value a JSON encoder should emit.
func (v Value) Interface() any {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindFloat, KindPercent:
		return v.Float
	default:
		return v.Str
	}
}

// Record is a normalized row. Use Get/Text/Number rather than the map when
// the field might be absent.
type Record map[string]Value

func (r Record) Period() string {
	return r[PeriodField].Str
}

func (r Record) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}

func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return v.String()
}

func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	return v.Number()
}

// Dataset is the merged result of the two periods of a comparison.
type Dataset struct {
	Records []Record
}

func (d Dataset) Len() int {
	return len(d.Records)
}

// ForPeriod returns the records tagged with label, preserving order.
func (d Dataset) ForPeriod(label string) []Record {
	var out []Record
	for _, r := range d.Records {
		if r.Period() == label {
			out = append(out, r)
		}
	}
	return out
}
