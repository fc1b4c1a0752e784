// Package normalize turns raw provider tables into typed entities. The
// provider's column vocabulary is unknown to the rest of the pipeline; a
// Mapping is a data table (native column → canonical field + transform tag)
// walked once per row, so new providers are added by supplying a new table,
// not new code.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one raw record keyed by the provider's native column names.
type Row map[string]any

// RawTable is a tabular provider result.
type RawTable struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Transform tags how a native value becomes a canonical one.
type Transform string

const (
	// TransformString passes the value through as text.
	TransformString Transform = "string"
	// TransformNumber coerces to float64.
	TransformNumber Transform = "number"
	// TransformPercent coerces to float64 and divides by 100: ratio fields
	// the provider expresses ×100 are stored as fractions.
	TransformPercent Transform = "percent"
	// TransformDate coerces to the canonical YYYY-MM-DD string. Rows whose
	// date does not parse are dropped.
	TransformDate Transform = "date"
	// TransformBoolEq yields true when the text equals Arg.
	TransformBoolEq Transform = "bool-eq"
)

// ColumnMapping binds one native column to one canonical field.
type ColumnMapping struct {
	Native    string    `yaml:"native"`
	Canonical string    `yaml:"canonical"`
	Transform Transform `yaml:"transform"`
	Arg       string    `yaml:"arg,omitempty"`
}

// Mapping is the full column table for one data kind. DateField names the
// canonical field used for range filtering and ordering.
type Mapping struct {
	Kind      string          `yaml:"kind"`
	DateField string          `yaml:"date_field"`
	Columns   []ColumnMapping `yaml:"columns"`
}

// Fields is one normalized row: canonical field name → typed value. Absent
// fields have no entry; absence is a value, not an error.
type Fields struct {
	strs  map[string]string
	nums  map[string]float64
	bools map[string]bool
}

func (f Fields) Str(name string) (string, bool) {
	v, ok := f.strs[name]
	return v, ok
}

func (f Fields) Num(name string) *float64 {
	if v, ok := f.nums[name]; ok {
		return &v
	}
	return nil
}

func (f Fields) Bool(name string) bool { return f.bools[name] }

// Apply walks the mapping once over the row. The second return is false when
// the row must be dropped because its date field did not parse.
func (m Mapping) Apply(row Row) (Fields, bool) {
	out := Fields{
		strs:  make(map[string]string),
		nums:  make(map[string]float64),
		bools: make(map[string]bool),
	}
	for _, col := range m.Columns {
		raw, ok := row[col.Native]
		if !ok || raw == nil {
			continue
		}
		switch col.Transform {
		case TransformString:
			out.strs[col.Canonical] = toString(raw)
		case TransformNumber:
			if v, ok := toFloat(raw); ok {
				out.nums[col.Canonical] = v
			}
		case TransformPercent:
			if v, ok := toFloat(raw); ok {
				out.nums[col.Canonical] = v / 100
			}
		case TransformBoolEq:
			out.bools[col.Canonical] = toString(raw) == col.Arg
		case TransformDate:
			d, err := CoerceDate(toString(raw))
			if err != nil {
				if col.Canonical == m.DateField {
					return Fields{}, false
				}
				continue
			}
			out.strs[col.Canonical] = d
		}
	}
	if m.DateField != "" {
		if _, ok := out.strs[m.DateField]; !ok {
			return Fields{}, false
		}
	}
	return out, true
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// CoerceDate parses any of the provider date layouts into the canonical
// fixed-width YYYY-MM-DD string, the only format on which lexicographic
// comparison is a valid date comparison.
func CoerceDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", s)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
