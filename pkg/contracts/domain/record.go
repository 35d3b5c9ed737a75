package domain

import (
	"github.com/spf13/cast"
)

// Record is a single flat fact row keyed by dimension and measure field
// names. Values arrive from JSON or CSV loaders as strings or numbers;
// accessors coerce on read so callers never branch on the stored type.
type Record map[string]any

// Text returns the record field coerced to a string, or "" when absent.
func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// Number returns the record field coerced to a float64, or 0 when absent
// or non-numeric.
func (r Record) Number(field string) float64 {
	v, ok := r[field]
	if !ok {
		return 0
	}
	return cast.ToFloat64(v)
}

// Has reports whether the field is present on the record.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}
