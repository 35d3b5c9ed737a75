package semantic

import (
	"strings"

	"finquery/internal/normalize"
)

// Dictionary is the static catalog of dimensions, measures and derived
// metrics. It is built once at startup, validated, and passed by
// reference into the planner and executor; it is never mutated
// afterwards.
//
// Natural-language lookup obeys one canonical matching rule everywhere:
// an exact normalized-key match wins outright; otherwise a synonym
// matches only when the normalized query contains the normalized synonym
// as a substring. The reverse containment is deliberately excluded so
// short generic words cannot win over specific multi-word synonyms.
// Ties resolve by declaration order.
type Dictionary struct {
	dimensions []Dimension
	measures   []Measure
	derived    []DerivedMetric

	measuresByKey map[string]*Measure
	derivedByKey  map[string]*DerivedMetric
}

// New builds a Dictionary from the given catalog and validates its
// structural invariants.
func New(dimensions []Dimension, measures []Measure, derived []DerivedMetric) (*Dictionary, error) {
	d := &Dictionary{
		dimensions:    dimensions,
		measures:      measures,
		derived:       derived,
		measuresByKey: make(map[string]*Measure, len(measures)),
		derivedByKey:  make(map[string]*DerivedMetric, len(derived)),
	}
	for i := range d.measures {
		d.measuresByKey[d.measures[i].Key] = &d.measures[i]
	}
	for i := range d.derived {
		d.derivedByKey[d.derived[i].Key] = &d.derived[i]
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Dimensions returns the declared dimensions in declaration order.
func (d *Dictionary) Dimensions() []Dimension {
	return d.dimensions
}

// Measures returns the declared measures in declaration order.
func (d *Dictionary) Measures() []Measure {
	return d.measures
}

// DerivedMetrics returns the declared derived metrics in declaration order.
func (d *Dictionary) DerivedMetrics() []DerivedMetric {
	return d.derived
}

// MeasureByKey returns the measure with the exact key, or nil when the
// key is unknown. It never guesses a unit from the key's spelling.
func (d *Dictionary) MeasureByKey(key string) *Measure {
	return d.measuresByKey[key]
}

// DerivedByKey returns the derived metric with the exact key, or nil.
func (d *Dictionary) DerivedByKey(key string) *DerivedMetric {
	return d.derivedByKey[key]
}

// UnitForKey returns the declared unit of a measure key, defaulting to
// count for unknown keys rather than guessing from the key's text.
// Derived metric keys always render as percent.
func (d *Dictionary) UnitForKey(key string) Unit {
	if m := d.measuresByKey[key]; m != nil {
		return m.Unit
	}
	if d.derivedByKey[key] != nil {
		return UnitPercent
	}
	return UnitCount
}

// FindDimension resolves free text to a dimension using the canonical
// matching rule. Returns nil when nothing matches.
func (d *Dictionary) FindDimension(text string) *Dimension {
	norm := normalize.Text(text)
	if norm == "" {
		return nil
	}
	for i := range d.dimensions {
		if normalize.Text(d.dimensions[i].Key) == norm {
			return &d.dimensions[i]
		}
	}
	for i := range d.dimensions {
		if matchesSynonym(norm, d.dimensions[i].Synonyms) {
			return &d.dimensions[i]
		}
	}
	return nil
}

// FindMetricKey resolves free text to a measure or derived metric key
// using the canonical matching rule, scanning measures before derived
// metrics. Returns "" and false when nothing matches.
func (d *Dictionary) FindMetricKey(text string) (string, bool) {
	norm := normalize.Text(text)
	if norm == "" {
		return "", false
	}
	for i := range d.measures {
		if normalize.Text(d.measures[i].Key) == norm {
			return d.measures[i].Key, true
		}
	}
	for i := range d.derived {
		if normalize.Text(d.derived[i].Key) == norm {
			return d.derived[i].Key, true
		}
	}
	for i := range d.measures {
		if matchesSynonym(norm, d.measures[i].Synonyms) {
			return d.measures[i].Key, true
		}
	}
	for i := range d.derived {
		if matchesSynonym(norm, d.derived[i].Synonyms) {
			return d.derived[i].Key, true
		}
	}
	return "", false
}

// DimensionsMentioned returns every dimension whose synonym literally
// appears in the text, in declaration order. Used by the planner's
// group-by scan.
func (d *Dictionary) DimensionsMentioned(text string) []*Dimension {
	norm := normalize.Text(text)
	if norm == "" {
		return nil
	}
	var mentioned []*Dimension
	for i := range d.dimensions {
		if matchesSynonym(norm, d.dimensions[i].Synonyms) {
			mentioned = append(mentioned, &d.dimensions[i])
		}
	}
	return mentioned
}

// DisplayField returns the field the executor should group and report
// by for a dimension: the display key for id-typed dimensions, the
// dimension's own key otherwise.
func (d *Dictionary) DisplayField(dim *Dimension) string {
	if dim == nil {
		return ""
	}
	if dim.Type == DimID && dim.DisplayKey != "" {
		return dim.DisplayKey
	}
	return dim.Key
}

// matchesSynonym applies the asymmetric containment rule: the normalized
// query must contain the normalized synonym, never the reverse.
func matchesSynonym(normQuery string, synonyms []string) bool {
	for _, syn := range synonyms {
		s := normalize.Text(syn)
		if s != "" && strings.Contains(normQuery, s) {
			return true
		}
	}
	return false
}
