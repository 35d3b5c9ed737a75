package semantic

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// validate enforces the catalog invariants that individual struct tags
// cannot express: display-key references, unit/aggregation pairing, and
// ratio operand integrity.
func (d *Dictionary) validate() error {
	dimsByKey := make(map[string]*Dimension, len(d.dimensions))
	for i := range d.dimensions {
		dim := &d.dimensions[i]
		if err := structValidator.Struct(dim); err != nil {
			return fmt.Errorf("dimension %q: %w", dim.Key, err)
		}
		if _, dup := dimsByKey[dim.Key]; dup {
			return fmt.Errorf("dimension %q: duplicate key", dim.Key)
		}
		dimsByKey[dim.Key] = dim
	}

	for _, dim := range d.dimensions {
		if dim.Type != DimID {
			continue
		}
		if dim.DisplayKey == "" {
			return fmt.Errorf("dimension %q: id dimension requires a display key", dim.Key)
		}
		target, ok := dimsByKey[dim.DisplayKey]
		if !ok || target.Type != DimName {
			return fmt.Errorf("dimension %q: display key %q must reference an existing name dimension", dim.Key, dim.DisplayKey)
		}
	}

	for i := range d.measures {
		if err := d.validateMeasure(&d.measures[i]); err != nil {
			return err
		}
	}

	for i := range d.derived {
		dm := &d.derived[i]
		if err := structValidator.Struct(dm); err != nil {
			return fmt.Errorf("derived metric %q: %w", dm.Key, err)
		}
		if err := d.validateRatioOperands(dm.Key, dm.Numerator, dm.Denominator); err != nil {
			return err
		}
	}

	return nil
}

func (d *Dictionary) validateMeasure(m *Measure) error {
	if err := structValidator.Struct(m); err != nil {
		return fmt.Errorf("measure %q: %w", m.Key, err)
	}

	// The unit strictly determines the permissible aggregation family:
	// usd_mm and count measures are always summed, percent measures are
	// always weighted.
	switch m.Unit {
	case UnitUSDMM, UnitCount:
		if m.Aggregation != AggSum {
			return fmt.Errorf("measure %q: unit %s requires sum aggregation, got %s", m.Key, m.Unit, m.Aggregation)
		}
	case UnitPercent:
		if m.Aggregation != AggWeightedAvg && m.Aggregation != AggWeightedRatio {
			return fmt.Errorf("measure %q: percent unit requires weighted aggregation, got %s", m.Key, m.Aggregation)
		}
	}

	switch m.Aggregation {
	case AggSum:
		if m.WeightBy != "" || m.Numerator != "" || m.Denominator != "" {
			return fmt.Errorf("measure %q: sum aggregation takes no weight or ratio operands", m.Key)
		}
	case AggWeightedAvg:
		if m.WeightBy == "" {
			return fmt.Errorf("measure %q: weighted_avg requires a weight field", m.Key)
		}
		if w := d.measuresByKey[m.WeightBy]; w == nil {
			return fmt.Errorf("measure %q: weight field %q is not a declared measure", m.Key, m.WeightBy)
		}
	case AggWeightedRatio:
		if err := d.validateRatioOperands(m.Key, m.Numerator, m.Denominator); err != nil {
			return err
		}
	case AggRatio:
		return fmt.Errorf("measure %q: ratio aggregation is reserved for derived metrics", m.Key)
	}
	return nil
}

func (d *Dictionary) validateRatioOperands(key, numerator, denominator string) error {
	if numerator == "" || denominator == "" {
		return fmt.Errorf("metric %q: ratio requires both numerator and denominator", key)
	}
	for _, operand := range []string{numerator, denominator} {
		m := d.measuresByKey[operand]
		if m == nil {
			return fmt.Errorf("metric %q: ratio operand %q is not a declared measure", key, operand)
		}
		if m.Aggregation != AggSum {
			return fmt.Errorf("metric %q: ratio operand %q must be sum-aggregated", key, operand)
		}
	}
	return nil
}
