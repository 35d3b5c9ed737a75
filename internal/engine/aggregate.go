package engine

import (
	"fmt"
	"math"
	"sort"

	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

// resolvedMetric is the executor's snapshot of a plan's metric. Unknown
// keys resolve to a zero value with known=false; aggregation then yields
// an empty measure map, treated as absent rather than zero.
type resolvedMetric struct {
	key         string
	unit        semantic.Unit
	kind        semantic.AggregationKind
	weightBy    string
	numerator   string
	denominator string
	known       bool
	derived     bool
}

// resolveMetric looks the plan's metric up by exact key, first among
// measures, then derived metrics. No fuzzy lookup happens here.
func (e *Executor) resolveMetric(key string) resolvedMetric {
	if m := e.dict.MeasureByKey(key); m != nil {
		return resolvedMetric{
			key:         m.Key,
			unit:        m.Unit,
			kind:        m.Aggregation,
			weightBy:    m.WeightBy,
			numerator:   m.Numerator,
			denominator: m.Denominator,
			known:       true,
		}
	}
	if dm := e.dict.DerivedByKey(key); dm != nil {
		return resolvedMetric{
			key:         dm.Key,
			unit:        semantic.UnitPercent,
			kind:        semantic.AggRatio,
			numerator:   dm.Numerator,
			denominator: dm.Denominator,
			known:       true,
			derived:     true,
		}
	}
	return resolvedMetric{key: key}
}

// isRatioFamily reports whether the metric aggregates as a ratio of two
// supporting sums.
func (m resolvedMetric) isRatioFamily() bool {
	return m.known && (m.kind == semantic.AggWeightedRatio || m.kind == semantic.AggRatio)
}

// definition converts the resolved metric to its contract snapshot.
func (m resolvedMetric) definition() domain.MetricDefinition {
	if !m.known {
		return domain.MetricDefinition{Key: m.key}
	}
	return domain.MetricDefinition{
		Key:         m.key,
		Unit:        string(m.unit),
		Aggregation: m.kind.String(),
		WeightBy:    m.weightBy,
		Numerator:   m.numerator,
		Denominator: m.denominator,
		Derived:     m.derived,
	}
}

// describe returns the human-readable aggregation description carried on
// result metadata.
func (m resolvedMetric) describe() string {
	if !m.known {
		return fmt.Sprintf("unknown metric %q", m.key)
	}
	switch m.kind {
	case semantic.AggSum:
		return fmt.Sprintf("sum of absolute %s values", m.key)
	case semantic.AggWeightedAvg:
		return fmt.Sprintf("average of %s weighted by %s", m.key, m.weightBy)
	case semantic.AggWeightedRatio, semantic.AggRatio:
		return fmt.Sprintf("sum(|%s|) / sum(|%s|)", m.numerator, m.denominator)
	default:
		return m.kind.String()
	}
}

// aggregateGroups computes one AggregatedRow per group. The primary
// metric's aggregate is keyed by the plan's metric; ratio-family metrics
// additionally carry their supporting numerator and denominator sums.
func aggregateGroups(groups []recordGroup, metric resolvedMetric) []domain.AggregatedRow {
	rows := make([]domain.AggregatedRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.AggregatedRow{
			DimensionValues: g.values,
			Measures:        aggregateFor(g.records, metric),
			RecordCount:     len(g.records),
		})
	}
	return rows
}

// aggregateFor computes the measure map for one group under the given
// metric. Aggregation family is selected by the declared kind, matched
// exhaustively; unit spelling is never consulted.
func aggregateFor(records []domain.Record, metric resolvedMetric) map[string]float64 {
	measures := make(map[string]float64)
	if !metric.known {
		return measures
	}

	switch metric.kind {
	case semantic.AggSum:
		var total float64
		for _, rec := range records {
			// deficits and credits are reported as magnitudes
			total += math.Abs(rec.Number(metric.key))
		}
		measures[metric.key] = total

	case semantic.AggWeightedAvg:
		var weighted, weight float64
		for _, rec := range records {
			w := rec.Number(metric.weightBy)
			weighted += rec.Number(metric.key) * w
			weight += w
		}
		if weight == 0 {
			measures[metric.key] = 0
		} else {
			measures[metric.key] = weighted / weight
		}

	case semantic.AggWeightedRatio, semantic.AggRatio:
		var num, den float64
		for _, rec := range records {
			num += math.Abs(rec.Number(metric.numerator))
			den += math.Abs(rec.Number(metric.denominator))
		}
		ratio := 0.0
		if den != 0 {
			ratio = num / den
		}
		measures[metric.key] = ratio
		measures[metric.numerator] = num
		measures[metric.denominator] = den
	}

	return measures
}

// rankRows orders rows by the primary metric. Rows whose metric is
// absent or NaN sort last; for ratio-family metrics, rows whose
// supporting denominator sum is below the minimum-activity threshold are
// pushed below every healthy row regardless of their computed ratio.
// Ties keep grouping order.
func (e *Executor) rankRows(rows []domain.AggregatedRow, metric resolvedMetric, direction domain.SortDirection) {
	priority := func(row domain.AggregatedRow) int {
		v, ok := row.Measures[metric.key]
		if !ok || math.IsNaN(v) {
			return 2
		}
		if metric.isRatioFamily() && e.minRatioDenominator > 0 {
			if row.Measures[metric.denominator] < e.minRatioDenominator {
				return 1
			}
		}
		return 0
	}

	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := priority(rows[i]), priority(rows[j])
		if pi != pj {
			return pi < pj
		}
		if pi != 0 {
			return false
		}
		vi, vj := rows[i].Measures[metric.key], rows[j].Measures[metric.key]
		if direction == domain.SortAscending {
			return vi < vj
		}
		return vi > vj
	})
}
