package engine

import (
	"fmt"
	"strings"

	"finquery/internal/format"
	"finquery/pkg/contracts/domain"
)

// noDataAnswer is the fixed answer for empty output. It is a contract:
// the narration collaborator echoes it verbatim.
const noDataAnswer = "No data available for this query."

// buildAnswer constructs the literal, non-generative answer string from
// the first result row. Downstream narration may rephrase around it but
// must not alter any value in it.
func (e *Executor) buildAnswer(plan domain.QueryPlan, meta domain.ResultMeta, rows []domain.AggregatedRow, metric resolvedMetric, timeField string) string {
	if len(rows) == 0 {
		return noDataAnswer
	}

	first := rows[0]
	label := format.MetricLabel(metric.key)
	value := formatRowValue(first, metric)
	group := groupLabel(first, plan.GroupBy)
	window := meta.TimeWindowUsed

	switch plan.Operation {
	case domain.OperationTop:
		if group == "" {
			return fmt.Sprintf("Highest %s: %s (%s).", label, value, window)
		}
		return fmt.Sprintf("Highest %s: %s at %s (%s).", label, group, value, window)

	case domain.OperationBottom:
		if group == "" {
			return fmt.Sprintf("Lowest %s: %s (%s).", label, value, window)
		}
		return fmt.Sprintf("Lowest %s: %s at %s (%s).", label, group, value, window)

	case domain.OperationTrend:
		last := rows[len(rows)-1]
		if len(rows) == 1 {
			return fmt.Sprintf("%s was %s in %s.", label, value, first.DimensionValues[timeField])
		}
		return fmt.Sprintf("%s moved from %s in %s to %s in %s across %d quarters.",
			label,
			value, first.DimensionValues[timeField],
			formatRowValue(last, metric), last.DimensionValues[timeField],
			len(rows))

	default:
		if group == "" {
			return fmt.Sprintf("%s is %s for %s.", label, value, window)
		}
		return fmt.Sprintf("%s for %s: %s (%s).", label, group, value, window)
	}
}

// formatRowValue renders the row's primary metric, or "N/A" when the
// aggregate is absent.
func formatRowValue(row domain.AggregatedRow, metric resolvedMetric) string {
	v, ok := row.Measures[metric.key]
	if !ok {
		return "N/A"
	}
	return format.MetricValue(v, metric.unit)
}

// groupLabel joins the row's group-by values in plan order.
func groupLabel(row domain.AggregatedRow, groupBy []string) string {
	var parts []string
	for _, field := range groupBy {
		if v := row.DimensionValues[field]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}
