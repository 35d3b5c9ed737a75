// Package format renders aggregate values for display. Rendering is
// driven entirely by the declared unit of a measure, never by the
// spelling of its key.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"finquery/internal/semantic"
)

// metricLabels maps known metric keys to display labels.
var metricLabels = map[string]string{
	"TotalRevenue_$mm": "Total Revenue",
	"TotalExpense_$mm": "Total Expense",
	"Margin_$mm":       "Margin",
	"MarginPct":        "Margin %",
	"Headcount":        "Headcount",
	"UtilizationPct":   "Utilization %",
	"ExpenseRatio":     "Expense Ratio",
}

// MetricValue converts an aggregate value to its display string.
//
// Percent values are assumed to already be decimals in [0,1] and are
// scaled to 0-100 here and only here. Dollar values are stored already
// expressed in millions and are never divided. NaN and infinities render
// as "N/A".
func MetricValue(value float64, unit semantic.Unit) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "N/A"
	}
	switch unit {
	case semantic.UnitPercent:
		return fmt.Sprintf("%.2f%%", value*100)
	case semantic.UnitUSDMM:
		return fmt.Sprintf("$%.2fM", value)
	case semantic.UnitCount:
		return strconv.FormatInt(int64(math.Round(value)), 10)
	default:
		return strconv.FormatFloat(value, 'f', 2, 64)
	}
}

// MetricLabel returns the display label for a metric key. Unknown keys
// fall back to the raw key with unit-indicating suffixes stripped.
func MetricLabel(key string) string {
	if label, ok := metricLabels[key]; ok {
		return label
	}
	label := key
	for _, suffix := range []string{"_$mm", "_pct", "Pct", "_%"} {
		label = strings.TrimSuffix(label, suffix)
	}
	return strings.ReplaceAll(label, "_", " ")
}
