package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"finquery/internal/semantic"
)

func TestMetricValue(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  semantic.Unit
		want  string
	}{
		// stored dollar values are already in millions; no division ever
		{name: "usd mm", value: 25.5, unit: semantic.UnitUSDMM, want: "$25.50M"},
		{name: "usd mm large", value: 1234.5, unit: semantic.UnitUSDMM, want: "$1234.50M"},
		{name: "usd mm zero", value: 0, unit: semantic.UnitUSDMM, want: "$0.00M"},
		{name: "percent scales once", value: 0.25, unit: semantic.UnitPercent, want: "25.00%"},
		{name: "percent full", value: 1, unit: semantic.UnitPercent, want: "100.00%"},
		{name: "percent zero", value: 0, unit: semantic.UnitPercent, want: "0.00%"},
		{name: "count rounds", value: 2.6, unit: semantic.UnitCount, want: "3"},
		{name: "count rounds down", value: 2.4, unit: semantic.UnitCount, want: "2"},
		{name: "nan", value: math.NaN(), unit: semantic.UnitUSDMM, want: "N/A"},
		{name: "infinity", value: math.Inf(1), unit: semantic.UnitPercent, want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MetricValue(tt.value, tt.unit))
		})
	}
}

func TestMetricLabel(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "known revenue", key: "TotalRevenue_$mm", want: "Total Revenue"},
		{name: "known margin pct", key: "MarginPct", want: "Margin %"},
		{name: "known derived", key: "ExpenseRatio", want: "Expense Ratio"},
		{name: "unknown dollar suffix stripped", key: "NetIncome_$mm", want: "NetIncome"},
		{name: "unknown pct suffix stripped", key: "ChurnPct", want: "Churn"},
		{name: "unknown underscores spaced", key: "Some_Field", want: "Some Field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MetricLabel(tt.key))
		})
	}
}
