package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finquery/internal/dataset"
	"finquery/internal/engine"
	"finquery/internal/planner"
	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

// Full pipeline: question -> plan -> execution over an in-memory record
// set, the way cmd/finquery wires the packages together.
func TestQuestionToRankedAggregates(t *testing.T) {
	dict := semantic.Default()
	ctx := context.Background()

	records := []domain.Record{
		{"Quarter": "2025Q3", "Scenario": "Actual", "CostCenter": "Engineering", "TotalRevenue_$mm": 200.0, "Margin_$mm": 80.0},
		{"Quarter": "2025Q3", "Scenario": "Actual", "CostCenter": "Operations", "TotalRevenue_$mm": 100.0, "Margin_$mm": 25.0},
		{"Quarter": "2025Q3", "Scenario": "Actual", "CostCenter": "Sales", "TotalRevenue_$mm": 150.0, "Margin_$mm": 30.0},
		{"Quarter": "2025Q2", "Scenario": "Actual", "CostCenter": "Engineering", "TotalRevenue_$mm": 500.0, "Margin_$mm": 10.0},
	}
	meta := dataset.BuildMetadata(records, dict)

	plan := planner.New(dict, planner.Config{}, nil).
		Plan(ctx, "Top 3 cost centers by margin % in 2025Q3", "", meta)

	require.Equal(t, "MarginPct", plan.Metric)
	require.Equal(t, domain.OperationTop, plan.Operation)
	require.Equal(t, 3, plan.TopN)
	require.Equal(t, domain.TimeWindow{Type: domain.WindowQuarter, Value: "2025Q3"}, plan.TimeWindow)
	require.Contains(t, plan.GroupBy, "CostCenter")

	result := engine.New(dict, engine.DefaultConfig(), nil).Execute(ctx, plan, records)

	require.Len(t, result.TopRows, 3)
	for _, row := range result.TopRows {
		assert.NotEmpty(t, row.DimensionValues["CostCenter"])
		v, ok := row.Measures["MarginPct"]
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, "Engineering", result.TopRows[0].DimensionValues["CostCenter"])
	assert.Equal(t, "2025Q3", result.Meta.TimeWindowUsed)
	assert.Contains(t, result.AnswerText, "Highest Margin %")
}
