package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	return New(semantic.Default(), DefaultConfig(), nil)
}

func rec(quarter, costCenter string, revenue, expense, margin float64) domain.Record {
	return domain.Record{
		"Quarter":          quarter,
		"Scenario":         "Actual",
		"CostCenter":       costCenter,
		"TotalRevenue_$mm": revenue,
		"TotalExpense_$mm": expense,
		"Margin_$mm":       margin,
	}
}

func TestExecuteEmptyInput(t *testing.T) {
	e := newTestExecutor(t)

	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, nil)

	require.NotNil(t, result)
	assert.Empty(t, result.TopRows)
	assert.Equal(t, "No data available for this query.", result.AnswerText)
	assert.NotEmpty(t, result.Meta.PlanID)
}

func TestExecuteWeightedRatio(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q3", "Ops", 100, 75, 25),
		rec("2025Q3", "Ops", 80, 60, 20),
		rec("2025Q3", "Ops", 120, 90, 30),
	}
	plan := domain.QueryPlan{
		Metric:     "MarginPct",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	row := result.TopRows[0]
	// 75 / 300, exactly
	assert.InDelta(t, 0.25, row.Measures["MarginPct"], 1e-12)
	// supporting sums ride along for ratio metrics
	assert.InDelta(t, 75, row.Measures["Margin_$mm"], 1e-12)
	assert.InDelta(t, 300, row.Measures["TotalRevenue_$mm"], 1e-12)
	assert.Equal(t, 3, row.RecordCount)
}

func TestExecuteSumUsesAbsoluteValues(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q1", "Ops", 100, 0, 0),
		rec("2025Q1", "Ops", -50, 0, 0),
	}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	assert.InDelta(t, 150, result.TopRows[0].Measures["TotalRevenue_$mm"], 1e-12)
}

func TestExecuteWeightedAverage(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		{"Quarter": "2025Q1", "CostCenter": "Ops", "UtilizationPct": 0.8, "Headcount": 10},
		{"Quarter": "2025Q1", "CostCenter": "Ops", "UtilizationPct": 0.4, "Headcount": 30},
	}
	plan := domain.QueryPlan{
		Metric:     "UtilizationPct",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	// (0.8*10 + 0.4*30) / 40
	assert.InDelta(t, 0.5, result.TopRows[0].Measures["UtilizationPct"], 1e-12)
}

func TestExecuteZeroWeightYieldsZero(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		{"Quarter": "2025Q1", "UtilizationPct": 0.9, "Headcount": 0},
	}
	plan := domain.QueryPlan{
		Metric:     "UtilizationPct",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	assert.Zero(t, result.TopRows[0].Measures["UtilizationPct"])
}

func TestExecuteZeroDenominatorYieldsZero(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{rec("2025Q1", "Ops", 0, 0, 10)}
	plan := domain.QueryPlan{
		Metric:     "MarginPct",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	assert.Zero(t, result.TopRows[0].Measures["MarginPct"])
}

func TestExecuteTopRanking(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q3", "Ops", 100, 75, 25),
		rec("2025Q3", "Engineering", 200, 120, 80),
		rec("2025Q3", "Sales", 150, 120, 30),
		rec("2025Q2", "Ops", 500, 400, 100), // outside the window
	}
	plan := domain.QueryPlan{
		Metric:        "MarginPct",
		Operation:     domain.OperationTop,
		GroupBy:       []string{"CostCenter"},
		TimeWindow:    domain.TimeWindow{Type: domain.WindowQuarter, Value: "2025Q3"},
		TopN:          3,
		SortDirection: domain.SortDescending,
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 3)
	wantOrder := []string{"Engineering", "Ops", "Sales"}
	for i, row := range result.TopRows {
		assert.Equal(t, wantOrder[i], row.DimensionValues["CostCenter"])
		v := row.Measures["MarginPct"]
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, "2025Q3", result.Meta.TimeWindowUsed)
	assert.Contains(t, result.AnswerText, "Engineering")
	assert.Contains(t, result.AnswerText, "40.00%")
}

func TestExecuteBottomRanking(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q3", "Ops", 100, 75, 25),
		rec("2025Q3", "Engineering", 200, 120, 80),
	}
	plan := domain.QueryPlan{
		Metric:        "MarginPct",
		Operation:     domain.OperationBottom,
		GroupBy:       []string{"CostCenter"},
		TimeWindow:    domain.TimeWindow{Type: domain.WindowQuarter, Value: "2025Q3"},
		TopN:          10,
		SortDirection: domain.SortAscending,
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 2)
	assert.Equal(t, "Ops", result.TopRows[0].DimensionValues["CostCenter"])
	assert.Contains(t, result.AnswerText, "Lowest")
}

func TestExecuteThinDenominatorPushedDown(t *testing.T) {
	e := New(semantic.Default(), Config{MinRatioDenominator: 1.0}, nil)

	records := []domain.Record{
		rec("2025Q3", "Ops", 100, 75, 25),        // 25% on real activity
		rec("2025Q3", "Shell", 0.5, 0.05, 0.45),  // 90% on near-zero revenue
		rec("2025Q3", "Engineering", 200, 120, 80),
	}
	plan := domain.QueryPlan{
		Metric:        "MarginPct",
		Operation:     domain.OperationTop,
		GroupBy:       []string{"CostCenter"},
		TimeWindow:    domain.TimeWindow{Type: domain.WindowQuarter, Value: "2025Q3"},
		TopN:          10,
		SortDirection: domain.SortDescending,
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 3)
	// Shell's 90% ratio ranks last: its denominator is below threshold
	assert.Equal(t, "Shell", result.TopRows[2].DimensionValues["CostCenter"])
	assert.Equal(t, "Engineering", result.TopRows[0].DimensionValues["CostCenter"])
}

func TestExecuteLatestWindow(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q1", "Ops", 100, 80, 20),
		rec("2025Q2", "Ops", 200, 150, 50),
	}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowLatest},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	assert.InDelta(t, 200, result.TopRows[0].Measures["TotalRevenue_$mm"], 1e-12)
	assert.Equal(t, "2025Q2 (latest)", result.Meta.TimeWindowUsed)
}

func TestExecuteYearWindow(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2024Q4", "Ops", 100, 80, 20),
		rec("2025Q1", "Ops", 200, 150, 50),
		rec("2025Q2", "Ops", 300, 200, 100),
	}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowYear, Value: "2025"},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	assert.InDelta(t, 500, result.TopRows[0].Measures["TotalRevenue_$mm"], 1e-12)
}

func TestExecuteDimensionFilters(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q1", "Ops", 100, 80, 20),
		rec("2025Q1", "Engineering", 400, 300, 100),
	}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		Filters:    map[string][]string{"CostCenter": {"ops"}}, // case-insensitive
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	assert.InDelta(t, 100, result.TopRows[0].Measures["TotalRevenue_$mm"], 1e-12)
	assert.Equal(t, []string{"ops"}, result.Meta.FiltersUsed["CostCenter"])
}

func TestExecuteTrendOrdersByQuarter(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q3", "Ops", 300, 200, 100),
		rec("2025Q1", "Ops", 100, 80, 20),
		rec("2025Q2", "Ops", 200, 150, 50),
	}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationTrend,
		GroupBy:    []string{"Quarter"},
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 3)
	quarters := make([]string, 0, 3)
	for _, row := range result.TopRows {
		quarters = append(quarters, row.DimensionValues["Quarter"])
	}
	assert.Equal(t, []string{"2025Q1", "2025Q2", "2025Q3"}, quarters)
	assert.Contains(t, result.AnswerText, "from $100.00M in 2025Q1 to $300.00M in 2025Q3")
}

func TestExecuteUnknownMetric(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{rec("2025Q1", "Ops", 100, 80, 20)}
	plan := domain.QueryPlan{
		Metric:     "InvalidMetric",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	// absent, not zero
	assert.NotContains(t, result.TopRows[0].Measures, "InvalidMetric")
	assert.Contains(t, result.Meta.Aggregation, "unknown metric")
}

func TestExecuteDerivedMetric(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{
		rec("2025Q1", "Ops", 100, 80, 20),
		rec("2025Q1", "Ops", 100, 70, 30),
	}
	plan := domain.QueryPlan{
		Metric:     "ExpenseRatio",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	require.Len(t, result.TopRows, 1)
	row := result.TopRows[0]
	// 150 / 200
	assert.InDelta(t, 0.75, row.Measures["ExpenseRatio"], 1e-12)
	assert.InDelta(t, 150, row.Measures["TotalExpense_$mm"], 1e-12)
	assert.InDelta(t, 200, row.Measures["TotalRevenue_$mm"], 1e-12)
	assert.Equal(t, "percent", result.Meta.Metric.Unit)
	assert.True(t, result.Meta.Metric.Derived)
}

func TestExecuteAnswerTextSingle(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{rec("2025Q1", "Ops", 100, 80, 20)}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		TimeWindow: domain.TimeWindow{Type: domain.WindowQuarter, Value: "2025Q1"},
	}
	result := e.Execute(context.Background(), plan, records)

	assert.Equal(t, "Total Revenue is $100.00M for 2025Q1.", result.AnswerText)
}

func TestExecuteFiltersToNothing(t *testing.T) {
	e := newTestExecutor(t)

	records := []domain.Record{rec("2025Q1", "Ops", 100, 80, 20)}
	plan := domain.QueryPlan{
		Metric:     "TotalRevenue_$mm",
		Operation:  domain.OperationSingle,
		Filters:    map[string][]string{"CostCenter": {"Nonexistent"}},
		TimeWindow: domain.TimeWindow{Type: domain.WindowAll},
	}
	result := e.Execute(context.Background(), plan, records)

	assert.Empty(t, result.TopRows)
	assert.Equal(t, "No data available for this query.", result.AnswerText)
}
