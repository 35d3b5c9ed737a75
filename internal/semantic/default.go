package semantic

// Default returns the standard financial reporting catalog. The catalog
// is declaration-order sensitive: natural-language lookup resolves ties
// by first match, so more specific entries come first.
func Default() *Dictionary {
	dims := []Dimension{
		{Key: "Quarter", Type: DimTime, Synonyms: []string{"quarter", "qtr"}},
		{Key: "Scenario", Type: DimScenario, Synonyms: []string{"scenario"}},
		{Key: "CostCenterID", Type: DimID, DisplayKey: "CostCenter"},
		{Key: "CostCenter", Type: DimName, Synonyms: []string{"cost center", "costcenter", "department", "dept"}},
		{Key: "ProductID", Type: DimID, DisplayKey: "Product"},
		{Key: "Product", Type: DimName, Synonyms: []string{"product line", "product"}},
		{Key: "Region", Type: DimName, Synonyms: []string{"region", "geography", "geo"}},
	}

	measures := []Measure{
		{
			Key:      "TotalRevenue_$mm",
			Unit:     UnitUSDMM,
			Synonyms: []string{"total revenue", "revenue", "sales", "income"},
		},
		{
			Key:      "TotalExpense_$mm",
			Unit:     UnitUSDMM,
			Synonyms: []string{"total expense", "expenses", "expense", "costs", "spend", "opex"},
		},
		{
			Key:      "Margin_$mm",
			Unit:     UnitUSDMM,
			Synonyms: []string{"margin dollars", "margin amount"},
		},
		{
			Key:         "MarginPct",
			Unit:        UnitPercent,
			Aggregation: AggWeightedRatio,
			Numerator:   "Margin_$mm",
			Denominator: "TotalRevenue_$mm",
			Synonyms:    []string{"margin percent", "margin rate", "profitability"},
		},
		{
			Key:      "Headcount",
			Unit:     UnitCount,
			Synonyms: []string{"headcount", "head count", "employees", "fte", "staff"},
		},
		{
			Key:         "UtilizationPct",
			Unit:        UnitPercent,
			Aggregation: AggWeightedAvg,
			WeightBy:    "Headcount",
			Synonyms:    []string{"utilization", "utilisation"},
		},
	}

	derived := []DerivedMetric{
		{
			Key:         "ExpenseRatio",
			Numerator:   "TotalExpense_$mm",
			Denominator: "TotalRevenue_$mm",
			Synonyms:    []string{"expense ratio", "cost ratio", "expense to revenue"},
		},
	}

	d, err := New(dims, measures, derived)
	if err != nil {
		// The default catalog is compiled-in configuration; an invalid
		// catalog is a programming error.
		panic(err)
	}
	return d
}
