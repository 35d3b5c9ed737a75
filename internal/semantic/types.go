package semantic

// Unit is the declared unit of a measure. Aggregation behavior and
// rendering are always driven by the unit, never inferred from a key's
// spelling.
type Unit string

const (
	// UnitUSDMM is US dollars already expressed in millions.
	UnitUSDMM Unit = "usd_mm"
	// UnitPercent is a decimal ratio in [0,1].
	UnitPercent Unit = "percent"
	// UnitCount is a plain count.
	UnitCount Unit = "count"
)

// AggregationKind is the closed set of aggregation families. Switches
// over it are exhaustive so adding a kind is a compile-time decision.
type AggregationKind int

const (
	// AggSum sums absolute values across a group.
	AggSum AggregationKind = iota
	// AggWeightedAvg computes sum(value*weight)/sum(weight).
	AggWeightedAvg
	// AggWeightedRatio computes sum(|numerator|)/sum(|denominator|).
	AggWeightedRatio
	// AggRatio is a derived metric ratio of two sum measures.
	AggRatio
)

// String returns the string representation of the aggregation kind.
func (k AggregationKind) String() string {
	switch k {
	case AggSum:
		return "sum"
	case AggWeightedAvg:
		return "weighted_avg"
	case AggWeightedRatio:
		return "weighted_ratio"
	case AggRatio:
		return "ratio"
	default:
		return "unknown"
	}
}

// DimensionType classifies a dimension for planning purposes.
type DimensionType string

const (
	// DimTime marks the quarter dimension.
	DimTime DimensionType = "time"
	// DimScenario marks planning scenarios such as Actual or Budget.
	DimScenario DimensionType = "scenario"
	// DimID marks surrogate-key dimensions that display through a name
	// dimension.
	DimID DimensionType = "id"
	// DimName marks human-readable grouping dimensions.
	DimName DimensionType = "name"
)

// Dimension describes one groupable/filterable field of the model.
type Dimension struct {
	Key        string        `validate:"required"`
	Type       DimensionType `validate:"required,oneof=time scenario id name"`
	DisplayKey string
	Synonyms   []string
}

// Measure describes one numeric fact field with its unit and aggregation
// rule. WeightBy is required iff Aggregation is AggWeightedAvg;
// Numerator and Denominator are required iff Aggregation is
// AggWeightedRatio and must name sum-aggregated measures.
type Measure struct {
	Key         string `validate:"required"`
	Unit        Unit   `validate:"required,oneof=usd_mm percent count"`
	Aggregation AggregationKind
	WeightBy    string
	Numerator   string
	Denominator string
	Synonyms    []string
}

// DerivedMetric is a ratio computed on demand from two existing
// sum-aggregated measures. It is always rendered as percent.
type DerivedMetric struct {
	Key         string `validate:"required"`
	Numerator   string `validate:"required"`
	Denominator string `validate:"required"`
	Synonyms    []string
}
