package domain

// AggregatedRow is one group's aggregate output. Measures always contains
// the plan's primary metric when its definition is known; ratio-family
// metrics additionally carry their supporting numerator and denominator
// sums so consumers can show the basis for the ratio.
type AggregatedRow struct {
	DimensionValues map[string]string  `json:"dimension_values"`
	Measures        map[string]float64 `json:"measures"`
	RecordCount     int                `json:"record_count"`
}

// MetricDefinition is a read-only snapshot of the resolved measure or
// derived metric a plan aggregated, carried on ResultMeta so downstream
// consumers never re-resolve keys themselves.
type MetricDefinition struct {
	Key         string `json:"key"`
	Unit        string `json:"unit"`
	Aggregation string `json:"aggregation"`
	WeightBy    string `json:"weight_by,omitempty"`
	Numerator   string `json:"numerator,omitempty"`
	Denominator string `json:"denominator,omitempty"`
	Derived     bool   `json:"derived"`
}

// ResultMeta describes what the executor actually applied, as opposed to
// what the plan requested. The narration collaborator must echo
// TimeWindowUsed and FiltersUsed verbatim.
type ResultMeta struct {
	PlanID         string              `json:"plan_id"`
	FiltersUsed    map[string][]string `json:"filters_used"`
	TimeWindowUsed string              `json:"time_window_used"`
	Aggregation    string              `json:"aggregation"`
	Metric         MetricDefinition    `json:"metric"`
}

// ExecutionResult is the engine's complete output for one question.
// AnswerText is literal and deterministic; the narration collaborator may
// only reference values appearing in TopRows and Meta.
type ExecutionResult struct {
	Plan       QueryPlan       `json:"plan"`
	Meta       ResultMeta      `json:"meta"`
	TopRows    []AggregatedRow `json:"top_rows"`
	AnswerText string          `json:"answer_text"`
}
