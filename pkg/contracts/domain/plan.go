package domain

// Operation is the kind of question a QueryPlan answers.
type Operation string

const (
	// OperationSingle returns a single aggregate (possibly grouped).
	OperationSingle Operation = "single"
	// OperationTrend returns aggregates ordered by quarter.
	OperationTrend Operation = "trend"
	// OperationTop returns the highest-ranked groups.
	OperationTop Operation = "top"
	// OperationBottom returns the lowest-ranked groups.
	OperationBottom Operation = "bottom"
)

// SortDirection controls ranking order for top/bottom operations.
type SortDirection string

const (
	SortDescending SortDirection = "desc"
	SortAscending  SortDirection = "asc"
)

// TimeWindowType identifies how the time window constrains records.
type TimeWindowType string

const (
	// WindowQuarter filters to one exact quarter (Value = "2025Q3").
	WindowQuarter TimeWindowType = "quarter"
	// WindowYear filters to all quarters of one year (Value = "2025").
	WindowYear TimeWindowType = "year"
	// WindowPeriod filters to a caller-supplied period label, matched
	// exactly against the quarter field.
	WindowPeriod TimeWindowType = "period"
	// WindowLatest filters to the most recent observed quarter.
	WindowLatest TimeWindowType = "latest"
	// WindowAll applies no time filter.
	WindowAll TimeWindowType = "all"
)

// TimeWindow is the time constraint of a QueryPlan.
type TimeWindow struct {
	Type  TimeWindowType `json:"type"`
	Value string         `json:"value,omitempty"`
}

// QueryPlan is the structured, executable representation of a parsed
// question. Exactly one metric per plan; GroupBy holds display field
// names in insertion order with no duplicates; Filters compose with OR
// within a dimension and AND across dimensions.
type QueryPlan struct {
	Metric        string              `json:"metric"`
	Operation     Operation           `json:"operation"`
	GroupBy       []string            `json:"group_by"`
	Filters       map[string][]string `json:"filters"`
	TimeWindow    TimeWindow          `json:"time_window"`
	TopN          int                 `json:"top_n,omitempty"`
	SortDirection SortDirection       `json:"sort_direction"`
}
