// Package planner converts a free-text business question into a
// structured QueryPlan against the semantic dictionary. Planning is
// deterministic: identical inputs always produce structurally identical
// plans, and ambiguous text degrades to an ungrouped, unfiltered plan
// rather than failing.
package planner

import (
	"context"
	"log/slog"
	"strings"

	"finquery/internal/normalize"
	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

// Keyword sets for operation and time-window detection. Matching runs on
// normalized text, so multi-word phrases collapse to their compact form.
var (
	trendKeywords  = []string{"trend", "over time", "trajectory", "evolution", "quarter over quarter"}
	topKeywords    = []string{"top", "best", "highest", "largest", "biggest", "leading"}
	bottomKeywords = []string{"bottom", "worst", "lowest", "least"}
	latestKeywords = []string{"latest", "most recent", "current"}
	allKeywords    = []string{"all", "every"}

	revenueKeywords = []string{"revenue", "sales", "income", "top line"}
	expenseKeywords = []string{"expense", "cost", "spend", "opex", "burn"}
)

// Margin disambiguation signals are matched against the raw lowercased
// question because normalization strips the very characters ("%", "$")
// that carry the signal.
var (
	percentSignals = []string{"%", "percent", "pct"}
	dollarSignals  = []string{"$", "dollar", "amount", "mm"}
)

const (
	marginPercentKey = "MarginPct"
	marginDollarKey  = "Margin_$mm"
	revenueKey       = "TotalRevenue_$mm"
	expenseKey       = "TotalExpense_$mm"
)

// maxLiteralTopN is the largest integer token accepted as a "top N"
// count; larger tokens are year literals, not counts.
const maxLiteralTopN = 100

// Config holds planner defaults sourced from configuration.
type Config struct {
	DefaultMetric string
	DefaultTopN   int
}

// Planner builds query plans from questions. It holds only read-only
// state and is safe for concurrent use.
type Planner struct {
	dict          *semantic.Dictionary
	defaultMetric string
	defaultTopN   int
	logger        *slog.Logger
}

// New creates a planner over the given dictionary.
func New(dict *semantic.Dictionary, cfg Config, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultMetric == "" {
		cfg.DefaultMetric = revenueKey
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 10
	}
	return &Planner{
		dict:          dict,
		defaultMetric: cfg.DefaultMetric,
		defaultTopN:   cfg.DefaultTopN,
		logger:        logger,
	}
}

// Plan builds a QueryPlan from a question, an optional externally
// selected quarter, and optional dataset metadata used for filter
// inference and nothing else.
func (p *Planner) Plan(ctx context.Context, question, selectedQuarter string, meta *domain.DatasetMetadata) domain.QueryPlan {
	plan := domain.QueryPlan{
		Metric:        p.selectMetric(question),
		SortDirection: domain.SortDescending,
	}

	plan.Operation, plan.TopN = p.detectOperation(question)
	if plan.Operation == domain.OperationBottom {
		plan.SortDirection = domain.SortAscending
	}

	plan.GroupBy = p.detectGroupBy(question, plan.Operation)
	plan.TimeWindow = p.resolveTimeWindow(question, selectedQuarter)
	plan.Filters = p.inferFilters(question, meta)

	p.logger.DebugContext(ctx, "built query plan",
		slog.String("metric", plan.Metric),
		slog.String("operation", string(plan.Operation)),
		slog.Any("group_by", plan.GroupBy),
		slog.String("time_window", string(plan.TimeWindow.Type)),
		slog.Int("top_n", plan.TopN),
	)
	return plan
}

// selectMetric resolves exactly one metric key. "margin" is the single
// most ambiguous term in the vocabulary and is pulled out of generic
// synonym matching: unit signals in the question pick between the
// percent and dollar margin metrics, and absence of any signal means the
// percent metric, the conventional reading in financial reporting.
func (p *Planner) selectMetric(question string) string {
	raw := strings.ToLower(question)

	if strings.Contains(raw, "margin") {
		if containsRaw(raw, percentSignals) {
			return marginPercentKey
		}
		if containsRaw(raw, dollarSignals) {
			return marginDollarKey
		}
		return marginPercentKey
	}

	if key, ok := p.dict.FindMetricKey(question); ok {
		return key
	}
	if normalize.ContainsAny(question, revenueKeywords) {
		return revenueKey
	}
	if normalize.ContainsAny(question, expenseKeywords) {
		return expenseKey
	}
	return p.defaultMetric
}

func (p *Planner) detectOperation(question string) (domain.Operation, int) {
	switch {
	case normalize.ContainsAny(question, trendKeywords):
		return domain.OperationTrend, 0
	case normalize.ContainsAny(question, topKeywords):
		return domain.OperationTop, p.literalTopN(question)
	case normalize.ContainsAny(question, bottomKeywords):
		return domain.OperationBottom, p.literalTopN(question)
	default:
		return domain.OperationSingle, 0
	}
}

// literalTopN returns an explicit count from the question, or the
// configured default. Integer tokens above maxLiteralTopN are year
// literals and never counts.
func (p *Planner) literalTopN(question string) int {
	if n, ok := normalize.ExtractNumber(question); ok && n > 0 && n <= maxLiteralTopN {
		return n
	}
	return p.defaultTopN
}

// detectGroupBy resolves grouping fields in three passes: the explicit
// "by X"/"per X" phrase, then literal dimension mentions anywhere in the
// question, then (for rankings that still have no grouping) a rescan
// restricted to name dimensions including their keys.
func (p *Planner) detectGroupBy(question string, op domain.Operation) []string {
	var groupBy []string
	seen := make(map[string]bool)
	add := func(field string) {
		if field != "" && !seen[field] {
			seen[field] = true
			groupBy = append(groupBy, field)
		}
	}

	if phrase, ok := normalize.ExtractGroupBy(question); ok {
		if dim := p.dict.FindDimension(phrase); dim != nil {
			add(p.dict.DisplayField(dim))
		}
	}

	for _, dim := range p.dict.DimensionsMentioned(question) {
		switch dim.Type {
		case semantic.DimName, semantic.DimTime, semantic.DimScenario:
			add(p.dict.DisplayField(dim))
		}
	}

	if op == domain.OperationTrend {
		add(p.timeField())
	}

	if (op == domain.OperationTop || op == domain.OperationBottom) && len(groupBy) == 0 {
		norm := normalize.Text(question)
		for _, dim := range p.dict.Dimensions() {
			if dim.Type != semantic.DimName {
				continue
			}
			if strings.Contains(norm, normalize.Text(dim.Key)) {
				add(dim.Key)
			}
		}
	}

	return groupBy
}

// timeField returns the display field of the first time dimension.
func (p *Planner) timeField() string {
	for _, dim := range p.dict.Dimensions() {
		if dim.Type == semantic.DimTime {
			return dim.Key
		}
	}
	return ""
}

// resolveTimeWindow applies the priority order: quarter literal > year
// literal > latest keyword > all keyword > externally selected quarter >
// latest.
func (p *Planner) resolveTimeWindow(question, selectedQuarter string) domain.TimeWindow {
	if q, ok := normalize.ExtractQuarter(question); ok {
		return domain.TimeWindow{Type: domain.WindowQuarter, Value: q}
	}
	if y, ok := normalize.ExtractYear(question); ok {
		return domain.TimeWindow{Type: domain.WindowYear, Value: y}
	}
	if normalize.ContainsAny(question, latestKeywords) {
		return domain.TimeWindow{Type: domain.WindowLatest}
	}
	if normalize.ContainsAny(question, allKeywords) {
		return domain.TimeWindow{Type: domain.WindowAll}
	}
	if selectedQuarter != "" {
		if q, ok := normalize.ExtractQuarter(selectedQuarter); ok {
			return domain.TimeWindow{Type: domain.WindowQuarter, Value: q}
		}
		return domain.TimeWindow{Type: domain.WindowPeriod, Value: selectedQuarter}
	}
	return domain.TimeWindow{Type: domain.WindowLatest}
}

// inferFilters adds a dimension filter for every metadata value whose
// normalized form appears in the normalized question. Values whose
// normalized form is 2 characters or shorter are skipped as noise.
// Dimensions are scanned in dictionary declaration order so identical
// inputs yield identical plans.
func (p *Planner) inferFilters(question string, meta *domain.DatasetMetadata) map[string][]string {
	filters := make(map[string][]string)
	if meta == nil || meta.DimensionValues == nil {
		return filters
	}
	norm := normalize.Text(question)
	for _, dim := range p.dict.Dimensions() {
		for _, value := range meta.DimensionValues[dim.Key] {
			nv := normalize.Text(value)
			if len(nv) <= 2 {
				continue
			}
			if strings.Contains(norm, nv) {
				filters[dim.Key] = append(filters[dim.Key], value)
			}
		}
	}
	return filters
}

func containsRaw(raw string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(raw, s) {
			return true
		}
	}
	return false
}
