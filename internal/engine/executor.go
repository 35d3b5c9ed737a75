// Package engine applies a QueryPlan to an in-memory fact record set and
// produces ranked, unit-correct aggregates plus a literal answer string.
// Execution is exact: every matching record participates in every
// aggregate, with no sampling or approximation. Data-shape problems
// degrade to well-formed empty output; the engine never returns an error
// for them.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

// groupKeySeparator joins group-by field values into a composite key.
const groupKeySeparator = "|"

// Config holds execution policy knobs.
type Config struct {
	// MinRatioDenominator is the minimum supporting denominator sum a
	// group needs for its ratio to participate in a top/bottom ranking.
	// Groups below it are pushed to the bottom regardless of their
	// computed ratio, so near-zero-denominator ratios cannot dominate a
	// "best/worst" list. Zero disables the threshold.
	MinRatioDenominator float64
}

// DefaultConfig returns the standard execution policy.
func DefaultConfig() Config {
	return Config{MinRatioDenominator: 1.0}
}

// Executor applies query plans to fact records. It holds only read-only
// state and is safe for concurrent use.
type Executor struct {
	dict                *semantic.Dictionary
	minRatioDenominator float64
	logger              *slog.Logger
}

// New creates an executor over the given dictionary.
func New(dict *semantic.Dictionary, cfg Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		dict:                dict,
		minRatioDenominator: cfg.MinRatioDenominator,
		logger:              logger,
	}
}

// Execute applies the plan to the full record array. It always returns a
// well-formed result: empty or malformed input yields empty rows and the
// fixed no-data answer, never an error.
func (e *Executor) Execute(ctx context.Context, plan domain.QueryPlan, records []domain.Record) *domain.ExecutionResult {
	planID := uuid.NewString()
	metric := e.resolveMetric(plan.Metric)
	timeField := e.timeField()

	windowed, windowUsed := applyTimeWindow(records, plan.TimeWindow, timeField)
	filtered := applyFilters(windowed, plan.Filters)

	e.logger.DebugContext(ctx, "executing query plan",
		slog.String("plan_id", planID),
		slog.String("metric", plan.Metric),
		slog.String("operation", string(plan.Operation)),
		slog.Int("records_in", len(records)),
		slog.Int("records_filtered", len(filtered)),
	)

	rows := aggregateGroups(groupRecords(filtered, plan.GroupBy), metric)

	switch plan.Operation {
	case domain.OperationTop, domain.OperationBottom:
		e.rankRows(rows, metric, plan.SortDirection)
		if plan.TopN > 0 && len(rows) > plan.TopN {
			rows = rows[:plan.TopN]
		}
	case domain.OperationTrend:
		sortByField(rows, timeField)
	case domain.OperationSingle:
		// grouping order is already deterministic
	}

	meta := domain.ResultMeta{
		PlanID:         planID,
		FiltersUsed:    copyFilters(plan.Filters),
		TimeWindowUsed: windowUsed,
		Aggregation:    metric.describe(),
		Metric:         metric.definition(),
	}

	return &domain.ExecutionResult{
		Plan:       plan,
		Meta:       meta,
		TopRows:    rows,
		AnswerText: e.buildAnswer(plan, meta, rows, metric, timeField),
	}
}

// timeField returns the key of the dictionary's time dimension.
func (e *Executor) timeField() string {
	for _, dim := range e.dict.Dimensions() {
		if dim.Type == semantic.DimTime {
			return dim.Key
		}
	}
	return "Quarter"
}

// applyTimeWindow filters records to the plan's time window and returns
// the human-readable description of the window actually applied.
func applyTimeWindow(records []domain.Record, window domain.TimeWindow, timeField string) ([]domain.Record, string) {
	switch window.Type {
	case domain.WindowAll:
		return records, "all quarters"

	case domain.WindowQuarter, domain.WindowPeriod:
		return filterByQuarter(records, timeField, window.Value), window.Value

	case domain.WindowYear:
		var out []domain.Record
		prefix := strings.ToUpper(window.Value)
		for _, rec := range records {
			if strings.HasPrefix(strings.ToUpper(rec.Text(timeField)), prefix) {
				out = append(out, rec)
			}
		}
		return out, window.Value

	case domain.WindowLatest:
		latest := latestQuarter(records, timeField)
		if latest == "" {
			return nil, "latest"
		}
		return filterByQuarter(records, timeField, latest), latest + " (latest)"

	default:
		return records, "all quarters"
	}
}

func filterByQuarter(records []domain.Record, timeField, quarter string) []domain.Record {
	var out []domain.Record
	for _, rec := range records {
		if strings.EqualFold(rec.Text(timeField), quarter) {
			out = append(out, rec)
		}
	}
	return out
}

// latestQuarter returns the lexicographically greatest observed quarter
// string. Canonical "YYYYQN" quarters sort chronologically under this
// comparison.
func latestQuarter(records []domain.Record, timeField string) string {
	latest := ""
	for _, rec := range records {
		q := strings.ToUpper(rec.Text(timeField))
		if q > latest {
			latest = q
		}
	}
	return latest
}

// applyFilters keeps records matching every dimension filter, where a
// record matches a dimension when its value case-insensitively equals
// any accepted value.
func applyFilters(records []domain.Record, filters map[string][]string) []domain.Record {
	if len(filters) == 0 {
		return records
	}
	var out []domain.Record
	for _, rec := range records {
		if matchesFilters(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesFilters(rec domain.Record, filters map[string][]string) bool {
	for field, accepted := range filters {
		if len(accepted) == 0 {
			continue
		}
		value := rec.Text(field)
		matched := false
		for _, want := range accepted {
			if strings.EqualFold(value, want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// recordGroup is one distinct composite key's record set.
type recordGroup struct {
	values  map[string]string
	records []domain.Record
}

// groupRecords buckets records by the composite group-by key, preserving
// first-seen order. Empty groupBy yields a single implicit group.
func groupRecords(records []domain.Record, groupBy []string) []recordGroup {
	if len(records) == 0 {
		return nil
	}
	if len(groupBy) == 0 {
		return []recordGroup{{values: map[string]string{}, records: records}}
	}

	index := make(map[string]int)
	var groups []recordGroup
	for _, rec := range records {
		parts := make([]string, len(groupBy))
		for i, field := range groupBy {
			parts[i] = rec.Text(field)
		}
		key := strings.Join(parts, groupKeySeparator)

		at, ok := index[key]
		if !ok {
			values := make(map[string]string, len(groupBy))
			for i, field := range groupBy {
				values[field] = parts[i]
			}
			at = len(groups)
			index[key] = at
			groups = append(groups, recordGroup{values: values})
		}
		groups[at].records = append(groups[at].records, rec)
	}
	return groups
}

// sortByField orders rows ascending by one dimension value. Used for
// trend output, where the field is the quarter.
func sortByField(rows []domain.AggregatedRow, field string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DimensionValues[field] < rows[j].DimensionValues[field]
	})
}

func copyFilters(filters map[string][]string) map[string][]string {
	out := make(map[string][]string, len(filters))
	for k, v := range filters {
		out[k] = append([]string(nil), v...)
	}
	return out
}
