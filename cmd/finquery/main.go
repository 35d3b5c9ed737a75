// Command finquery answers a free-text business question against a fact
// dataset: it plans the question into a structured query, executes it
// over the loaded records, and prints the literal answer plus the ranked
// aggregate rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"finquery/internal/config"
	"finquery/internal/dataset"
	"finquery/internal/engine"
	"finquery/internal/format"
	"finquery/internal/planner"
	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

func main() {
	dataPath := flag.String("data", "", "path to the fact dataset (.csv or .json)")
	question := flag.String("question", "", "business question to answer")
	quarter := flag.String("quarter", "", "optional pre-selected quarter, e.g. 2025Q3")
	flag.Parse()

	if *dataPath == "" || *question == "" {
		fmt.Fprintln(os.Stderr, "usage: finquery -data <file> -question <text> [-quarter 2025Q3]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx := context.Background()
	dict := semantic.Default()

	records, err := dataset.NewLoader(logger).Load(*dataPath)
	if err != nil {
		logger.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}
	meta := dataset.BuildMetadata(records, dict)

	plan := planner.New(dict, planner.Config{
		DefaultMetric: cfg.Query.DefaultMetric,
		DefaultTopN:   cfg.Query.DefaultTopN,
	}, logger).Plan(ctx, *question, *quarter, meta)

	result := engine.New(dict, engine.Config{
		MinRatioDenominator: cfg.Query.MinRatioDenominator,
	}, logger).Execute(ctx, plan, records)

	printResult(result, dict)
}

func printResult(result *domain.ExecutionResult, dict *semantic.Dictionary) {
	fmt.Println(result.AnswerText)
	fmt.Println()
	fmt.Printf("Time window: %s\n", result.Meta.TimeWindowUsed)
	fmt.Printf("Aggregation: %s\n", result.Meta.Aggregation)
	if len(result.Meta.FiltersUsed) > 0 {
		for field, values := range result.Meta.FiltersUsed {
			fmt.Printf("Filter: %s = %s\n", field, strings.Join(values, ", "))
		}
	}
	if len(result.TopRows) == 0 {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header := append(append([]string{}, result.Plan.GroupBy...), format.MetricLabel(result.Plan.Metric), "Records")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range result.TopRows {
		cells := make([]string, 0, len(header))
		for _, field := range result.Plan.GroupBy {
			cells = append(cells, row.DimensionValues[field])
		}
		cells = append(cells, formatCell(row, result.Plan.Metric, dict))
		cells = append(cells, fmt.Sprintf("%d", row.RecordCount))
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func formatCell(row domain.AggregatedRow, metric string, dict *semantic.Dictionary) string {
	v, ok := row.Measures[metric]
	if !ok {
		return "N/A"
	}
	return format.MetricValue(v, dict.UnitForKey(metric))
}
