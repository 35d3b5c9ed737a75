// Package dataset loads fact records from files and derives the
// DatasetMetadata the planner needs for filter disambiguation. Storage
// formats beyond plain CSV and JSON belong to the storage collaborator.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finquery/pkg/contracts/domain"
)

// Loader reads fact records from disk.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads records from a .json or .csv file, dispatching on the file
// extension.
func (l *Loader) Load(path string) ([]domain.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return l.loadJSON(path)
	case ".csv":
		return l.loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

func (l *Loader) loadJSON(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.Record(row))
	}

	l.logger.Info("loaded dataset",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return records, nil
}

func (l *Loader) loadCSV(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("dataset %s has no header row", path)
	}

	header := rows[0]
	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(domain.Record, len(header))
		for i, field := range header {
			if i >= len(row) {
				break
			}
			rec[field] = coerce(row[i])
		}
		records = append(records, rec)
	}

	l.logger.Info("loaded dataset",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return records, nil
}

// coerce stores numeric-looking cells as float64 so measure fields
// aggregate without per-read parsing.
func coerce(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v
	}
	return trimmed
}
