package dataset

import (
	"sort"
	"strings"

	"finquery/internal/semantic"
	"finquery/pkg/contracts/domain"
)

// BuildMetadata derives DatasetMetadata from a record set: the distinct
// observed values per declared dimension (first-seen order) and the
// sorted list of observed quarters. Canonical "YYYYQN" quarter strings
// sort chronologically, so the last entry is the latest quarter.
func BuildMetadata(records []domain.Record, dict *semantic.Dictionary) *domain.DatasetMetadata {
	meta := &domain.DatasetMetadata{
		DimensionValues: make(map[string][]string),
	}

	timeField := ""
	for _, dim := range dict.Dimensions() {
		if dim.Type == semantic.DimTime && timeField == "" {
			timeField = dim.Key
		}
		seen := make(map[string]bool)
		for _, rec := range records {
			v := rec.Text(dim.Key)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			meta.DimensionValues[dim.Key] = append(meta.DimensionValues[dim.Key], v)
		}
	}

	if timeField != "" {
		quarters := append([]string(nil), meta.DimensionValues[timeField]...)
		for i := range quarters {
			quarters[i] = strings.ToUpper(quarters[i])
		}
		sort.Strings(quarters)
		meta.Quarters = quarters
		if len(quarters) > 0 {
			meta.LatestQuarter = quarters[len(quarters)-1]
		}
	}

	return meta
}
