package domain

// DatasetMetadata summarizes the distinct values observed per dimension
// and the observed quarters of a dataset. The planner uses it to
// disambiguate filters and resolve "latest" without scanning the full
// record set.
type DatasetMetadata struct {
	DimensionValues map[string][]string `json:"dimension_values"`
	Quarters        []string            `json:"quarters"`
	LatestQuarter   string              `json:"latest_quarter"`
}
