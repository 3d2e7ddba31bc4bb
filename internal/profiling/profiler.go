package profiling

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarises one numeric column
type ColumnProfile struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`

	// Distinct counts unique values; ties lower the rank resolution
	Distinct int `json:"distinct"`
}

// IsConstant reports whether every value is identical
func (p ColumnProfile) IsConstant() bool {
	return p.Distinct <= 1
}

// String renders the profile on one line
func (p ColumnProfile) String() string {
	return fmt.Sprintf("%s: n=%d mean=%.4f sd=%.4f min=%.4f q25=%.4f median=%.4f q75=%.4f max=%.4f distinct=%d",
		p.Name, p.Count, p.Mean, p.StdDev, p.Min, p.Q25, p.Median, p.Q75, p.Max, p.Distinct)
}

// DataProfiler computes summary statistics for numeric columns
type DataProfiler struct{}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileColumn summarises data. It fails on an empty column.
func (dp *DataProfiler) ProfileColumn(data []float64, name string) (ColumnProfile, error) {
	profile := ColumnProfile{Name: name, Count: len(data)}

	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, fmt.Errorf("profile %s: %w", name, err)
	}
	if profile.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return profile, fmt.Errorf("profile %s: %w", name, err)
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, fmt.Errorf("profile %s: %w", name, err)
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, fmt.Errorf("profile %s: %w", name, err)
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, fmt.Errorf("profile %s: %w", name, err)
	}

	quartiles, err := stats.Quartile(data)
	if err != nil {
		return profile, fmt.Errorf("profile %s: %w", name, err)
	}
	profile.Q25 = quartiles.Q1
	profile.Q75 = quartiles.Q3

	profile.Distinct = countDistinct(data)
	return profile, nil
}

// ProfileDataset profiles every column, in name order
func (dp *DataProfiler) ProfileDataset(dataset map[string][]float64) ([]ColumnProfile, error) {
	names := make([]string, 0, len(dataset))
	for name := range dataset {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]ColumnProfile, 0, len(names))
	for _, name := range names {
		profile, err := dp.ProfileColumn(dataset[name], name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func countDistinct(data []float64) int {
	seen := make(map[float64]struct{}, len(data))
	for _, v := range data {
		seen[v] = struct{}{}
	}
	return len(seen)
}
