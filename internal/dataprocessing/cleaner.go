package dataprocessing

import (
	"math"
	"slices"

	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// BuildSeries extracts the non-missing values of one metric, ordered by date
// with one observation per date. Rows are stable-sorted so that the first row
// of a repeated date wins.
func BuildSeries(records []domain.RawRecord, metric domain.Metric) domain.CleanedSeries {
	observations := make([]domain.Observation, 0, len(records))
	for _, r := range records {
		v, ok := r.Value(metric)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		observations = append(observations, domain.Observation{Date: r.Date, Value: v})
	}

	slices.SortStableFunc(observations, func(a, b domain.Observation) int {
		return a.Date.Compare(b.Date)
	})

	unique := observations[:0]
	for i, o := range observations {
		if i > 0 && o.Date.Equal(unique[len(unique)-1].Date) {
			continue
		}
		unique = append(unique, o)
	}

	return domain.CleanedSeries{Metric: metric, Observations: unique}
}

// CountDuplicateDates returns how many records repeat an earlier date
func CountDuplicateDates(records []domain.RawRecord) int {
	seen := make(map[int64]struct{}, len(records))
	dupes := 0
	for _, r := range records {
		key := r.Date.Unix()
		if _, ok := seen[key]; ok {
			dupes++
			continue
		}
		seen[key] = struct{}{}
	}
	return dupes
}
