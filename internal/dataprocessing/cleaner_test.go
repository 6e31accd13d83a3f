package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func TestBuildSeries(t *testing.T) {
	d := func(day int) time.Time { return testutil.Day(2024, time.January, day) }

	records := []domain.RawRecord{
		{Row: 2, Date: d(3), Calls: ptr(30), AHT: ptr(3)},
		{Row: 3, Date: d(1), Calls: ptr(10), AHT: nil},
		{Row: 4, Date: d(2), Calls: nil, AHT: ptr(2)},
		{Row: 5, Date: d(1), Calls: ptr(11), AHT: ptr(1)},
		{Row: 6, Date: d(4), Calls: ptr(40), AHT: ptr(4)},
	}

	tests := []struct {
		name   string
		metric domain.Metric
		want   []domain.Observation
	}{
		{
			name:   "calls sorted with first duplicate kept",
			metric: domain.MetricCalls,
			want: []domain.Observation{
				{Date: d(1), Value: 10},
				{Date: d(3), Value: 30},
				{Date: d(4), Value: 40},
			},
		},
		{
			name:   "aht drops missing values before deduplication",
			metric: domain.MetricAHT,
			want: []domain.Observation{
				{Date: d(1), Value: 1},
				{Date: d(2), Value: 2},
				{Date: d(3), Value: 3},
				{Date: d(4), Value: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := BuildSeries(records, tt.metric)
			assert.Equal(t, tt.metric, series.Metric)
			assert.Equal(t, tt.want, series.Observations)
		})
	}
}

func TestBuildSeries_Empty(t *testing.T) {
	series := BuildSeries(nil, domain.MetricCalls)
	assert.Zero(t, series.Len())
	assert.True(t, series.LastDate().IsZero())
}

func TestCountDuplicateDates(t *testing.T) {
	d := testutil.Day(2024, time.May, 1)
	records := []domain.RawRecord{{Date: d}, {Date: d}, {Date: d.AddDate(0, 0, 1)}, {Date: d}}
	assert.Equal(t, 2, CountDuplicateDates(records))
}
