package exporter

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManfreddAbrego/forecast-tool/internal/forecast"
	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

func sampleSummaryInput() SummaryInput {
	in := sampleInput()
	return SummaryInput{
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, time.February, 1, 9, 30, 0, 0, time.FixedZone("UTC+3", 3*3600)),
		SourceRows:  5,
		History:     in.History,
		Results: []*forecast.Result{
			{
				Series: in.Calls,
				Model: &forecast.Model{
					Params:          forecast.Params{Alpha: 0.3, Beta: 0.01, Gamma: 0.2},
					SeasonalPeriods: 2,
					Observations:    3,
					SSE:             42,
					Metrics:         forecast.ErrorMetrics{MAE: 1, RMSE: 2, MAPE: 3},
				},
			},
			{Series: in.AHT},
		},
		Merged: in.Merged,
	}
}

func TestBuildSummary(t *testing.T) {
	summary := BuildSummary(sampleSummaryInput())

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, time.UTC, summary.GeneratedAt.Location())
	assert.Equal(t, 5, summary.SourceRows)
	require.Len(t, summary.Models, 2)

	calls := summary.Models[0]
	assert.Equal(t, domain.MetricCalls, calls.Metric)
	assert.Equal(t, 3, calls.Observations)
	assert.Equal(t, testutil.Day(2024, time.December, 29), calls.HistoryStart)
	assert.Equal(t, testutil.Day(2024, time.December, 31), calls.HistoryEnd)
	assert.Equal(t, testutil.Day(2025, time.January, 1), calls.ForecastStart)
	assert.Equal(t, testutil.Day(2025, time.January, 3), calls.ForecastEnd)
	assert.Equal(t, 3, calls.ForecastPoints)
	assert.Equal(t, 2, calls.SeasonalPeriods)
	assert.Equal(t, 0.3, calls.Alpha)
	assert.Equal(t, 42.0, calls.SSE)
	assert.Equal(t, 3.0, calls.MAPE)

	aht := summary.Models[1]
	assert.Equal(t, domain.MetricAHT, aht.Metric)
	assert.Equal(t, 3, aht.Observations)
	assert.Zero(t, aht.Alpha)

	assert.Equal(t, 3, summary.Staffing.Rows)
	assert.Equal(t, 14.33, summary.Staffing.MaxFTE)
	assert.Equal(t, testutil.Day(2025, time.January, 2), summary.Staffing.PeakDate)
	assert.Len(t, summary.FTE, 3)
}

func TestBuildSummary_NoMerged(t *testing.T) {
	in := sampleSummaryInput()
	in.Merged = nil
	in.Results = append(in.Results, nil)

	summary := BuildSummary(in)
	assert.Len(t, summary.Models, 2)
	assert.NotNil(t, summary.FTE)
	assert.Empty(t, summary.FTE)
	assert.Zero(t, summary.Staffing.Rows)
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, BuildSummary(sampleSummaryInput())))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Len(t, decoded["models"], 2)
	assert.Contains(t, decoded, "staffing")
}
