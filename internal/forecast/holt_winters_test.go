package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_Forecast(t *testing.T) {
	model := &Model{
		Level:        10,
		Trend:        1,
		Seasonals:    []float64{1, 2, 3},
		Observations: 6,
	}

	assert.Equal(t, []float64{12, 14, 16, 15}, model.Forecast(4))
}

func TestInitialState(t *testing.T) {
	data := []float64{1, 5, 3, 11, 15, 13}

	level, trend, seasonals := initialState(data, 3)

	assert.InDelta(t, 3.0, level, 1e-12)
	// every value rises by 10 over one 3-period season
	assert.InDelta(t, 10.0/3, trend, 1e-12)
	assert.InDeltaSlice(t, []float64{-2, 2, 0}, seasonals, 1e-12)

	var sum float64
	for _, s := range seasonals {
		sum += s
	}
	assert.InDelta(t, 0, sum, 1e-12)
}

func TestSmoother_RunIsRepeatable(t *testing.T) {
	s := newSmoother([]float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}, 3)
	p := Params{Alpha: 0.4, Beta: 0.1, Gamma: 0.2}

	first := s.sse(p)
	second := s.sse(p)
	assert.Equal(t, first, second)

	model := s.model(p)
	assert.Equal(t, first, model.SSE)
	assert.Len(t, model.Fitted, 7)
}

func TestErrorMetrics(t *testing.T) {
	metrics := errorMetrics([]float64{10, 0, 20}, []float64{8, 1, 23})

	assert.InDelta(t, 2.0, metrics.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt(14.0/3), metrics.RMSE, 1e-12)
	// zero actuals are skipped
	assert.InDelta(t, (0.2+0.15)/2*100, metrics.MAPE, 1e-9)

	assert.Equal(t, ErrorMetrics{}, errorMetrics(nil, nil))
}

func TestLogitRoundTrip(t *testing.T) {
	for _, p := range []float64{0.01, 0.25, 0.5, 0.9} {
		got := fromLogits(toLogits(Params{Alpha: p, Beta: p, Gamma: p}))
		assert.InDelta(t, p, got.Alpha, 1e-12)
		assert.InDelta(t, p, got.Beta, 1e-12)
		assert.InDelta(t, p, got.Gamma, 1e-12)
	}

	assert.False(t, math.IsInf(logit(0), 0))
	assert.False(t, math.IsInf(logit(1), 0))
}

func TestSearchGrid(t *testing.T) {
	assert.Len(t, alphaGrid, 9)
	assert.InDelta(t, 0.9, alphaGrid[8], 1e-12)
	assert.Len(t, trendGrid, 10)
	assert.InDelta(t, 0.46, trendGrid[9], 1e-12)
}
