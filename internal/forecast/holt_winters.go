package forecast

import (
	"math"
)

// Params are the smoothing factors of the level, trend and seasonal equations
type Params struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// ErrorMetrics summarise the one-step-ahead in-sample errors
type ErrorMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	// MAPE is a percentage over the non-zero observations
	MAPE float64 `json:"mape"`
}

// Model is a fitted additive Holt-Winters model. It is created by a single
// Fit call and never mutated afterwards.
type Model struct {
	Params
	SeasonalPeriods int `json:"seasonal_periods"`
	Observations    int `json:"observations"`

	// Final state after the last observation
	Level     float64   `json:"level"`
	Trend     float64   `json:"trend"`
	Seasonals []float64 `json:"seasonals"`

	SSE float64 `json:"sse"`
	// Fitted holds the one-step-ahead predictions of observations m..n-1
	Fitted  []float64    `json:"fitted"`
	Metrics ErrorMetrics `json:"metrics"`
}

// Forecast returns the next horizon values after the last observation
func (m *Model) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	season := len(m.Seasonals)
	for h := 1; h <= horizon; h++ {
		out[h-1] = m.Level + float64(h)*m.Trend + m.Seasonals[(m.Observations+h-1)%season]
	}
	return out
}

// initialState derives level, trend and seasonal offsets from the first two
// seasons of data
func initialState(data []float64, m int) (level, trend float64, seasonals []float64) {
	var sum float64
	for i := 0; i < m; i++ {
		sum += data[i]
	}
	level = sum / float64(m)

	// Mean per-period slope between the first two seasons
	var trendSum float64
	for i := 0; i < m; i++ {
		trendSum += (data[m+i] - data[i]) / float64(m)
	}
	trend = trendSum / float64(m)

	seasonals = make([]float64, m)
	var seasonalSum float64
	for i := 0; i < m; i++ {
		seasonals[i] = data[i] - level
		seasonalSum += seasonals[i]
	}
	avg := seasonalSum / float64(m)
	for i := range seasonals {
		seasonals[i] -= avg
	}
	return level, trend, seasonals
}

// smoother runs the recursions over one series. It owns a scratch seasonal
// buffer so objective evaluations do not allocate.
type smoother struct {
	data      []float64
	m         int
	level     float64
	trend     float64
	seasonals []float64
	scratch   []float64
}

func newSmoother(data []float64, m int) *smoother {
	level, trend, seasonals := initialState(data, m)
	return &smoother{
		data:      data,
		m:         m,
		level:     level,
		trend:     trend,
		seasonals: seasonals,
		scratch:   make([]float64, m),
	}
}

// sse returns the one-step-ahead sum of squared errors for p
func (s *smoother) sse(p Params) float64 {
	_, _, total := s.run(p, s.scratch, nil)
	return total
}

// run smooths observations m..n-1 starting from the initial state. seasonals
// receives the final seasonal offsets; fitted, when non-nil, receives the
// one-step-ahead predictions.
func (s *smoother) run(p Params, seasonals, fitted []float64) (level, trend, sse float64) {
	copy(seasonals, s.seasonals)
	level, trend = s.level, s.trend

	for t := s.m; t < len(s.data); t++ {
		idx := t % s.m
		y := s.data[t]

		pred := level + trend + seasonals[idx]
		if fitted != nil {
			fitted[t-s.m] = pred
		}
		e := y - pred
		sse += e * e

		newLevel := p.Alpha*(y-seasonals[idx]) + (1-p.Alpha)*(level+trend)
		trend = p.Beta*(newLevel-level) + (1-p.Beta)*trend
		seasonals[idx] = p.Gamma*(y-newLevel) + (1-p.Gamma)*seasonals[idx]
		level = newLevel
	}
	return level, trend, sse
}

// model builds the fitted model for p
func (s *smoother) model(p Params) *Model {
	seasonals := make([]float64, s.m)
	fitted := make([]float64, len(s.data)-s.m)
	level, trend, sse := s.run(p, seasonals, fitted)

	return &Model{
		Params:          p,
		SeasonalPeriods: s.m,
		Observations:    len(s.data),
		Level:           level,
		Trend:           trend,
		Seasonals:       seasonals,
		SSE:             sse,
		Fitted:          fitted,
		Metrics:         errorMetrics(s.data[s.m:], fitted),
	}
}

func errorMetrics(actual, fitted []float64) ErrorMetrics {
	if len(actual) == 0 {
		return ErrorMetrics{}
	}

	var absSum, sqSum, pctSum float64
	pctCount := 0
	for i, y := range actual {
		e := y - fitted[i]
		absSum += math.Abs(e)
		sqSum += e * e
		if y != 0 {
			pctSum += math.Abs(e / y)
			pctCount++
		}
	}

	n := float64(len(actual))
	metrics := ErrorMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	if pctCount > 0 {
		metrics.MAPE = pctSum / float64(pctCount) * 100
	}
	return metrics
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
