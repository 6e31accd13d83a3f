package forecast

import (
	"context"
	"log/slog"

	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// Result is the outcome of forecasting one metric
type Result struct {
	Series domain.ForecastSeries
	Model  *Model
	// SeedSSE is the best objective found by the grid search
	SeedSSE float64
}

// Engine fits one model per call; it holds no state between calls and is
// safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "forecast_engine")),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// WithConfig returns an engine sharing the logger with a different config
func (e *Engine) WithConfig(cfg Config) *Engine {
	return &Engine{cfg: cfg, logger: e.logger}
}

// Forecast fits an additive Holt-Winters model to series and projects it
// Horizon days past the last observed date.
func (e *Engine) Forecast(ctx context.Context, series domain.CleanedSeries) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	data := make([]float64, 0, series.Len())
	for _, o := range series.Observations {
		if finite(o.Value) {
			data = append(data, o.Value)
		}
	}

	required := e.cfg.MinObservations()
	if len(data) < required {
		return nil, &InsufficientDataError{Metric: series.Metric, Count: len(data), Required: required}
	}

	model, seedSSE, err := e.fit(ctx, series.Metric, data)
	if err != nil {
		return nil, err
	}

	values := model.Forecast(e.cfg.Horizon)
	last := series.LastDate()
	points := make([]domain.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = domain.ForecastPoint{Date: last.AddDate(0, 0, i+1), Value: v}
	}

	return &Result{
		Series:  domain.ForecastSeries{Metric: series.Metric, Points: points},
		Model:   model,
		SeedSSE: seedSSE,
	}, nil
}

func (e *Engine) fit(ctx context.Context, metric domain.Metric, data []float64) (*Model, float64, error) {
	s := newSmoother(data, e.cfg.SeasonalPeriods)

	seed, seedSSE, err := gridSearch(ctx, s)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &FitDivergenceError{Metric: metric, Reason: "grid search failed", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	params, status, evaluations, err := refine(s, seed, e.cfg.MaxIterations)
	if err != nil {
		return nil, 0, &FitDivergenceError{Metric: metric, Reason: "parameter optimisation failed", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if limitReached(status) {
		e.logger.WarnContext(ctx, "optimizer stopped at its budget, keeping best parameters",
			slog.String("metric", metric.String()),
			slog.String("status", status.String()),
			slog.Int("max_iterations", e.cfg.MaxIterations))
	}

	model := s.model(params)
	if !finite(model.SSE) || !finite(model.Level) || !finite(model.Trend) {
		return nil, 0, &FitDivergenceError{Metric: metric, Reason: "fitted state is not finite"}
	}
	// Keep the grid seed when refinement did not improve on it
	if model.SSE > seedSSE {
		model = s.model(seed)
	}

	e.logger.DebugContext(ctx, "model fitted",
		slog.String("metric", metric.String()),
		slog.Int("observations", len(data)),
		slog.Float64("alpha", model.Alpha),
		slog.Float64("beta", model.Beta),
		slog.Float64("gamma", model.Gamma),
		slog.Float64("seed_sse", seedSSE),
		slog.Float64("sse", model.SSE),
		slog.Int("evaluations", evaluations))

	return model, seedSSE, nil
}
