package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/internal/dataprocessing"
	apierrors "github.com/ManfreddAbrego/forecast-tool/internal/errors"
	"github.com/ManfreddAbrego/forecast-tool/internal/exporter"
	"github.com/ManfreddAbrego/forecast-tool/internal/forecast"
	"github.com/ManfreddAbrego/forecast-tool/internal/infrastructure"
	"github.com/ManfreddAbrego/forecast-tool/internal/staffing"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// TracerName identifies spans started by the forecast pipeline
const TracerName = "github.com/ManfreddAbrego/forecast-tool/internal/services"

// ErrInvalidOptions is returned for run overrides outside the accepted range
var ErrInvalidOptions = errors.New("invalid run options")

var validate = validator.New()

// metricsOrder is the order in which metrics are fitted and reported
var metricsOrder = []domain.Metric{domain.MetricCalls, domain.MetricAHT}

// RunOptions override the configured model parameters for one run. Zero
// values keep the configured defaults.
type RunOptions struct {
	SeasonalPeriods int `validate:"omitempty,min=1,max=366"`
	Horizon         int `validate:"omitempty,min=1,max=3660"`
}

// RunResult is everything a forecast run produced
type RunResult struct {
	RunID       string
	GeneratedAt time.Time
	Load        *dataprocessing.LoadResult
	// History holds the cleaned Calls and AHT series, in that order
	History []domain.CleanedSeries
	Calls   *forecast.Result
	AHT     *forecast.Result
	Merged  *domain.MergedForecast
}

// Summary returns the display form of the run
func (r *RunResult) Summary() domain.ForecastSummary {
	return exporter.BuildSummary(exporter.SummaryInput{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		SourceRows:  r.Load.Stats.TotalRows,
		History:     r.History,
		Results:     []*forecast.Result{r.Calls, r.AHT},
		Merged:      r.Merged,
	})
}

// WorkbookInput returns the tables rendered into the output workbook
func (r *RunResult) WorkbookInput() exporter.WorkbookInput {
	return exporter.WorkbookInput{
		Calls:   r.Calls.Series,
		AHT:     r.AHT.Series,
		Merged:  r.Merged,
		History: r.History,
	}
}

// ForecastService runs the load, fit, merge and export pipeline
type ForecastService struct {
	loaderOpts dataprocessing.Options
	engine     *forecast.Engine
	calculator *staffing.Calculator
	workbook   *exporter.WorkbookWriter
	metrics    *infrastructure.ForecastMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

// NewForecastService wires the pipeline from the application config. metrics
// may be nil when telemetry is disabled.
func NewForecastService(cfg *config.Config, metrics *infrastructure.ForecastMetrics, logger *slog.Logger) (*ForecastService, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	engineCfg := forecast.ConfigFromModel(cfg.Model)
	if err := engineCfg.Validate(); err != nil {
		return nil, err
	}
	calculator, err := staffing.NewCalculator(staffing.ConfigFromStaffing(cfg.Staffing), logger)
	if err != nil {
		return nil, err
	}

	logger.Info("ForecastService initialized",
		slog.Int("seasonal_periods", engineCfg.SeasonalPeriods),
		slog.Int("horizon", engineCfg.Horizon),
		slog.Int("max_iterations", engineCfg.MaxIterations))

	return &ForecastService{
		loaderOpts: dataprocessing.OptionsFromConfig(cfg.Ingest),
		engine:     forecast.NewEngine(engineCfg, logger),
		calculator: calculator,
		workbook:   exporter.NewWorkbookWriter(logger),
		metrics:    metrics,
		tracer:     otel.Tracer(TracerName),
		logger:     infrastructure.WithComponent(logger, "forecast_service"),
		now:        time.Now,
	}, nil
}

// RunFile runs the pipeline on the workbook at path
func (s *ForecastService) RunFile(ctx context.Context, path string, opts RunOptions) (*RunResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return s.Run(ctx, f, opts)
}

// Run loads a workbook from r, forecasts Calls and AHT concurrently and
// merges them into the staffing table
func (s *ForecastService) Run(ctx context.Context, r io.Reader, opts RunOptions) (result *RunResult, err error) {
	start := s.now()
	// Callers outside an HTTP request get their own trace ID
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GenerateRunID()
	ctx = infrastructure.WithRunID(ctx, runID)

	ctx, span := s.tracer.Start(ctx, "forecast.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.seasonal_periods", opts.SeasonalPeriods),
			attribute.Int("run.horizon", opts.Horizon),
		))
	defer func() {
		kind := apierrors.Kind(err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			infrastructure.WithError(s.logger, err).ErrorContext(ctx, "forecast run failed",
				slog.String("kind", kind))
		}
		span.End()
		s.metrics.RecordRun(ctx, time.Since(start), kind)
	}()

	engine, err := s.engineFor(opts)
	if err != nil {
		return nil, err
	}

	load, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}

	history := make([]domain.CleanedSeries, len(metricsOrder))
	for i, metric := range metricsOrder {
		history[i] = load.Series(metric)
	}

	results, err := s.fitAll(ctx, engine, history)
	if err != nil {
		return nil, err
	}

	merged, err := s.merge(ctx, results[0], results[1])
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "forecast run completed",
		slog.Int("source_rows", load.Stats.TotalRows),
		slog.Int("merged_rows", merged.Len()),
		slog.Duration("duration", time.Since(start)))

	return &RunResult{
		RunID:       runID,
		GeneratedAt: start.UTC(),
		Load:        load,
		History:     history,
		Calls:       results[0],
		AHT:         results[1],
		Merged:      merged,
	}, nil
}

func (s *ForecastService) engineFor(opts RunOptions) (*forecast.Engine, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if opts == (RunOptions{}) {
		return s.engine, nil
	}

	cfg := s.engine.Config().WithOverrides(opts.SeasonalPeriods, opts.Horizon)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return s.engine.WithConfig(cfg), nil
}

func (s *ForecastService) load(ctx context.Context, r io.Reader) (*dataprocessing.LoadResult, error) {
	ctx, span := s.tracer.Start(ctx, "forecast.load")
	defer span.End()

	load, err := dataprocessing.NewLoader(s.loaderOpts, s.logger).Load(ctx, r)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.metrics.RecordInputRows(ctx, load.Stats.TotalRows)
	span.SetAttributes(
		attribute.String("sheet", load.Sheet),
		attribute.Int("rows.total", load.Stats.TotalRows),
		attribute.Int("rows.kept", load.Stats.KeptRows),
	)
	return load, nil
}

// fitAll forecasts every series concurrently. The first failure cancels the
// remaining fits.
func (s *ForecastService) fitAll(ctx context.Context, engine *forecast.Engine, history []domain.CleanedSeries) ([]*forecast.Result, error) {
	results := make([]*forecast.Result, len(history))
	g, gctx := errgroup.WithContext(ctx)

	for i, series := range history {
		g.Go(func() error {
			res, err := s.fit(gctx, engine, series)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ForecastService) fit(ctx context.Context, engine *forecast.Engine, series domain.CleanedSeries) (*forecast.Result, error) {
	metric := series.Metric.String()
	ctx, span := s.tracer.Start(ctx, "forecast.fit",
		trace.WithAttributes(
			attribute.String("metric", metric),
			attribute.Int("observations", series.Len()),
		))
	defer span.End()

	start := time.Now()
	res, err := engine.Forecast(ctx, series)
	s.metrics.RecordFit(ctx, metric, time.Since(start))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	infrastructure.AddSpanEvent(ctx, "model fitted",
		attribute.Float64("alpha", res.Model.Alpha),
		attribute.Float64("beta", res.Model.Beta),
		attribute.Float64("gamma", res.Model.Gamma),
		attribute.Float64("sse", res.Model.SSE))
	return res, nil
}

func (s *ForecastService) merge(ctx context.Context, calls, aht *forecast.Result) (*domain.MergedForecast, error) {
	ctx, span := s.tracer.Start(ctx, "forecast.merge")
	defer span.End()

	merged, err := s.calculator.Merge(calls.Series, aht.Series)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", merged.Len()))
	return merged, nil
}

// WriteWorkbook streams the xlsx deliverable of a run to w
func (s *ForecastService) WriteWorkbook(ctx context.Context, w io.Writer, result *RunResult, opts exporter.WorkbookOptions) error {
	ctx, span := s.tracer.Start(ctx, "forecast.export",
		trace.WithAttributes(attribute.Bool("charts", opts.IncludeCharts)))
	defer span.End()

	if err := s.workbook.Write(w, result.WorkbookInput(), opts); err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	return nil
}

// WriteCSV writes the three forecast tables into dir and returns the paths
func (s *ForecastService) WriteCSV(dir string, result *RunResult) ([]string, error) {
	return exporter.NewCSVWriter(dir, s.logger).WriteTables(result.WorkbookInput().Tables()...)
}
