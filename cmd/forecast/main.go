// Command forecast reads a Date/Calls/AHT workbook, forecasts both metrics
// with additive Holt-Winters and writes the Calls, AHT and merged FTE
// forecasts to an xlsx workbook.
//
//	forecast -in history.xlsx [-out accurate_forecast_output.xlsx]
//	         [-seasonal-periods 39] [-horizon 270] [-charts] [-csv-dir dir]
//	forecast -version
//
// The run summary is printed to stdout as JSON; logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/internal/exporter"
	"github.com/ManfreddAbrego/forecast-tool/internal/infrastructure"
	"github.com/ManfreddAbrego/forecast-tool/internal/services"
	"github.com/ManfreddAbrego/forecast-tool/internal/validation"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts"
)

// errUsage marks command line errors
var errUsage = errors.New("usage error")

type options struct {
	in              string
	out             string
	csvDir          string
	seasonalPeriods int
	horizon         int
	charts          bool
	summary         bool
	version         bool
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input .xlsx workbook with Date, Calls and AHT columns (required)")
	fs.StringVar(&opts.out, "out", cfg.Export.FileName, "output .xlsx workbook")
	fs.StringVar(&opts.csvDir, "csv-dir", "", "also write each forecast table as CSV into this directory")
	fs.IntVar(&opts.seasonalPeriods, "seasonal-periods", 0, fmt.Sprintf("season length in observations (default %d)", cfg.Model.SeasonalPeriods))
	fs.IntVar(&opts.horizon, "horizon", 0, fmt.Sprintf("days to forecast (default %d)", cfg.Model.Horizon))
	fs.BoolVar(&opts.charts, "charts", cfg.Export.IncludeCharts, "add a Charts sheet with actual vs forecast and FTE line charts")
	fs.BoolVar(&opts.summary, "summary", true, "print the run summary as JSON to stdout")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}

	// Unset model flags keep the configured defaults; an explicit value must be positive
	var invalid []string
	fs.Visit(func(f *flag.Flag) {
		switch {
		case f.Name == "seasonal-periods" && opts.seasonalPeriods < 1,
			f.Name == "horizon" && opts.horizon < 1:
			invalid = append(invalid, "-"+f.Name)
		}
	})
	if len(invalid) > 0 {
		return opts, fmt.Errorf("%w: %s must be at least 1", errUsage, strings.Join(invalid, ", "))
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	if opts.in == "" && !opts.version {
		fs.Usage()
		return opts, fmt.Errorf("%w: -in is required", errUsage)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	files := validation.NewFileValidator(logger)
	if err := files.ValidateExcelFile(opts.in); err != nil {
		return err
	}
	if err := files.ValidateName(opts.out); err != nil {
		return fmt.Errorf("%w: -out: %w", errUsage, err)
	}
	if err := files.ValidateOutputDirectory(filepath.Dir(opts.out)); err != nil {
		return err
	}
	if opts.csvDir != "" {
		if err := files.ValidateOutputDirectory(opts.csvDir); err != nil {
			return err
		}
	}

	service, err := services.NewForecastService(cfg, nil, logger)
	if err != nil {
		return err
	}

	result, err := service.RunFile(ctx, opts.in, services.RunOptions{
		SeasonalPeriods: opts.seasonalPeriods,
		Horizon:         opts.horizon,
	})
	if err != nil {
		return err
	}

	if err := writeWorkbook(ctx, service, result, opts); err != nil {
		return err
	}
	logger.InfoContext(ctx, "forecast workbook written",
		slog.String("run_id", result.RunID),
		slog.String("path", opts.out),
		slog.Int("merged_rows", result.Merged.Len()))

	if opts.csvDir != "" {
		paths, err := service.WriteCSV(opts.csvDir, result)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "forecast CSV files written",
			slog.String("dir", opts.csvDir),
			slog.Int("files", len(paths)))
	}

	if opts.summary {
		return exporter.WriteSummaryJSON(stdout, result.Summary())
	}
	return nil
}

// writeWorkbook writes to a temporary file next to the target and renames it
// so a failed run never leaves a truncated workbook behind
func writeWorkbook(ctx context.Context, service *services.ForecastService, result *services.RunResult, opts options) error {
	tmp, err := os.CreateTemp(filepath.Dir(opts.out), ".forecast-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := service.WriteWorkbook(ctx, tmp, result, exporter.WorkbookOptions{IncludeCharts: opts.charts}); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary output: %w", err)
	}
	if err := os.Rename(tmp.Name(), opts.out); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], cfg, logger, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		infrastructure.WithError(logger, err).Error("Forecast failed")
		fmt.Fprintf(os.Stderr, "forecast: %v\n", err)
		stop()
		infrastructure.CloseLogFile()
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
