// Package staffing joins the call-volume and handle-time forecasts and
// converts them into full-time-equivalent agent requirements.
package staffing

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// ftePlaces is the number of decimals kept in the FTE column
const ftePlaces = 2

var validate = validator.New()

// Config holds the staffing conversion factors
type Config struct {
	MinutesPerHour float64 `validate:"gt=0"`
	ShiftHours     float64 `validate:"gt=0"`
}

// DefaultConfig returns 60-minute hours and 8-hour shifts
func DefaultConfig() Config {
	return Config{
		MinutesPerHour: config.DefaultMinutesPerHour,
		ShiftHours:     config.DefaultShiftHours,
	}
}

// ConfigFromStaffing maps the staffing section of the application config
func ConfigFromStaffing(cfg config.StaffingConfig) Config {
	return Config{
		MinutesPerHour: cfg.MinutesPerHour,
		ShiftHours:     cfg.ShiftHours,
	}
}

// Calculator derives FTE from call and AHT forecasts
type Calculator struct {
	cfg           Config
	minutesPerFTE decimal.Decimal
	logger        *slog.Logger
}

// NewCalculator validates cfg and creates a calculator. A nil logger falls
// back to slog.Default.
func NewCalculator(cfg Config, logger *slog.Logger) (*Calculator, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid staffing config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		cfg:           cfg,
		minutesPerFTE: decimal.NewFromFloat(cfg.MinutesPerHour).Mul(decimal.NewFromFloat(cfg.ShiftHours)),
		logger:        logger.With(slog.String("component", "staffing")),
	}, nil
}

// FTE converts a day's calls and average handle time (minutes) into agents,
// rounded half away from zero to two decimals. Negative results, possible
// with additive forecasts, are reported as zero.
func (c *Calculator) FTE(calls, aht float64) float64 {
	workload := decimal.NewFromFloat(calls).Mul(decimal.NewFromFloat(aht))
	fte := workload.Div(c.minutesPerFTE).Round(ftePlaces)
	if fte.IsNegative() {
		return 0
	}
	return fte.InexactFloat64()
}

// Merge inner-joins calls and aht on date, keeping the order of calls, and
// adds the FTE of every joined date.
func (c *Calculator) Merge(calls, aht domain.ForecastSeries) (*domain.MergedForecast, error) {
	ahtByDate := make(map[time.Time]float64, aht.Len())
	for _, p := range aht.Points {
		key := dayKey(p.Date)
		if _, ok := ahtByDate[key]; !ok {
			ahtByDate[key] = p.Value
		}
	}

	merged := &domain.MergedForecast{Rows: make([]domain.MergedRow, 0, calls.Len())}
	clamped := 0
	for _, p := range calls.Points {
		ahtValue, ok := ahtByDate[dayKey(p.Date)]
		if !ok {
			continue
		}
		fte := c.FTE(p.Value, ahtValue)
		if fte == 0 && p.Value*ahtValue < 0 {
			clamped++
		}
		merged.Rows = append(merged.Rows, domain.MergedRow{
			Date:          p.Date,
			CallsForecast: p.Value,
			AHTForecast:   ahtValue,
			FTE:           fte,
		})
	}

	if merged.Len() == 0 {
		return nil, &AlignmentError{CallsPoints: calls.Len(), AHTPoints: aht.Len()}
	}

	if clamped > 0 {
		c.logger.Warn("negative staffing requirement clamped to zero", slog.Int("rows", clamped))
	}
	if dropped := calls.Len() - merged.Len(); dropped > 0 {
		c.logger.Warn("calls forecast dates without an AHT forecast were dropped", slog.Int("rows", dropped))
	}

	return merged, nil
}

func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
