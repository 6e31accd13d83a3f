package forecast

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
)

var validate = validator.New()

// Config controls model fitting and the forecast horizon
type Config struct {
	SeasonalPeriods int `validate:"gt=0"`
	Horizon         int `validate:"gt=0"`
	// MinSeasons is the number of full seasons required before fitting
	MinSeasons int `validate:"gte=2"`
	// MaxIterations bounds the Nelder-Mead refinement
	MaxIterations int `validate:"gt=0"`
}

// DefaultConfig returns a 39-period season and a 270-day horizon
func DefaultConfig() Config {
	return Config{
		SeasonalPeriods: config.DefaultSeasonalPeriods,
		Horizon:         config.DefaultForecastHorizon,
		MinSeasons:      config.DefaultMinSeasons,
		MaxIterations:   config.DefaultMaxIterations,
	}
}

// ConfigFromModel maps the model section of the application config
func ConfigFromModel(cfg config.ModelConfig) Config {
	return Config{
		SeasonalPeriods: cfg.SeasonalPeriods,
		Horizon:         cfg.Horizon,
		MinSeasons:      cfg.MinSeasons,
		MaxIterations:   cfg.MaxIterations,
	}
}

// WithOverrides returns a copy with the non-zero arguments applied
func (c Config) WithOverrides(seasonalPeriods, horizon int) Config {
	if seasonalPeriods != 0 {
		c.SeasonalPeriods = seasonalPeriods
	}
	if horizon != 0 {
		c.Horizon = horizon
	}
	return c
}

// MinObservations is the shortest series the engine will fit
func (c Config) MinObservations() int {
	return c.MinSeasons * c.SeasonalPeriods
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid forecast config: %w", err)
	}
	return nil
}
