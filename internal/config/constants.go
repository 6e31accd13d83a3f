package config

import "github.com/ManfreddAbrego/forecast-tool/pkg/contracts"

// Application constants
const (
	// Application Info
	AppName    = "Call Forecast"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. FORECAST_MODEL_HORIZON
	EnvPrefix = "FORECAST"

	// Model defaults: a 39-step season and a 9-month daily horizon
	DefaultSeasonalPeriods = 39
	DefaultForecastHorizon = 270
	DefaultMinSeasons      = 2
	DefaultMaxIterations   = 2000

	// Ingest defaults
	DefaultHeaderRows = 1

	// Staffing defaults: AHT minutes to hours, hours to 8-hour shifts
	DefaultMinutesPerHour = 60.0
	DefaultShiftHours     = 8.0

	// Export defaults
	DefaultExportFileName = "accurate_forecast_output.xlsx"
	XLSXContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// Sheet names of the exported workbook
	SheetCallsForecast  = "Calls Forecast"
	SheetAHTForecast    = "AHT Forecast"
	SheetMergedForecast = "Merged Forecast"
	SheetCharts         = "Charts"
	SheetHistory        = "History"

	// Upload limits
	DefaultMaxUploadBytes = 10 << 20
	UploadFormField       = "file"
)
