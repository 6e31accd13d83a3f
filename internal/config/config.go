package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Model     ModelConfig     `yaml:"model" envconfig:"MODEL"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Staffing  StaffingConfig  `yaml:"staffing" envconfig:"STAFFING"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"2m" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"90s" validate:"gt=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"5" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/forecast.log"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0" validate:"gte=0,lte=1"`
}

// ModelConfig holds the Holt-Winters forecast parameters
type ModelConfig struct {
	SeasonalPeriods int `yaml:"seasonal_periods" envconfig:"SEASONAL_PERIODS" default:"39" validate:"gt=0"`
	Horizon         int `yaml:"horizon" envconfig:"HORIZON" default:"270" validate:"gt=0"`
	MinSeasons      int `yaml:"min_seasons" envconfig:"MIN_SEASONS" default:"2" validate:"gte=2"`
	MaxIterations   int `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" default:"2000" validate:"gt=0"`
}

// IngestConfig controls how the input workbook is read
type IngestConfig struct {
	Sheet          string `yaml:"sheet" envconfig:"SHEET"`
	HeaderRows     int    `yaml:"header_rows" envconfig:"HEADER_ROWS" default:"1" validate:"gte=0"`
	RejectNegative bool   `yaml:"reject_negative" envconfig:"REJECT_NEGATIVE" default:"true"`
}

// StaffingConfig holds the FTE conversion constants
type StaffingConfig struct {
	MinutesPerHour float64 `yaml:"minutes_per_hour" envconfig:"MINUTES_PER_HOUR" default:"60" validate:"gt=0"`
	ShiftHours     float64 `yaml:"shift_hours" envconfig:"SHIFT_HOURS" default:"8" validate:"gt=0"`
}

// ExportConfig controls the exported workbook
type ExportConfig struct {
	FileName      string `yaml:"file_name" envconfig:"FILE_NAME" default:"accurate_forecast_output.xlsx" validate:"required"`
	IncludeCharts bool   `yaml:"include_charts" envconfig:"INCLUDE_CHARTS" default:"false"`
}

// Load loads configuration from environment variables and config file.
// Environment variables take precedence over the file.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration using the given YAML file as the base layer.
// An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overlays only the environment variables that are actually set.
// envconfig.Process would otherwise reset file values back to tag defaults.
func applyEnv(cfg *Config) error {
	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}
	defaults := Default()
	mergeSet(cfg, &env, defaults)
	return nil
}

// mergeSet copies each env value that differs from its default into cfg
func mergeSet(cfg, env, defaults *Config) {
	if env.Server != defaults.Server {
		overlayServer(&cfg.Server, env.Server, defaults.Server)
	}
	if !equalStrings(env.Security.AllowedOrigins, defaults.Security.AllowedOrigins) {
		cfg.Security.AllowedOrigins = env.Security.AllowedOrigins
	}
	if env.Security.EnableCORS != defaults.Security.EnableCORS {
		cfg.Security.EnableCORS = env.Security.EnableCORS
	}
	if env.Security.RateLimit != defaults.Security.RateLimit {
		overlay(&cfg.Security.RateLimit.Enabled, env.Security.RateLimit.Enabled, defaults.Security.RateLimit.Enabled)
		overlay(&cfg.Security.RateLimit.RPS, env.Security.RateLimit.RPS, defaults.Security.RateLimit.RPS)
		overlay(&cfg.Security.RateLimit.Burst, env.Security.RateLimit.Burst, defaults.Security.RateLimit.Burst)
	}

	overlay(&cfg.Logging.Level, env.Logging.Level, defaults.Logging.Level)
	overlay(&cfg.Logging.Output, env.Logging.Output, defaults.Logging.Output)
	overlay(&cfg.Logging.FilePath, env.Logging.FilePath, defaults.Logging.FilePath)

	overlay(&cfg.Telemetry.Environment, env.Telemetry.Environment, defaults.Telemetry.Environment)
	overlay(&cfg.Telemetry.TraceExporter, env.Telemetry.TraceExporter, defaults.Telemetry.TraceExporter)
	overlay(&cfg.Telemetry.MetricExporter, env.Telemetry.MetricExporter, defaults.Telemetry.MetricExporter)
	overlay(&cfg.Telemetry.SampleRatio, env.Telemetry.SampleRatio, defaults.Telemetry.SampleRatio)

	overlay(&cfg.Model.SeasonalPeriods, env.Model.SeasonalPeriods, defaults.Model.SeasonalPeriods)
	overlay(&cfg.Model.Horizon, env.Model.Horizon, defaults.Model.Horizon)
	overlay(&cfg.Model.MinSeasons, env.Model.MinSeasons, defaults.Model.MinSeasons)
	overlay(&cfg.Model.MaxIterations, env.Model.MaxIterations, defaults.Model.MaxIterations)

	overlay(&cfg.Ingest.Sheet, env.Ingest.Sheet, defaults.Ingest.Sheet)
	overlay(&cfg.Ingest.HeaderRows, env.Ingest.HeaderRows, defaults.Ingest.HeaderRows)
	overlay(&cfg.Ingest.RejectNegative, env.Ingest.RejectNegative, defaults.Ingest.RejectNegative)

	overlay(&cfg.Staffing.MinutesPerHour, env.Staffing.MinutesPerHour, defaults.Staffing.MinutesPerHour)
	overlay(&cfg.Staffing.ShiftHours, env.Staffing.ShiftHours, defaults.Staffing.ShiftHours)

	overlay(&cfg.Export.FileName, env.Export.FileName, defaults.Export.FileName)
	overlay(&cfg.Export.IncludeCharts, env.Export.IncludeCharts, defaults.Export.IncludeCharts)
}

func overlayServer(dst *ServerConfig, env, def ServerConfig) {
	overlay(&dst.Port, env.Port, def.Port)
	overlay(&dst.ReadTimeout, env.ReadTimeout, def.ReadTimeout)
	overlay(&dst.WriteTimeout, env.WriteTimeout, def.WriteTimeout)
	overlay(&dst.IdleTimeout, env.IdleTimeout, def.IdleTimeout)
	overlay(&dst.ShutdownTimeout, env.ShutdownTimeout, def.ShutdownTimeout)
	overlay(&dst.RequestTimeout, env.RequestTimeout, def.RequestTimeout)
	overlay(&dst.MaxUploadBytes, env.MaxUploadBytes, def.MaxUploadBytes)
}

func overlay[T comparable](dst *T, env, def T) {
	if env != def {
		*dst = env
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  90 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     5,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/forecast.log",
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Model: ModelConfig{
			SeasonalPeriods: DefaultSeasonalPeriods,
			Horizon:         DefaultForecastHorizon,
			MinSeasons:      DefaultMinSeasons,
			MaxIterations:   DefaultMaxIterations,
		},
		Ingest: IngestConfig{
			HeaderRows:     DefaultHeaderRows,
			RejectNegative: true,
		},
		Staffing: StaffingConfig{
			MinutesPerHour: DefaultMinutesPerHour,
			ShiftHours:     DefaultShiftHours,
		},
		Export: ExportConfig{
			FileName: DefaultExportFileName,
		},
	}
}
