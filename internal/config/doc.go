// Package config provides centralized configuration management for the
// forecast service. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FORECAST_* for namespacing:
//
//	FORECAST_SERVER_PORT=8080
//	FORECAST_MODEL_SEASONAL_PERIODS=39
//	FORECAST_MODEL_HORIZON=270
//	FORECAST_STAFFING_SHIFT_HOURS=8
//	FORECAST_LOGGING_LEVEL=info
//
// FORECAST_CONFIG_FILE points at an explicit YAML file; otherwise config.yaml
// and configs/config.yaml are tried in order.
//
// # Validation
//
// Every section carries go-playground/validator tags. Load fails when, for
// example, seasonal_periods or horizon is not positive.
package config
