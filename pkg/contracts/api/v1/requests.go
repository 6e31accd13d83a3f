// Package api contains API contract definitions for the forecast service.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// ForecastRequest carries the optional query overrides of a forecast upload.
// Zero values fall back to the configured model defaults.
type ForecastRequest struct {
	SeasonalPeriods int  `json:"seasonal_periods" query:"seasonal_periods" validate:"omitempty,min=1,max=366"`
	Horizon         int  `json:"horizon" query:"horizon" validate:"omitempty,min=1,max=3660"`
	Charts          bool `json:"charts" query:"charts"`
}

// SummaryResponse wraps a forecast summary
type SummaryResponse struct {
	Status string                  `json:"status"`
	Data   *domain.ForecastSummary `json:"data"`
}
