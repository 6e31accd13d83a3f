package domain

import (
	"time"
)

// ModelSummary describes one fitted metric model
type ModelSummary struct {
	Metric          Metric    `json:"metric"`
	Observations    int       `json:"observations"`
	HistoryStart    time.Time `json:"history_start"`
	HistoryEnd      time.Time `json:"history_end"`
	ForecastStart   time.Time `json:"forecast_start"`
	ForecastEnd     time.Time `json:"forecast_end"`
	ForecastPoints  int       `json:"forecast_points"`
	SeasonalPeriods int       `json:"seasonal_periods"`
	Alpha           float64   `json:"alpha"`
	Beta            float64   `json:"beta"`
	Gamma           float64   `json:"gamma"`
	SSE             float64   `json:"sse"`
	MAE             float64   `json:"mae"`
	RMSE            float64   `json:"rmse"`
	MAPE            float64   `json:"mape"`
}

// StaffingSummary aggregates the FTE column of a merged forecast
type StaffingSummary struct {
	Rows     int       `json:"rows"`
	MeanFTE  float64   `json:"mean_fte"`
	MaxFTE   float64   `json:"max_fte"`
	MinFTE   float64   `json:"min_fte"`
	PeakDate time.Time `json:"peak_date"`
}

// ForecastSummary is the display-oriented outcome of one forecast run
type ForecastSummary struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	SourceRows  int             `json:"source_rows"`
	Models      []ModelSummary  `json:"models"`
	Staffing    StaffingSummary `json:"staffing"`
	FTE         []MergedRow     `json:"fte"`
}
