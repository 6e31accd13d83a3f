package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ManfreddAbrego/forecast-tool/internal/forecast"
	"github.com/ManfreddAbrego/forecast-tool/internal/staffing"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// SummaryInput carries the pieces of a finished run
type SummaryInput struct {
	RunID       string
	GeneratedAt time.Time
	SourceRows  int
	History     []domain.CleanedSeries
	Results     []*forecast.Result
	Merged      *domain.MergedForecast
}

// BuildSummary condenses a run into its display form. Models follow the
// order of Results.
func BuildSummary(in SummaryInput) domain.ForecastSummary {
	summary := domain.ForecastSummary{
		RunID:       in.RunID,
		GeneratedAt: in.GeneratedAt.UTC(),
		SourceRows:  in.SourceRows,
		Models:      make([]domain.ModelSummary, 0, len(in.Results)),
		Staffing:    staffing.Summarize(in.Merged),
		FTE:         []domain.MergedRow{},
	}

	for _, res := range in.Results {
		if res == nil {
			continue
		}
		summary.Models = append(summary.Models, modelSummary(res, historyOf(in.History, res.Series.Metric)))
	}
	if in.Merged != nil {
		summary.FTE = in.Merged.Rows
	}
	return summary
}

func historyOf(history []domain.CleanedSeries, metric domain.Metric) domain.CleanedSeries {
	for _, s := range history {
		if s.Metric == metric {
			return s
		}
	}
	return domain.CleanedSeries{Metric: metric}
}

func modelSummary(res *forecast.Result, history domain.CleanedSeries) domain.ModelSummary {
	ms := domain.ModelSummary{
		Metric:         res.Series.Metric,
		Observations:   history.Len(),
		HistoryEnd:     history.LastDate(),
		ForecastPoints: res.Series.Len(),
	}
	if history.Len() > 0 {
		ms.HistoryStart = history.Observations[0].Date
	}
	if n := res.Series.Len(); n > 0 {
		ms.ForecastStart = res.Series.Points[0].Date
		ms.ForecastEnd = res.Series.Points[n-1].Date
	}
	if m := res.Model; m != nil {
		ms.Observations = m.Observations
		ms.SeasonalPeriods = m.SeasonalPeriods
		ms.Alpha = m.Alpha
		ms.Beta = m.Beta
		ms.Gamma = m.Gamma
		ms.SSE = m.SSE
		ms.MAE = m.Metrics.MAE
		ms.RMSE = m.Metrics.RMSE
		ms.MAPE = m.Metrics.MAPE
	}
	return ms
}

// WriteSummaryJSON writes the summary as indented JSON
func WriteSummaryJSON(w io.Writer, summary domain.ForecastSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}
