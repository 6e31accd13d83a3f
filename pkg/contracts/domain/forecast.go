package domain

import (
	"time"
)

// Metric identifies one of the forecastable columns of the input workbook
type Metric string

const (
	// MetricCalls is the daily call volume
	MetricCalls Metric = "Calls"
	// MetricAHT is the average handle time per call, in minutes
	MetricAHT Metric = "AHT"
)

// String returns the column label of the metric
func (m Metric) String() string {
	return string(m)
}

// ForecastColumn returns the column label used for the metric's forecast
func (m Metric) ForecastColumn() string {
	return string(m) + "_Forecast"
}

// DateColumn is the shared date column label in every exported table
const DateColumn = "Date"

// FTEColumn is the staffing column label in the merged table
const FTEColumn = "FTE"

// RawRecord is one parsed input row. Calls and AHT are nil when the cell was
// blank or not numeric.
type RawRecord struct {
	Row   int       `json:"row"`
	Date  time.Time `json:"date"`
	Calls *float64  `json:"calls,omitempty"`
	AHT   *float64  `json:"aht,omitempty"`
}

// Value returns the record's value for the given metric
func (r RawRecord) Value(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricCalls:
		v = r.Calls
	case MetricAHT:
		v = r.AHT
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Observation is a single dated value of a metric
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// CleanedSeries is a non-null, date-ordered, date-unique series of one metric
type CleanedSeries struct {
	Metric       Metric        `json:"metric"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations
func (s CleanedSeries) Len() int {
	return len(s.Observations)
}

// Values returns the observation values in order
func (s CleanedSeries) Values() []float64 {
	values := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		values[i] = o.Value
	}
	return values
}

// LastDate returns the date of the final observation, or the zero time
func (s CleanedSeries) LastDate() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[len(s.Observations)-1].Date
}

// ForecastPoint is a predicted value for one future date
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastSeries is the point forecast of one metric over the horizon
type ForecastSeries struct {
	Metric Metric          `json:"metric"`
	Points []ForecastPoint `json:"points"`
}

// Len returns the number of forecast points
func (f ForecastSeries) Len() int {
	return len(f.Points)
}

// Table returns the series as a [Date, <metric>_Forecast] table
func (f ForecastSeries) Table(name string) Table {
	t := Table{
		Name:    name,
		Columns: []string{DateColumn, f.Metric.ForecastColumn()},
		Rows:    make([][]any, 0, len(f.Points)),
	}
	for _, p := range f.Points {
		t.Rows = append(t.Rows, []any{p.Date, p.Value})
	}
	return t
}

// MergedRow joins the Calls and AHT forecasts of one date with its FTE
type MergedRow struct {
	Date          time.Time `json:"date"`
	CallsForecast float64   `json:"calls_forecast"`
	AHTForecast   float64   `json:"aht_forecast"`
	FTE           float64   `json:"fte"`
}

// MergedForecast is the inner join of the Calls and AHT forecasts
type MergedForecast struct {
	Rows []MergedRow `json:"rows"`
}

// Len returns the number of joined rows
func (m MergedForecast) Len() int {
	return len(m.Rows)
}

// Table returns the merged forecast as a [Date, Calls_Forecast, AHT_Forecast, FTE] table
func (m MergedForecast) Table(name string) Table {
	t := Table{
		Name: name,
		Columns: []string{
			DateColumn,
			MetricCalls.ForecastColumn(),
			MetricAHT.ForecastColumn(),
			FTEColumn,
		},
		Rows: make([][]any, 0, len(m.Rows)),
	}
	for _, r := range m.Rows {
		t.Rows = append(t.Rows, []any{r.Date, r.CallsForecast, r.AHTForecast, r.FTE})
	}
	return t
}
