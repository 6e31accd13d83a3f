package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// Positional column layout of the input sheet
const (
	colDate = iota
	colCalls
	colAHT
	requiredColumns
)

// maxExcelSerial is the serial of 9999-12-31, the last date Excel can hold
const maxExcelSerial = 2958465

// dateLayouts are tried in order for date cells stored as text
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2006/01/02",
	time.RFC3339,
}

// Options configures how a workbook is read
type Options struct {
	// Sheet is the worksheet to read; empty selects the first sheet
	Sheet string
	// HeaderRows is the number of leading rows to skip
	HeaderRows int
	// RejectNegative fails the load on negative Calls or AHT instead of
	// treating them as missing
	RejectNegative bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		HeaderRows:     config.DefaultHeaderRows,
		RejectNegative: true,
	}
}

// OptionsFromConfig maps the ingest section of the application config
func OptionsFromConfig(cfg config.IngestConfig) Options {
	return Options{
		Sheet:          cfg.Sheet,
		HeaderRows:     cfg.HeaderRows,
		RejectNegative: cfg.RejectNegative,
	}
}

// LoadStats counts what happened to the data rows of a sheet
type LoadStats struct {
	TotalRows      int `json:"total_rows"`
	KeptRows       int `json:"kept_rows"`
	BlankDates     int `json:"blank_dates"`
	InvalidDates   int `json:"invalid_dates"`
	MissingCalls   int `json:"missing_calls"`
	MissingAHT     int `json:"missing_aht"`
	DuplicateDates int `json:"duplicate_dates"`
}

// LoadResult holds the records read from one sheet
type LoadResult struct {
	Sheet   string
	Records []domain.RawRecord
	Stats   LoadStats
}

// Series builds the cleaned series of one metric from the loaded records
func (r *LoadResult) Series(metric domain.Metric) domain.CleanedSeries {
	return BuildSeries(r.Records, metric)
}

// Loader reads Date/Calls/AHT workbooks
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HeaderRows < 0 {
		opts.HeaderRows = 0
	}
	return &Loader{
		opts:   opts,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// LoadFile reads the workbook at path
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &SchemaError{Reason: "unreadable workbook " + path, Err: err}
	}
	defer f.Close()

	return l.read(ctx, f)
}

// Load reads a workbook from r
func (l *Loader) Load(ctx context.Context, r io.Reader) (*LoadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &SchemaError{Reason: "unreadable workbook", Err: err}
	}
	defer f.Close()

	return l.read(ctx, f)
}

func (l *Loader) read(ctx context.Context, f *excelize.File) (*LoadResult, error) {
	sheet, err := l.resolveSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &SchemaError{Sheet: sheet, Reason: "cannot read rows", Err: err}
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	// Columns are positional, so any other count means the layout is unknown
	if width != requiredColumns {
		return nil, &SchemaError{
			Sheet:   sheet,
			Columns: width,
			Reason:  fmt.Sprintf("expected exactly %d columns (Date, Calls, AHT), found %d", requiredColumns, width),
		}
	}

	result := &LoadResult{Sheet: sheet}
	for i := l.opts.HeaderRows; i < len(rows); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result.Stats.TotalRows++
		record, ok, err := l.parseRow(ctx, i+1, rows[i], &result.Stats)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Records = append(result.Records, record)
		}
	}

	if result.Stats.KeptRows == 0 {
		return nil, &EmptyDatasetError{Sheet: sheet, TotalRows: result.Stats.TotalRows}
	}
	result.Stats.DuplicateDates = CountDuplicateDates(result.Records)

	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("sheet", sheet),
		slog.Int("total_rows", result.Stats.TotalRows),
		slog.Int("kept_rows", result.Stats.KeptRows),
		slog.Int("blank_dates", result.Stats.BlankDates),
		slog.Int("invalid_dates", result.Stats.InvalidDates),
		slog.Int("missing_calls", result.Stats.MissingCalls),
		slog.Int("missing_aht", result.Stats.MissingAHT),
		slog.Int("duplicate_dates", result.Stats.DuplicateDates))

	return result, nil
}

func (l *Loader) resolveSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", &SchemaError{Reason: "workbook has no sheets"}
	}
	if l.opts.Sheet == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == l.opts.Sheet {
			return name, nil
		}
	}
	return "", &SchemaError{Sheet: l.opts.Sheet, Reason: "sheet not found"}
}

// parseRow converts one sheet row. ok is false when the row has no usable date.
func (l *Loader) parseRow(ctx context.Context, rowNum int, row []string, stats *LoadStats) (domain.RawRecord, bool, error) {
	rawDate := cell(row, colDate)
	if rawDate == "" {
		stats.BlankDates++
		return domain.RawRecord{}, false, nil
	}

	date, err := ParseDate(rawDate)
	if err != nil {
		stats.InvalidDates++
		l.logger.WarnContext(ctx, "skipping row with invalid date",
			slog.Int("row", rowNum),
			slog.String("value", rawDate))
		return domain.RawRecord{}, false, nil
	}

	record := domain.RawRecord{Row: rowNum, Date: date}

	record.Calls, err = l.parseMetric(rowNum, domain.MetricCalls, cell(row, colCalls))
	if err != nil {
		return domain.RawRecord{}, false, err
	}
	record.AHT, err = l.parseMetric(rowNum, domain.MetricAHT, cell(row, colAHT))
	if err != nil {
		return domain.RawRecord{}, false, err
	}

	if record.Calls == nil {
		stats.MissingCalls++
	}
	if record.AHT == nil {
		stats.MissingAHT++
	}
	stats.KeptRows++
	return record, true, nil
}

func (l *Loader) parseMetric(rowNum int, metric domain.Metric, raw string) (*float64, error) {
	v, ok := ParseNumber(raw)
	if !ok {
		return nil, nil
	}
	if v < 0 {
		if l.opts.RejectNegative {
			return nil, &DataQualityError{Row: rowNum, Column: metric.String(), Value: v, Reason: "negative value"}
		}
		return nil, nil
	}
	return &v, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseDate parses an Excel serial number or one of the accepted text
// layouts and truncates the result to a UTC calendar date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < 1 || serial > maxExcelSerial || math.IsNaN(serial) {
			return time.Time{}, fmt.Errorf("date serial %s out of range", raw)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %s: %w", raw, err)
		}
		return truncateDay(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseNumber parses a numeric cell. Blank, non-numeric and non-finite
// values are reported as missing.
func ParseNumber(raw string) (float64, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}
