package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

const (
	excelDateFormat = "yyyy-mm-dd"
	// numFmtFixed2 is the built-in "0.00" format
	numFmtFixed2 = 2

	chartWidth  = 960
	chartHeight = 360
	// Rows between stacked charts on the Charts sheet
	chartRowSpan = 20
)

// ErrNoHistory is returned when charts are requested without actuals
var ErrNoHistory = errors.New("charts require the cleaned history of both metrics")

// WorkbookInput is everything rendered into one workbook
type WorkbookInput struct {
	Calls  domain.ForecastSeries
	AHT    domain.ForecastSeries
	Merged *domain.MergedForecast
	// History holds the cleaned actuals; only used for charts
	History []domain.CleanedSeries
}

// WorkbookOptions toggles optional workbook content
type WorkbookOptions struct {
	IncludeCharts bool
}

// Tables returns the three data tables in sheet order
func (in WorkbookInput) Tables() []domain.Table {
	merged := domain.MergedForecast{}
	if in.Merged != nil {
		merged = *in.Merged
	}
	return []domain.Table{
		in.Calls.Table(config.SheetCallsForecast),
		in.AHT.Table(config.SheetAHTForecast),
		merged.Table(config.SheetMergedForecast),
	}
}

func (in WorkbookInput) history(metric domain.Metric) (domain.CleanedSeries, bool) {
	for _, s := range in.History {
		if s.Metric == metric {
			return s, true
		}
	}
	return domain.CleanedSeries{}, false
}

// WorkbookWriter renders forecast results as an xlsx workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a writer. A nil logger falls back to slog.Default.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write renders the workbook and streams it to w
func (ww *WorkbookWriter) Write(w io.Writer, in WorkbookInput, opts WorkbookOptions) error {
	f, err := ww.Build(in, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build renders the workbook in memory. The caller must close the returned file.
func (ww *WorkbookWriter) Build(in WorkbookInput, opts WorkbookOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := ww.populate(f, in, opts); err != nil {
		f.Close()
		return nil, err
	}

	ww.logger.Debug("workbook built",
		slog.Int("calls_rows", in.Calls.Len()),
		slog.Int("aht_rows", in.AHT.Len()),
		slog.Bool("charts", opts.IncludeCharts))
	return f, nil
}

func (ww *WorkbookWriter) populate(f *excelize.File, in WorkbookInput, opts WorkbookOptions) error {
	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	tables := in.Tables()
	// The first table takes over the default sheet so no empty Sheet1 remains
	if err := f.SetSheetName(f.GetSheetName(0), tables[0].Name); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for i, table := range tables {
		if i > 0 {
			if _, err := f.NewSheet(table.Name); err != nil {
				return fmt.Errorf("failed to create sheet %q: %w", table.Name, err)
			}
		}
		if err := writeTable(f, table, styles); err != nil {
			return err
		}
	}

	if opts.IncludeCharts {
		if err := ww.addCharts(f, in, styles); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return nil
}

type sheetStyles struct {
	header int
	date   int
	number int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}

	dateFormat := excelDateFormat
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return s, fmt.Errorf("failed to create date style: %w", err)
	}

	s.number, err = f.NewStyle(&excelize.Style{NumFmt: numFmtFixed2})
	if err != nil {
		return s, fmt.Errorf("failed to create number style: %w", err)
	}
	return s, nil
}

// writeTable fills a sheet with a header row and the table rows. Date
// columns get the yyyy-mm-dd format; FTE is shown with two decimals.
func writeTable(f *excelize.File, table domain.Table, styles sheetStyles) error {
	sheet := table.Name

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}

	for i, row := range table.Rows {
		values := row
		if err := f.SetSheetRow(sheet, cellName(1, i+2), &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, sheet, err)
		}
	}

	lastCol := len(table.Columns)
	if err := f.SetCellStyle(sheet, "A1", cellName(lastCol, 1), styles.header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", columnName(lastCol), 16); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if table.Len() == 0 {
		return nil
	}
	lastRow := table.Len() + 1

	if idx := table.ColumnIndex(domain.DateColumn); idx >= 0 {
		col := idx + 1
		if err := f.SetCellStyle(sheet, cellName(col, 2), cellName(col, lastRow), styles.date); err != nil {
			return err
		}
	}
	if idx := table.ColumnIndex(domain.FTEColumn); idx >= 0 {
		col := idx + 1
		if err := f.SetCellStyle(sheet, cellName(col, 2), cellName(col, lastRow), styles.number); err != nil {
			return err
		}
	}
	return nil
}

// historyBlock is the column range of one metric on the History sheet
type historyBlock struct {
	metric domain.Metric
	// firstCol is the 1-based Date column; actuals and forecast follow it
	firstCol int
	rows     int
}

func (b historyBlock) ref(offset int) string {
	col := columnName(b.firstCol + offset)
	return fmt.Sprintf("'%s'!$%s$2:$%s$%d", config.SheetHistory, col, col, b.rows+1)
}

// addCharts writes the hidden History sheet and the Charts sheet with one
// actual-vs-forecast chart per metric and the FTE chart
func (ww *WorkbookWriter) addCharts(f *excelize.File, in WorkbookInput, styles sheetStyles) error {
	if _, err := f.NewSheet(config.SheetHistory); err != nil {
		return err
	}

	var blocks []historyBlock
	for i, forecast := range []domain.ForecastSeries{in.Calls, in.AHT} {
		actual, ok := in.history(forecast.Metric)
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrNoHistory, forecast.Metric)
		}
		block := historyBlock{metric: forecast.Metric, firstCol: i*4 + 1}
		rows, err := writeHistory(f, block, actual, forecast, styles)
		if err != nil {
			return err
		}
		block.rows = rows
		blocks = append(blocks, block)
	}
	if err := f.SetSheetVisible(config.SheetHistory, false); err != nil {
		return fmt.Errorf("failed to hide history sheet: %w", err)
	}

	if _, err := f.NewSheet(config.SheetCharts); err != nil {
		return err
	}

	row := 1
	for _, b := range blocks {
		chart := lineChart(b.metric.String()+" actual vs forecast",
			excelize.ChartSeries{
				Name:       fmt.Sprintf("'%s'!$%s$1", config.SheetHistory, columnName(b.firstCol+1)),
				Categories: b.ref(0),
				Values:     b.ref(1),
				Marker:     excelize.ChartMarker{Symbol: "none"},
			},
			excelize.ChartSeries{
				Name:       fmt.Sprintf("'%s'!$%s$1", config.SheetHistory, columnName(b.firstCol+2)),
				Categories: b.ref(0),
				Values:     b.ref(2),
				Marker:     excelize.ChartMarker{Symbol: "none"},
			})
		if err := f.AddChart(config.SheetCharts, cellName(1, row), chart); err != nil {
			return fmt.Errorf("failed to add %s chart: %w", b.metric, err)
		}
		row += chartRowSpan
	}

	if in.Merged != nil && in.Merged.Len() > 0 {
		last := in.Merged.Len() + 1
		sheet := config.SheetMergedForecast
		chart := lineChart("Projected FTE requirement", excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$D$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$D$2:$D$%d", sheet, last),
			Marker:     excelize.ChartMarker{Symbol: "none"},
		})
		if err := f.AddChart(config.SheetCharts, cellName(1, row), chart); err != nil {
			return fmt.Errorf("failed to add FTE chart: %w", err)
		}
	}
	return nil
}

// writeHistory lays out Date, <metric>_Actual and <metric>_Forecast over the
// history followed by the forecast horizon. It returns the data row count.
func writeHistory(f *excelize.File, b historyBlock, actual domain.CleanedSeries, forecast domain.ForecastSeries, styles sheetStyles) (int, error) {
	sheet := config.SheetHistory
	header := []any{domain.DateColumn, b.metric.String() + "_Actual", b.metric.ForecastColumn()}
	if err := f.SetSheetRow(sheet, cellName(b.firstCol, 1), &header); err != nil {
		return 0, err
	}

	row := 2
	for _, o := range actual.Observations {
		values := []any{o.Date, o.Value, nil}
		if err := f.SetSheetRow(sheet, cellName(b.firstCol, row), &values); err != nil {
			return 0, err
		}
		row++
	}
	for _, p := range forecast.Points {
		values := []any{p.Date, nil, p.Value}
		if err := f.SetSheetRow(sheet, cellName(b.firstCol, row), &values); err != nil {
			return 0, err
		}
		row++
	}

	rows := row - 2
	if rows > 0 {
		if err := f.SetCellStyle(sheet, cellName(b.firstCol, 2), cellName(b.firstCol, row-1), styles.date); err != nil {
			return 0, err
		}
	}
	return rows, nil
}

func lineChart(title string, series ...excelize.ChartSeries) *excelize.Chart {
	return &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{
			Width:  chartWidth,
			Height: chartHeight,
		},
		PlotArea: excelize.ChartPlotArea{ShowVal: false},
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
