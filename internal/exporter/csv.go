package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// utf8BOM helps Excel recognise UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes tables as CSV files into a directory
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at dir. A nil logger falls back to
// slog.Default.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteTables writes each table to <dir>/<slug of table name>.csv and
// returns the file paths in table order
func (w *CSVWriter) WriteTables(tables ...domain.Table) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for _, table := range tables {
		path := filepath.Join(w.dir, fileSlug(table.Name)+".csv")
		if err := w.WriteCSV(path, WriteOptions{
			Headers:   table.Columns,
			Records:   tableRecords(table),
			BOMPrefix: true,
		}); err != nil {
			return nil, fmt.Errorf("failed to write table %q: %w", table.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCSV writes headers and records to filePath, replacing any existing file
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if err := writeRecords(file, options.Headers, options.Records); err != nil {
		return err
	}
	return file.Close()
}

// WriteTable streams a single table as CSV, without BOM, to out
func WriteTable(out io.Writer, table domain.Table) error {
	return writeRecords(out, table.Columns, tableRecords(table))
}

func writeRecords(out io.Writer, headers []string, records [][]string) error {
	writer := csv.NewWriter(out)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func tableRecords(table domain.Table) [][]string {
	records := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v)
		}
		records[i] = record
	}
	return records
}
