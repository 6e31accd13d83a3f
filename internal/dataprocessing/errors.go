package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is matched by every *SchemaError
	ErrSchema = errors.New("invalid workbook schema")
	// ErrEmptyDataset is matched by every *EmptyDatasetError
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrDataQuality is matched by every *DataQualityError
	ErrDataQuality = errors.New("invalid cell value")
)

// SchemaError reports a workbook that cannot be read as Date/Calls/AHT
// columns.
type SchemaError struct {
	Sheet   string
	Columns int
	Reason  string
	Err     error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrSchema, e.Reason)
	if e.Sheet != "" {
		msg = fmt.Sprintf("%s (sheet %q)", msg, e.Sheet)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

func (e *SchemaError) Unwrap() error { return e.Err }

// EmptyDatasetError reports a sheet where no row carried a valid date
type EmptyDatasetError struct {
	Sheet     string
	TotalRows int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: none of %d data rows in sheet %q has a valid date", ErrEmptyDataset, e.TotalRows, e.Sheet)
}

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

// DataQualityError reports a cell whose value is numeric but not admissible
type DataQualityError struct {
	Row    int
	Column string
	Value  float64
	Reason string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("%s: row %d column %s: %s (%g)", ErrDataQuality, e.Row, e.Column, e.Reason, e.Value)
}

func (e *DataQualityError) Is(target error) bool { return target == ErrDataQuality }
