// Package dataprocessing turns an uploaded call-center history workbook into
// dated observation series.
//
// The Loader reads the first worksheet (or a configured one) with excelize,
// skips the header row and treats the first three columns positionally as
// Date, Calls and AHT. Rows without a usable date are dropped; blank or
// non-numeric Calls/AHT cells become missing values and the row is kept.
//
//	loader := dataprocessing.NewLoader(dataprocessing.DefaultOptions(), logger)
//	result, err := loader.LoadFile(ctx, "history.xlsx")
//	if err != nil {
//	    return err
//	}
//	calls := dataprocessing.BuildSeries(result.Records, domain.MetricCalls)
//
// BuildSeries drops missing values, stable-sorts by date and keeps the first
// row of every date, which yields the input expected by the forecast engine.
//
// Failures are reported as *SchemaError, *EmptyDatasetError or
// *DataQualityError and match ErrSchema, ErrEmptyDataset and ErrDataQuality
// with errors.Is.
package dataprocessing
