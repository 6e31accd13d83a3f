// Package exporter renders forecast results for people and spreadsheets.
//
// WorkbookWriter produces the xlsx deliverable with the sheets
// "Calls Forecast", "AHT Forecast" and "Merged Forecast", plus optional
// "Charts" and hidden "History" sheets. CSVWriter writes the same tables as
// UTF-8 CSV files with a BOM so Excel detects the encoding.
// BuildSummary condenses a run into the JSON document served by the API and
// printed by the CLI.
//
//	writer := exporter.NewWorkbookWriter(logger)
//	err := writer.Write(w, exporter.WorkbookInput{Calls: calls, AHT: aht, Merged: merged}, exporter.WorkbookOptions{})
package exporter
