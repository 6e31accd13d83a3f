// Package shared holds helpers used by more than one internal package.
//
// The testutil subpackage provides a capturing slog handler for asserting on
// log output and builders for in-memory spreadsheet fixtures:
//
//	logger, logs := testutil.NewTestLogger(t)
//	book := testutil.NewWorkbook(t, testutil.DefaultHeader, testutil.SeasonalRows(start, 120, 39))
//
// Nothing in this package carries forecasting logic.
package shared
