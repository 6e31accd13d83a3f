// Package services implements the business logic layer between the HTTP
// handlers, the CLI and the forecasting packages.
//
// ForecastService runs one forecast per call: it loads the workbook, fits the
// Calls and AHT models concurrently, merges them into the staffing table and
// renders the results. Every run gets a run id that is attached to its log
// records and spans.
//
//	svc, err := services.NewForecastService(cfg, metrics, logger)
//	result, err := svc.Run(ctx, upload, services.RunOptions{Horizon: 90})
//	err = svc.WriteWorkbook(ctx, w, result, exporter.WorkbookOptions{})
//
// HealthService reports liveness, readiness and version information.
package services
