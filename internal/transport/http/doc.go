// Package http implements the HTTP handlers of the forecast web service.
//
// Handlers stay thin: they parse query overrides, check the uploaded
// workbook and delegate to the services package. Every failure is written as
// an RFC 7807 problem document through the errors package.
//
// # Routes
//
//	POST /api/forecast           upload a workbook, download the forecast xlsx
//	POST /api/forecast/summary   upload a workbook, receive a JSON summary
//	GET  /api/health             overall health
//	GET  /api/health/ready       readiness, 503 while the pipeline is unusable
//	GET  /api/health/live        liveness and runtime stats
//	GET  /api/version            build information
//
// Uploads use multipart/form-data with the workbook in the "file" field.
// The query parameters seasonal_periods, horizon and charts override the
// configured defaults for one request.
//
// # Testing
//
// Handlers are tested with httptest against a chi router. The forecast
// service is replaced by a testify mock of ForecastServiceInterface.
package http
