// Package app wires the forecast web service: configuration, logging,
// OpenTelemetry, the forecast and health services, the chi router and the
// HTTP server lifecycle.
//
// Middleware order is RequestID, RealIP, OTel, request log with panic
// recovery, security headers, CORS and the request timeout. The forecast
// routes are additionally rate limited.
//
// Run blocks until SIGINT or SIGTERM and then shuts the server and the
// telemetry providers down within the configured shutdown timeout. The
// package never calls os.Exit; errors are returned to main.
package app
