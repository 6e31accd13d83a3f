package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/ManfreddAbrego/forecast-tool/internal/dataprocessing"
	"github.com/ManfreddAbrego/forecast-tool/internal/forecast"
	"github.com/ManfreddAbrego/forecast-tool/internal/staffing"
	"github.com/ManfreddAbrego/forecast-tool/internal/validation"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeInvalidUpload    = "/errors/upload/invalid"
)

// Forecast pipeline error types
const (
	TypeSchema           = "/errors/forecast/schema"
	TypeEmptyDataset     = "/errors/forecast/empty-dataset"
	TypeDataQuality      = "/errors/forecast/data-quality"
	TypeInsufficientData = "/errors/forecast/insufficient-data"
	TypeFitDivergence    = "/errors/forecast/fit-divergence"
	TypeAlignment        = "/errors/forecast/alignment"
)

// Kind returns a short label of the error class for metrics and logs. It is
// empty for nil errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, dataprocessing.ErrSchema):
		return "schema"
	case errors.Is(err, dataprocessing.ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, dataprocessing.ErrDataQuality):
		return "data_quality"
	case errors.Is(err, forecast.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, forecast.ErrFitDivergence):
		return "fit_divergence"
	case errors.Is(err, staffing.ErrAlignment):
		return "alignment"
	default:
		return "internal"
	}
}

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("kind", Kind(err)),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	h.respond(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	if problem := uploadProblem(err, path); problem != nil {
		return problem
	}
	if problem := forecastProblem(err, path); problem != nil {
		return problem
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

func uploadProblem(err error, path string) *ProblemDetails {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			fmt.Sprintf("The request body exceeds the limit of %d bytes", maxBytes.Limit),
			path,
		).WithExtension("limit_bytes", maxBytes.Limit)

	case errors.Is(err, validation.ErrFileTooLarge):
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			err.Error(),
			path,
		)

	case errors.Is(err, validation.ErrNotExcelFile),
		errors.Is(err, validation.ErrTemporaryFile),
		errors.Is(err, validation.ErrNotWorkbook),
		errors.Is(err, validation.ErrEmptyFile):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidUpload,
			"Invalid Upload",
			err.Error(),
			path,
		)
	}
	return nil
}

func forecastProblem(err error, path string) *ProblemDetails {
	var (
		schemaErr    *dataprocessing.SchemaError
		emptyErr     *dataprocessing.EmptyDatasetError
		qualityErr   *dataprocessing.DataQualityError
		shortErr     *forecast.InsufficientDataError
		divergeErr   *forecast.FitDivergenceError
		alignmentErr *staffing.AlignmentError
	)

	switch {
	case errors.As(err, &schemaErr):
		p := NewProblemDetails(http.StatusUnprocessableEntity, TypeSchema,
			"Invalid Workbook Layout", schemaErr.Error(), path)
		if schemaErr.Sheet != "" {
			p.WithExtension("sheet", schemaErr.Sheet)
		}
		return p

	case errors.As(err, &emptyErr):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeEmptyDataset,
			"Empty Dataset", emptyErr.Error(), path).
			WithExtension("sheet", emptyErr.Sheet).
			WithExtension("total_rows", emptyErr.TotalRows)

	case errors.As(err, &qualityErr):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeDataQuality,
			"Invalid Cell Value", qualityErr.Error(), path).
			WithExtension("row", qualityErr.Row).
			WithExtension("column", qualityErr.Column)

	case errors.As(err, &shortErr):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeInsufficientData,
			"Insufficient History", shortErr.Error(), path).
			WithExtension("metric", shortErr.Metric.String()).
			WithExtension("observations", shortErr.Count).
			WithExtension("required", shortErr.Required)

	case errors.As(err, &divergeErr):
		return NewProblemDetails(http.StatusInternalServerError, TypeFitDivergence,
			"Model Fit Failed", divergeErr.Error(), path).
			WithExtension("metric", divergeErr.Metric.String())

	case errors.As(err, &alignmentErr):
		return NewProblemDetails(http.StatusInternalServerError, TypeAlignment,
			"Forecasts Not Aligned", alignmentErr.Error(), path)
	}
	return nil
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "MISSING_FILE":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	h.respond(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	h.respond(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	h.respond(w, r, problem)
}

// JSON helper for consistent JSON responses
func (h *ErrorHandler) JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func (h *ErrorHandler) respond(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	if err := problem.Write(w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write problem response",
			slog.String("error", err.Error()))
	}
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
