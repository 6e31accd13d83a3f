package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	apierrors "github.com/ManfreddAbrego/forecast-tool/internal/errors"
	"github.com/ManfreddAbrego/forecast-tool/internal/exporter"
	"github.com/ManfreddAbrego/forecast-tool/internal/middleware"
	"github.com/ManfreddAbrego/forecast-tool/internal/services"
	"github.com/ManfreddAbrego/forecast-tool/internal/validation"
	api "github.com/ManfreddAbrego/forecast-tool/pkg/contracts/api/v1"
)

// multipartOverhead is added to the upload limit for boundaries and headers
const multipartOverhead = 1 << 20

// ForecastServiceInterface is the part of the forecast service used by the handler
type ForecastServiceInterface interface {
	Run(ctx context.Context, r io.Reader, opts services.RunOptions) (*services.RunResult, error)
	WriteWorkbook(ctx context.Context, w io.Writer, result *services.RunResult, opts exporter.WorkbookOptions) error
}

// ForecastHandlerOptions configures upload limits and the download
type ForecastHandlerOptions struct {
	MaxUploadBytes int64
	FileName       string
	// IncludeCharts is used when the request has no charts parameter
	IncludeCharts bool
}

// ForecastHandlerOptionsFromConfig maps the server and export sections
func ForecastHandlerOptionsFromConfig(cfg *config.Config) ForecastHandlerOptions {
	return ForecastHandlerOptions{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		FileName:       cfg.Export.FileName,
		IncludeCharts:  cfg.Export.IncludeCharts,
	}
}

// ForecastHandler accepts workbook uploads and returns forecasts
type ForecastHandler struct {
	service      ForecastServiceInterface
	files        *validation.FileValidator
	validate     *validator.Validate
	opts         ForecastHandlerOptions
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(service ForecastServiceInterface, opts ForecastHandlerOptions, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ForecastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	if opts.FileName == "" {
		opts.FileName = config.DefaultExportFileName
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
	})

	return &ForecastHandler{
		service:      service,
		files:        validation.NewFileValidator(logger),
		validate:     v,
		opts:         opts,
		logger:       logger.With(slog.String("handler", "forecast")),
		errorHandler: errorHandler,
	}
}

// Routes returns the forecast routes
func (h *ForecastHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Forecast)
	r.Post("/summary", h.Summary)
	return r
}

// Forecast handles POST /api/forecast and responds with the xlsx workbook
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	req, result, ok := h.run(w, r)
	if !ok {
		return
	}

	charts := h.opts.IncludeCharts
	if r.URL.Query().Has("charts") {
		charts = req.Charts
	}

	var buf bytes.Buffer
	if err := h.service.WriteWorkbook(r.Context(), &buf, result, exporter.WorkbookOptions{IncludeCharts: charts}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", config.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.opts.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", result.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to send workbook",
			slog.String("error", err.Error()),
			slog.String("run_id", result.RunID))
	}
}

// Summary handles POST /api/forecast/summary and responds with JSON
func (h *ForecastHandler) Summary(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.run(w, r)
	if !ok {
		return
	}

	summary := result.Summary()
	w.Header().Set("X-Run-ID", result.RunID)
	render.JSON(w, r, api.SummaryResponse{Status: "success", Data: &summary})
}

// run parses the request, validates the upload and runs the forecast. It
// writes the problem response itself and reports false on failure.
func (h *ForecastHandler) run(w http.ResponseWriter, r *http.Request) (api.ForecastRequest, *services.RunResult, bool) {
	ctx := r.Context()

	req, err := h.parseRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, nil, false
	}

	upload, name, err := h.openUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, nil, false
	}
	defer upload.Close()

	h.logger.InfoContext(ctx, "forecast requested",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("file", name),
		slog.Int("seasonal_periods", req.SeasonalPeriods),
		slog.Int("horizon", req.Horizon))

	result, err := h.service.Run(ctx, upload, services.RunOptions{
		SeasonalPeriods: req.SeasonalPeriods,
		Horizon:         req.Horizon,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, nil, false
	}
	return req, result, true
}

func (h *ForecastHandler) parseRequest(r *http.Request) (api.ForecastRequest, error) {
	var req api.ForecastRequest
	query := r.URL.Query()
	var fieldErrs []apierrors.ValidationError

	// A zero in the request means zero, not "use the default"
	parseInt := func(name string, dst *int) {
		if !query.Has(name) {
			return
		}
		v, err := strconv.Atoi(query.Get(name))
		if err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: name, Message: "must be an integer"})
			return
		}
		if v < 1 {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: name, Message: "must be at least 1"})
			return
		}
		*dst = v
	}
	parseInt("seasonal_periods", &req.SeasonalPeriods)
	parseInt("horizon", &req.Horizon)

	if query.Has("charts") {
		v, err := strconv.ParseBool(query.Get("charts"))
		if err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: "charts", Message: "must be a boolean"})
		}
		req.Charts = v
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return req, apierrors.InvalidRequestWithError(err)
		}
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param()),
			})
		}
	}

	if len(fieldErrs) > 0 {
		return req, apierrors.NewValidationErrors(fieldErrs)
	}
	return req, nil
}

// openUpload returns the uploaded workbook after checking its name, size and
// signature
func (h *ForecastHandler) openUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile(config.UploadFormField)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, "", err
		}
		return nil, "", apierrors.ErrMissingFile
	}

	head := make([]byte, validation.SignatureLen)
	n, err := file.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, "", apierrors.InvalidRequestWithError(err)
	}

	if err := h.files.ValidateUpload(header.Filename, header.Size, h.opts.MaxUploadBytes, head[:n]); err != nil {
		file.Close()
		return nil, "", err
	}
	return file, header.Filename, nil
}
