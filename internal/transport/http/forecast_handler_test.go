package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/internal/dataprocessing"
	apierrors "github.com/ManfreddAbrego/forecast-tool/internal/errors"
	"github.com/ManfreddAbrego/forecast-tool/internal/exporter"
	"github.com/ManfreddAbrego/forecast-tool/internal/forecast"
	"github.com/ManfreddAbrego/forecast-tool/internal/middleware"
	"github.com/ManfreddAbrego/forecast-tool/internal/services"
	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

// MockForecastService implements ForecastServiceInterface for testing
type MockForecastService struct {
	mock.Mock
}

func (m *MockForecastService) Run(ctx context.Context, r io.Reader, opts services.RunOptions) (*services.RunResult, error) {
	args := m.Called(ctx, r, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RunResult), args.Error(1)
}

func (m *MockForecastService) WriteWorkbook(ctx context.Context, w io.Writer, result *services.RunResult, opts exporter.WorkbookOptions) error {
	args := m.Called(ctx, w, result, opts)
	return args.Error(0)
}

var workbookBytes = []byte("PK\x03\x04 workbook")

func sampleRunResult() *services.RunResult {
	day := testutil.Day(2025, time.January, 1)
	calls := domain.ForecastSeries{Metric: domain.MetricCalls, Points: []domain.ForecastPoint{{Date: day, Value: 960}}}
	aht := domain.ForecastSeries{Metric: domain.MetricAHT, Points: []domain.ForecastPoint{{Date: day, Value: 6}}}

	return &services.RunResult{
		RunID:       "run-1",
		GeneratedAt: day,
		Load:        &dataprocessing.LoadResult{Stats: dataprocessing.LoadStats{TotalRows: 90, KeptRows: 90}},
		Calls:       &forecast.Result{Series: calls},
		AHT:         &forecast.Result{Series: aht},
		Merged: &domain.MergedForecast{Rows: []domain.MergedRow{
			{Date: day, CallsForecast: 960, AHTForecast: 6, FTE: 12},
		}},
	}
}

func uploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile(config.UploadFormField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter(t *testing.T, svc *MockForecastService, opts ForecastHandlerOptions) http.Handler {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewForecastHandler(svc, opts, logger, nil)

	r := chi.NewRouter()
	r.Mount("/api/forecast", handler.Routes())
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestForecastHandler_Forecast(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		defaults   bool
		wantOpts   services.RunOptions
		wantCharts bool
	}{
		{name: "defaults", target: "/api/forecast"},
		{
			name:       "overrides",
			target:     "/api/forecast?seasonal_periods=7&horizon=30&charts=true",
			wantOpts:   services.RunOptions{SeasonalPeriods: 7, Horizon: 30},
			wantCharts: true,
		},
		{name: "configured charts", target: "/api/forecast", defaults: true, wantCharts: true},
		{name: "charts disabled explicitly", target: "/api/forecast?charts=false", defaults: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockForecastService)
			result := sampleRunResult()
			svc.On("Run", mock.Anything, mock.Anything, tt.wantOpts).Return(result, nil)
			svc.On("WriteWorkbook", mock.Anything, mock.Anything, result, exporter.WorkbookOptions{IncludeCharts: tt.wantCharts}).
				Run(func(args mock.Arguments) {
					args.Get(1).(io.Writer).Write(workbookBytes)
				}).
				Return(nil)

			router := newTestRouter(t, svc, ForecastHandlerOptions{IncludeCharts: tt.defaults})
			w := serve(router, uploadRequest(t, tt.target, "history.xlsx", workbookBytes))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, config.XLSXContentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="accurate_forecast_output.xlsx"`, w.Header().Get("Content-Disposition"))
			assert.Equal(t, "run-1", w.Header().Get("X-Run-ID"))
			assert.Equal(t, workbookBytes, w.Body.Bytes())
			svc.AssertExpectations(t)
		})
	}
}

func TestForecastHandler_Summary(t *testing.T) {
	svc := new(MockForecastService)
	svc.On("Run", mock.Anything, mock.Anything, services.RunOptions{}).Return(sampleRunResult(), nil)

	router := newTestRouter(t, svc, ForecastHandlerOptions{})
	w := serve(router, uploadRequest(t, "/api/forecast/summary", "history.xlsx", workbookBytes))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Status string                 `json:"status"`
		Data   domain.ForecastSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "run-1", body.Data.RunID)
	assert.Equal(t, 90, body.Data.SourceRows)
	assert.Len(t, body.Data.Models, 2)
	assert.Equal(t, 12.0, body.Data.Staffing.MaxFTE)
	svc.AssertNotCalled(t, "WriteWorkbook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForecastHandler_LogsRequestID(t *testing.T) {
	svc := new(MockForecastService)
	svc.On("Run", mock.Anything, mock.Anything, services.RunOptions{}).Return(sampleRunResult(), nil)

	logger, logs := testutil.NewTestLogger(t)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/forecast", NewForecastHandler(svc, ForecastHandlerOptions{}, logger, nil).Routes())

	req := uploadRequest(t, "/api/forecast/summary", "history.xlsx", workbookBytes)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "forecast requested")
	assert.True(t, logs.ContainsAttr("request_id", "req-42"))
}

func TestForecastHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		opts       ForecastHandlerOptions
		wantStatus int
		wantType   string
	}{
		{
			name: "non-numeric horizon",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast?horizon=soon", "history.xlsx", workbookBytes)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "zero horizon",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast?horizon=0", "history.xlsx", workbookBytes)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "zero season",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast/summary?seasonal_periods=0", "history.xlsx", workbookBytes)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "negative horizon",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast?horizon=-3", "history.xlsx", workbookBytes)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "empty horizon",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast?horizon=", "history.xlsx", workbookBytes)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "season out of range",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast?seasonal_periods=400", "history.xlsx", workbookBytes)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast", "", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast", "history.csv", []byte("Date,Calls,AHT\n"))
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeInvalidUpload,
		},
		{
			name: "not a zip",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast", "history.xlsx", []byte("plain text"))
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeInvalidUpload,
		},
		{
			name: "file over limit",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/forecast", "history.xlsx", append(workbookBytes, make([]byte, 64)...))
			},
			opts:       ForecastHandlerOptions{MaxUploadBytes: 32},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   apierrors.TypePayloadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockForecastService)
			router := newTestRouter(t, svc, tt.opts)

			w := serve(router, tt.req(t))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, apierrors.ProblemContentType, w.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestForecastHandler_ValidationDetails(t *testing.T) {
	router := newTestRouter(t, new(MockForecastService), ForecastHandlerOptions{})

	w := serve(router, uploadRequest(t, "/api/forecast?horizon=0&seasonal_periods=999", "history.xlsx", workbookBytes))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Details apierrors.ValidationErrors `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Details.Errors, 2)
	assert.Equal(t, apierrors.ValidationError{Field: "horizon", Message: "must be at least 1"}, body.Details.Errors[0])
	assert.Equal(t, "seasonal_periods", body.Details.Errors[1].Field)
}

func TestForecastHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "schema",
			err:        &dataprocessing.SchemaError{Reason: "expected 3 columns"},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeSchema,
		},
		{
			name:       "insufficient data",
			err:        &forecast.InsufficientDataError{Metric: domain.MetricAHT, Count: 40, Required: 78},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeInsufficientData,
		},
		{
			name:       "fit divergence",
			err:        &forecast.FitDivergenceError{Metric: domain.MetricCalls, Reason: "not finite"},
			wantStatus: http.StatusInternalServerError,
			wantType:   apierrors.TypeFitDivergence,
		},
		{
			name:       "timeout",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apierrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockForecastService)
			svc.On("Run", mock.Anything, mock.Anything, services.RunOptions{}).Return(nil, tt.err)
			router := newTestRouter(t, svc, ForecastHandlerOptions{})

			w := serve(router, uploadRequest(t, "/api/forecast", "history.xlsx", workbookBytes))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
		})
	}
}
