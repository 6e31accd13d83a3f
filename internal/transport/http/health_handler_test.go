package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManfreddAbrego/forecast-tool/internal/config"
	"github.com/ManfreddAbrego/forecast-tool/internal/services"
	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts"
)

func newHealthRouter(t *testing.T, withForecast bool) http.Handler {
	logger, _ := testutil.NewTestLogger(t)

	var forecast *services.ForecastService
	if withForecast {
		var err error
		forecast, err = services.NewForecastService(config.Default(), nil, logger)
		require.NoError(t, err)
	}

	h := NewHealthHandler(services.NewHealthService("v1.0.0-test", "2026-01-01T00:00:00Z", forecast, logger), logger)

	r := chi.NewRouter()
	r.Get("/api/health", h.HealthCheck)
	r.Get("/api/health/ready", h.ReadinessCheck)
	r.Get("/api/health/live", h.LivenessCheck)
	r.Get("/api/version", h.Version)
	return r
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthHandler(t *testing.T) {
	router := newHealthRouter(t, true)

	tests := []struct {
		path       string
		wantStatus string
	}{
		{path: "/api/health", wantStatus: "ok"},
		{path: "/api/health/ready", wantStatus: "ready"},
		{path: "/api/health/live", wantStatus: "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := getJSON(t, router, tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "v1.0.0-test", body["version"])
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	router := newHealthRouter(t, false)

	code, body := getJSON(t, router, "/api/health/ready")

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body["status"])
	deps, ok := body["services"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, deps, "forecast")
}

func TestHealthHandler_Version(t *testing.T) {
	router := newHealthRouter(t, true)

	code, body := getJSON(t, router, "/api/version")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "v1.0.0-test", body["version"])
	assert.Equal(t, config.AppName, body["app"])
	assert.Equal(t, "2026-01-01T00:00:00Z", body["build_time"])
	assert.Equal(t, contracts.APIVersion, body["api_version"])
}
