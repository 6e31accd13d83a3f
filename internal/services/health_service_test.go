package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
)

func TestHealthService_Checks(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	ts := newTestService(t)
	hs := NewHealthService("1.2.3", "2025-01-01T00:00:00Z", ts.ForecastService, logger)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	require.Contains(t, ready.Services, "forecast")
	assert.Equal(t, "ready", ready.Services["forecast"].(ServiceHealth).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_NotReadyWithoutForecast(t *testing.T) {
	hs := NewHealthService("1.2.3", "", nil, nil)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", ready.Status)
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService("1.2.3", "2025-01-01T00:00:00Z", nil, nil)

	info := hs.Version()
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "2025-01-01T00:00:00Z", info["build_time"])
	assert.Contains(t, info, "go_version")

	assert.NotContains(t, NewHealthService("1.2.3", "", nil, nil).Version(), "build_time")
}
