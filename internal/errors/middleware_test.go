package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
)

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantLevel  slog.Level
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			},
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelInfo,
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantLevel:  slog.LevelWarn,
		},
		{
			name: "panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			},
			wantStatus: http.StatusInternalServerError,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			w := httptest.NewRecorder()
			mw.Handler(tt.handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health?x=1", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			testutil.AssertLogContains(t, handler, tt.wantLevel, "http request")
			assert.True(t, handler.ContainsAttr("status", int64(tt.wantStatus)))
			assert.True(t, handler.ContainsAttr("query", "x=1"))
		})
	}
}
