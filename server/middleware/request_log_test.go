package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/hrygo/czdate/server/internal/errors"
	"github.com/hrygo/czdate/server/internal/observability"
)

func TestOperationName(t *testing.T) {
	tests := map[string]string{
		"/api/v1/dates/search":       "dates.search",
		"/api/v1/dates/batch-search": "dates.batch-search",
		"/healthz":                   "healthz",
		"":                           "",
	}
	for path, want := range tests {
		assert.Equal(t, want, OperationName(path), path)
	}
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := observability.NewMetrics(10)

	e := echo.New()
	e.Use(RequestLog(logger, metrics))
	e.GET("/api/v1/ok", func(c echo.Context) error {
		rc, ok := observability.FromContext(c.Request().Context())
		require.True(t, ok)
		assert.Equal(t, "ok", rc.Operation)
		return c.NoContent(http.StatusOK)
	})
	e.GET("/api/v1/bad", func(c echo.Context) error {
		return apierrors.InvalidArgument("text is required")
	})
	e.GET("/api/v1/down", func(c echo.Context) error {
		return apierrors.OracleUnavailable(nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ok", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bad", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/down", nil))

	snap := metrics.Snapshot()
	assert.Equal(t, int64(3), snap.RequestTotal)
	assert.Equal(t, int64(1), snap.RequestFailed, "client errors are not failures")
	assert.Equal(t, int64(1), snap.Operations["down"].ErrorCount)

	logs := buf.String()
	assert.Contains(t, logs, "request_id=req-42")
	assert.Contains(t, logs, "error_code=INVALID_ARGUMENT")
	assert.Contains(t, logs, "error_code=ORACLE_UNAVAILABLE")
}
