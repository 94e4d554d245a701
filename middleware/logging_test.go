package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/core/router"
	"github.com/plannerhq/planner/middleware"
)

func TestLoggingEmitsSanitizedLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := router.New()
	r.Use(
		middleware.Correlation(),
		middleware.LoggingWithLogger(log),
	)
	r.Get("/api/v1/contacts", func(ctx *handler.Context) handler.Response {
		return response.JSON(map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts?name=alice&token=supersecret", nil)
	req.Header.Set("X-Correlation-ID", "trace-42")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "test-agent/1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	line := buf.String()
	assert.Contains(t, line, `"correlationId":"trace-42"`)
	assert.Contains(t, line, `"method":"GET"`)
	assert.Contains(t, line, `"path":"/api/v1/contacts"`)
	assert.Contains(t, line, `"status_code":200`)
	assert.Contains(t, line, "203.0.113.***", "client IP last octet must be masked")
	assert.NotContains(t, line, "203.0.113.7")
	assert.Contains(t, line, "token=***", "sensitive query parameters must be redacted")
	assert.NotContains(t, line, "supersecret")
}

func TestLoggingSkip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := router.New()
	r.Use(middleware.LoggingWithConfig(middleware.LoggingConfig{
		Logger: log,
		Skip: func(ctx *handler.Context) bool {
			return ctx.Request().URL.Path == "/healthz"
		},
	}))
	r.Get("/healthz", func(ctx *handler.Context) handler.Response {
		return response.JSON(map[string]string{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Empty(t, buf.String(), "health probes are not logged")
}

func TestLoggingErrorLevelOnServerError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := router.New()
	r.Use(middleware.LoggingWithLogger(log))
	r.Get("/boom", func(ctx *handler.Context) handler.Response {
		return response.Error(response.ErrInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"status_code":500`)
}
