package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/core/router"
	"github.com/plannerhq/planner/middleware"
)

func newCorrelationRouter(captured *string) *router.Router {
	r := router.New()
	r.Use(middleware.Correlation())
	r.Get("/ping", func(ctx *handler.Context) handler.Response {
		*captured = ctx.CorrelationID()
		return response.JSON(map[string]string{"status": "ok"})
	})
	return r
}

func TestCorrelationEchoesValidID(t *testing.T) {
	t.Parallel()

	var seen string
	r := newCorrelationRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Correlation-ID", "req-abc_123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-abc_123", w.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "req-abc_123", seen)
}

func TestCorrelationGeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	var seen string
	r := newCorrelationRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get("X-Correlation-ID")
	require.NotEmpty(t, id)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), id)
	assert.Equal(t, id, seen)
}

func TestCorrelationReplacesInvalidID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		id   string
	}{
		{"whitespace inside", "bad value"},
		{"control characters", "bad\nvalue"},
		{"over length limit", strings.Repeat("a", 65)},
		{"disallowed punctuation", "id;rm -rf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			r := newCorrelationRouter(&seen)

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Correlation-ID", tc.id)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			echoed := w.Header().Get("X-Correlation-ID")
			require.NotEmpty(t, echoed)
			assert.NotEqual(t, tc.id, echoed)
			assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), echoed)
		})
	}
}

func TestCorrelationMaxLengthBoundary(t *testing.T) {
	t.Parallel()

	var seen string
	r := newCorrelationRouter(&seen)

	exactly64 := strings.Repeat("a", 64)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Correlation-ID", exactly64)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, exactly64, w.Header().Get("X-Correlation-ID"), "64 characters must round-trip")
}

func TestCorrelationSetOnErrorResponses(t *testing.T) {
	t.Parallel()

	r := router.New()
	r.Use(middleware.Correlation())
	r.Get("/boom", func(ctx *handler.Context) handler.Response {
		return response.Error(response.ErrInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Correlation-ID", "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "trace-1", w.Header().Get("X-Correlation-ID"))
}
