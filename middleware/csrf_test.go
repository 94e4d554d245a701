package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/core/router"
	"github.com/plannerhq/planner/middleware"
)

func newCSRFRouter(skip func(ctx *handler.Context) bool) *router.Router {
	r := router.New()
	r.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Cookies: cookie.New(),
		Skip:    skip,
	}))
	r.Get("/api/auth/csrf-token", func(ctx *handler.Context) handler.Response {
		token, _ := middleware.CSRFToken(ctx)
		return response.JSON(map[string]string{"token": middleware.MaskCSRFToken(token)})
	})
	r.Post("/api/v1/contacts", func(ctx *handler.Context) handler.Response {
		return response.JSONWithStatus(map[string]string{"status": "created"}, http.StatusCreated)
	})
	return r
}

func csrfCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "XSRF-TOKEN" {
			return c
		}
	}
	t.Fatal("XSRF-TOKEN cookie not set")
	return nil
}

func TestCSRFCookieSetOnEveryResponse(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/csrf-token", nil))

	c := csrfCookie(t, w)
	assert.NotEmpty(t, c.Value)
	assert.False(t, c.HttpOnly, "the SPA must be able to read the token")
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestCSRFCookieStableAcrossRequests(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/csrf-token", nil))
	issued := csrfCookie(t, w)

	again := httptest.NewRequest(http.MethodGet, "/api/auth/csrf-token", nil)
	again.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: issued.Value})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, again)

	assert.Equal(t, issued.Value, csrfCookie(t, w).Value, "an existing token is re-delivered, not rotated")
}

func TestCSRFRejectsWriteWithoutToken(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/contacts", nil))

	require.Equal(t, http.StatusForbidden, w.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid or missing CSRF token", body.Message)

	csrfCookie(t, w) // rejection still delivers a token for the retry
}

func TestCSRFBootstrapThenWrite(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/csrf-token", nil))
	token := csrfCookie(t, w).Value

	post := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", nil)
	post.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	post.Header.Set("X-XSRF-TOKEN", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, post)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCSRFAcceptsMaskedHeader(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/csrf-token", nil))
	token := csrfCookie(t, w).Value

	post := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", nil)
	post.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	post.Header.Set("X-XSRF-TOKEN", middleware.MaskCSRFToken(token))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, post)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", nil)
	post.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "real-token"})
	post.Header.Set("X-XSRF-TOKEN", "forged-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, post)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFAcceptsFormField(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(nil)

	form := strings.NewReader("_csrf=form-token")
	post := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", form)
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "form-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, post)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCSRFSkipMatcher(t *testing.T) {
	t.Parallel()

	r := newCSRFRouter(func(ctx *handler.Context) bool {
		return strings.HasPrefix(ctx.Request().URL.Path, "/api/v1/contacts")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/contacts", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	csrfCookie(t, w) // delivery still happens on skipped paths
}

func TestMaskCSRFTokenRoundTripUniqueness(t *testing.T) {
	t.Parallel()

	token := "0f8a2d9e-1c3b-4f5a-8e7d-6b5c4a3f2e1d"
	first := middleware.MaskCSRFToken(token)
	second := middleware.MaskCSRFToken(token)

	assert.NotEqual(t, first, second, "each masking uses a fresh pad")
	assert.NotContains(t, first, token)
}
