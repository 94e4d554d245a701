package middleware_test

import (
	"encoding/json"
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

// principalInjector fakes an upstream authentication result.
func principalInjector(p handler.Principal) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			ctx.SetPrincipal(p)
			return next(ctx)
		}
	}
}

func newProtectedRouter(mws ...handler.Middleware) *router.Router {
	r := router.New()
	r.Use(mws...)
	r.Get("/api/v1/contacts", func(ctx *handler.Context) handler.Response {
		return response.JSON(map[string]string{"status": "ok"})
	})
	return r
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	t.Parallel()

	r := newProtectedRouter(middleware.RequireAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid credentials", body.Message)
}

func TestRequireAuthAdmitsAuthenticated(t *testing.T) {
	t.Parallel()

	r := newProtectedRouter(
		principalInjector(handler.Principal{UserID: 1, Username: "alice", Role: handler.RoleUser}),
		middleware.RequireAuth(),
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	t.Run("missing role is forbidden", func(t *testing.T) {
		t.Parallel()

		r := newProtectedRouter(
			principalInjector(handler.Principal{UserID: 1, Username: "alice", Role: handler.RoleUser}),
			middleware.RequireRole(handler.RoleAdmin),
		)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		t.Parallel()

		r := newProtectedRouter(middleware.RequireRole(handler.RoleAdmin))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("matching role admitted", func(t *testing.T) {
		t.Parallel()

		r := newProtectedRouter(
			principalInjector(handler.Principal{UserID: 1, Username: "root", Role: handler.RoleAdmin}),
			middleware.RequireRole(handler.RoleAdmin),
		)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
