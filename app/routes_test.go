package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/auth"
	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/router"
	"github.com/plannerhq/planner/middleware"
	"github.com/plannerhq/planner/organizer"
	"github.com/plannerhq/planner/pkg/ratelimiter"
	"github.com/plannerhq/planner/user"
)

func memoryBucket(t *testing.T, capacity int) ratelimiter.RateLimiter {
	t.Helper()

	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       capacity,
		RefillRate:     capacity,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)
	return b
}

// newTestRouter assembles the production chain over in-memory backends.
func newTestRouter(t *testing.T) *router.Router {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// The dash keeps the secret out of the base64 alphabet so the raw bytes
	// are the effective key.
	tokens, err := auth.NewTokenService(auth.Config{
		Secret:          "planner-test-secret-0123456789abcdef",
		ExpirationMS:    1_800_000,
		RefreshWindowMS: 300_000,
	})
	require.NoError(t, err)

	svc := auth.NewService(tokens, user.NewMemoryDirectory(), log)
	cookies := cookie.New()

	return newRouter(routerDeps{
		cfg: Config{
			CORSAllowedOrigins: []string{"http://localhost:3000"},
		},
		log:     log,
		cookies: cookies,
		auth:    svc,
		authH:   auth.NewHandler(svc, cookies),
		orgH:    organizer.NewHandler(organizer.NewMemoryStores()),
		limiters: classLimiters{
			login:    memoryBucket(t, 5),
			register: memoryBucket(t, 3),
			api:      memoryBucket(t, 100),
		},
		readiness: func(context.Context) error { return nil },
	})
}

// session carries cookies across requests like a browser would.
type session struct {
	r       *router.Router
	cookies map[string]*http.Cookie
}

func newSession(r *router.Router) *session {
	return &session{r: r, cookies: make(map[string]*http.Cookie)}
}

func (s *session) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
	return w
}

func (s *session) csrfHeader() map[string]string {
	if c, ok := s.cookies[middleware.CSRFCookieName]; ok {
		return map[string]string{middleware.CSRFHeaderName: c.Value}
	}
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newSession(newTestRouter(t))

	w := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationHeader))

	w = s.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnmatchedRequestsCarryCorrelationID(t *testing.T) {
	t.Parallel()

	s := newSession(newTestRouter(t))

	w := s.do(http.MethodGet, "/no/such/path", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationHeader))
}

func TestPreflightOnProtectedSurface(t *testing.T) {
	t.Parallel()

	s := newSession(newTestRouter(t))

	// Browsers preflight before the SPA's first cross-origin write. OPTIONS
	// matches no registered route, so the CORS middleware must answer it.
	w := s.do(http.MethodOptions, "/api/v1/contacts", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = s.do(http.MethodOptions, "/api/v1/contacts", "", map[string]string{
		"Origin":                        "http://evil.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedSurfaceRequiresAuth(t *testing.T) {
	t.Parallel()

	s := newSession(newTestRouter(t))

	w := s.do(http.MethodGet, "/api/v1/contacts", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid credentials", body.Message)
}

func TestFullBrowserJourney(t *testing.T) {
	t.Parallel()

	s := newSession(newTestRouter(t))

	// Bootstrap: the SPA fetches a CSRF token before its first write.
	w := s.do(http.MethodGet, "/api/auth/csrf-token", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, s.cookies, middleware.CSRFCookieName)

	// A write without the CSRF echo is refused.
	w = s.do(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"Str0ngP@ss"}`, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or missing CSRF token")

	// With it, registration succeeds and sets the auth cookie.
	w = s.do(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"Str0ngP@ss"}`, s.csrfHeader())
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, s.cookies, middleware.AuthCookieName)

	// Authenticated CRUD behind /api/v1.
	w = s.do(http.MethodPost, "/api/v1/contacts", `{"name":"Ada Lovelace"}`, s.csrfHeader())
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/v1/contacts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Lovelace")

	// Logout clears the cookie; the next protected call is anonymous again.
	w = s.do(http.MethodPost, "/api/auth/logout", "", s.csrfHeader())
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, s.cookies, middleware.AuthCookieName)

	w = s.do(http.MethodGet, "/api/v1/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimitClass(t *testing.T) {
	t.Parallel()

	s := newSession(newTestRouter(t))

	s.do(http.MethodGet, "/api/auth/csrf-token", "", nil)

	// Five attempts consume the login class regardless of outcome.
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/auth/login",
			`{"username":"ghost","password":"wrong"}`, s.csrfHeader())
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i)
	}

	w := s.do(http.MethodPost, "/api/auth/login",
		`{"username":"ghost","password":"wrong"}`, s.csrfHeader())
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body struct {
		Message    string `json:"message"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body.Message)
	assert.GreaterOrEqual(t, body.RetryAfter, 1)

	// The health surface stays reachable while the login class is exhausted.
	w = s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
