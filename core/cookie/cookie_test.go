package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/core/cookie"
)

func TestSetAppliesDefaults(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	w := httptest.NewRecorder()

	require.NoError(t, m.Set(w, "session", "abc"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.False(t, c.Secure)
}

func TestSetPerCallOverride(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecure(true))
	w := httptest.NewRecorder()

	require.NoError(t, m.Set(w, "readable", "v", cookie.WithHTTPOnly(false)))

	c := w.Result().Cookies()[0]
	assert.True(t, c.Secure, "manager default should apply")
	assert.False(t, c.HttpOnly, "per-call override should win")
}

func TestSetRejectsOversizedCookie(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	w := httptest.NewRecorder()

	err := m.Set(w, "big", strings.Repeat("x", cookie.MaxCookieSize))
	assert.ErrorIs(t, err, cookie.ErrCookieTooLarge)
	assert.Empty(t, w.Result().Cookies())
}

func TestGet(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	value, err := m.Get(r, "session")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	_, err = m.Get(r, "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	w := httptest.NewRecorder()

	m.Delete(w, "session")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "session", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m := cookie.NewFromConfig(cookie.Config{
		Path:     "/app",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w := httptest.NewRecorder()

	require.NoError(t, m.Set(w, "session", "abc"))

	c := w.Result().Cookies()[0]
	assert.Equal(t, "/app", c.Path)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}
