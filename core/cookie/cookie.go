// Package cookie centralizes HTTP cookie handling so security attributes are
// applied consistently. A Manager carries the default attributes (path,
// Secure, HttpOnly, SameSite) resolved from configuration; call sites only
// name the cookie and its value, and may override individual attributes per
// call.
package cookie

import (
	"errors"
	"net/http"
	"time"
)

// MaxCookieSize is the maximum serialized size accepted for a cookie (4KB).
const MaxCookieSize = 4096

var (
	// ErrCookieNotFound is returned when the request carries no such cookie.
	ErrCookieNotFound = errors.New("cookie not found")
	// ErrCookieTooLarge is returned when the serialized cookie exceeds the
	// size limit.
	ErrCookieTooLarge = errors.New("cookie exceeds maximum size")
)

// Manager writes and reads cookies with consistent attributes.
type Manager struct {
	defaults Options
	maxSize  int
}

// New creates a Manager with secure defaults overridden by the given options.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		defaults: applyOptions(defaults, opts),
		maxSize:  MaxCookieSize,
	}
}

// Set writes a cookie using the manager defaults plus per-call overrides.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	options := applyOptions(m.defaults, opts)

	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}

	if len(cookie.String()) > m.maxSize {
		return ErrCookieTooLarge
	}

	http.SetCookie(w, cookie)
	return nil
}

// Get returns the cookie value from the request.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

// Delete expires the cookie immediately. Attributes other than MaxAge follow
// the manager defaults plus per-call overrides, since browsers match cookies
// on name, path and domain when clearing.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}
