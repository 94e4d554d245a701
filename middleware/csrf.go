package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/logger"
	"github.com/plannerhq/planner/core/response"
)

// CSRF token transport locations.
const (
	CSRFCookieName = "XSRF-TOKEN"
	CSRFHeaderName = "X-XSRF-TOKEN"
	CSRFFormField  = "_csrf"
)

// ErrInvalidCSRFToken is the projection for rejected state-changing requests.
var ErrInvalidCSRFToken = response.ErrForbidden.WithMessage("Invalid or missing CSRF token")

type csrfTokenContextKey struct{}

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	// Skip exempts requests from enforcement beyond the always-exempt safe
	// methods. The token cookie is still delivered on skipped requests.
	Skip func(ctx *handler.Context) bool
	// Cookies writes the token cookie. Required.
	Cookies *cookie.Manager
	// Generator creates fresh tokens (default: UUID v4)
	Generator func() string
	// Logger receives rejection lines (default: slog.Default())
	Logger *slog.Logger
}

// CSRF creates a CSRF middleware with default configuration.
func CSRF(cookies *cookie.Manager) handler.Middleware {
	return CSRFWithConfig(CSRFConfig{Cookies: cookies})
}

// CSRFWithConfig creates a double-submit CSRF middleware.
//
// The raw token lives in a readable XSRF-TOKEN cookie; state-changing
// requests must echo it in the X-XSRF-TOKEN header or the _csrf form field.
// Echoed values are accepted raw or XOR-masked; comparison against the
// cookie is constant-time.
//
// The cookie is set on every response, not only state-changing ones, so a
// browser holds a token before its first write. GET, HEAD, OPTIONS and
// TRACE are never enforced.
func CSRFWithConfig(cfg CSRFConfig) handler.Middleware {
	if cfg.Cookies == nil {
		panic("middleware: csrf requires a cookie manager")
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			req := ctx.Request()

			// The session token is whatever the request's cookie carries; a
			// fresh one is minted when the client has none yet.
			sessionToken := ""
			if c, err := req.Cookie(CSRFCookieName); err == nil {
				sessionToken = c.Value
			}
			issued := sessionToken
			if issued == "" {
				issued = cfg.Generator()
			}
			ctx.SetValue(csrfTokenContextKey{}, issued)

			var resp handler.Response
			switch {
			case isSafeMethod(req.Method), cfg.Skip != nil && cfg.Skip(ctx):
				resp = next(ctx)
			case sessionToken != "" && csrfTokensMatch(sessionToken, suppliedCSRFToken(req)):
				resp = next(ctx)
			default:
				cfg.Logger.LogAttrs(ctx, slog.LevelWarn, "csrf token rejected",
					logger.Component("csrf"),
					logger.CorrelationID(ctx.CorrelationID()),
					logger.Method(req.Method),
				)
				resp = response.Error(ErrInvalidCSRFToken)
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				// Readable by design: the SPA copies the cookie value into
				// the request header.
				if err := cfg.Cookies.Set(w, CSRFCookieName, issued,
					cookie.WithHTTPOnly(false),
					cookie.WithSameSite(http.SameSiteLaxMode),
				); err != nil {
					return err
				}
				return resp(w, r)
			}
		}
	}
}

// CSRFToken returns the raw token bound to the request, set by the CSRF
// middleware. Response bodies must carry the masked form only; see MaskCSRFToken.
func CSRFToken(ctx *handler.Context) (string, bool) {
	token, ok := ctx.Value(csrfTokenContextKey{}).(string)
	return token, ok
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// suppliedCSRFToken reads the client's echo of the token: header first, form
// field as the fallback for non-AJAX form posts.
func suppliedCSRFToken(r *http.Request) string {
	if v := r.Header.Get(CSRFHeaderName); v != "" {
		return v
	}
	return r.PostFormValue(CSRFFormField)
}

// csrfTokensMatch compares the session token against the supplied echo,
// accepting both the raw value and the XOR-masked form.
func csrfTokensMatch(session, supplied string) bool {
	if supplied == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(session), []byte(supplied)) == 1 {
		return true
	}
	if unmasked, ok := unmaskCSRFToken(supplied, len(session)); ok {
		return subtle.ConstantTimeCompare([]byte(session), []byte(unmasked)) == 1
	}
	return false
}

// MaskCSRFToken XORs the token with a one-time random pad and encodes
// pad||pad^token. A fresh pad per call keeps the on-wire value unique, which
// defeats compression side channels that recover repeated secrets from
// response bodies.
func MaskCSRFToken(token string) string {
	raw := []byte(token)
	pad := make([]byte, len(raw))
	if _, err := rand.Read(pad); err != nil {
		// crypto/rand failure means the process cannot do security-relevant
		// work at all.
		panic(err)
	}

	out := make([]byte, 2*len(raw))
	copy(out, pad)
	for i := range raw {
		out[len(raw)+i] = raw[i] ^ pad[i]
	}
	return base64.RawURLEncoding.EncodeToString(out)
}

// unmaskCSRFToken reverses MaskCSRFToken. The expected token length
// disambiguates masked values from raw ones.
func unmaskCSRFToken(masked string, tokenLen int) (string, bool) {
	data, err := base64.RawURLEncoding.DecodeString(masked)
	if err != nil || tokenLen == 0 || len(data) != 2*tokenLen {
		return "", false
	}

	pad, xored := data[:tokenLen], data[tokenLen:]
	raw := make([]byte, tokenLen)
	for i := range raw {
		raw[i] = xored[i] ^ pad[i]
	}
	return string(raw), true
}
