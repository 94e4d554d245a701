package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/plannerhq/planner/core/handler"
)

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool

	// AllowOrigins lists allowed origins. Use "*" for all origins.
	// Empty defaults to allowing all origins.
	AllowOrigins []string

	// AllowMethods lists allowed HTTP methods.
	AllowMethods []string

	// AllowHeaders lists allowed request headers.
	AllowHeaders []string

	// ExposeHeaders lists headers exposed to browser scripts.
	ExposeHeaders []string

	// AllowCredentials permits cookies and authorization headers. Never
	// combined with a wildcard origin in the emitted headers.
	AllowCredentials bool

	// MaxAge caches preflight responses for this many seconds.
	MaxAge int
}

// CORS creates a CORS middleware allowing all origins without credentials.
func CORS() handler.Middleware {
	return CORSWithConfig(CORSConfig{})
}

// CORSWithConfig creates a CORS middleware with custom configuration.
// Preflight OPTIONS requests are answered directly; actual requests get
// response headers appended around the inner response.
func CORSWithConfig(cfg CORSConfig) handler.Middleware {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Content-Type",
			"Authorization",
			"X-Correlation-ID",
			"X-XSRF-TOKEN",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")

	allowOrigins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowOrigins[origin] = true
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			origin := req.Header.Get("Origin")

			var allowedOrigin string
			allowed := false
			if len(cfg.AllowOrigins) == 0 || allowOrigins["*"] {
				allowedOrigin = "*"
				allowed = true
			} else if allowOrigins[origin] {
				allowedOrigin = origin
				allowed = true
			}

			isPreflight := req.Method == http.MethodOptions &&
				req.Header.Get("Access-Control-Request-Method") != ""

			if isPreflight {
				requestMethod := req.Header.Get("Access-Control-Request-Method")
				if !allowed || !slices.Contains(cfg.AllowMethods, requestMethod) {
					return func(w http.ResponseWriter, r *http.Request) error {
						w.WriteHeader(http.StatusForbidden)
						return nil
					}
				}

				return func(w http.ResponseWriter, r *http.Request) error {
					headers := w.Header()
					headers.Set("Access-Control-Allow-Origin", allowedOrigin)
					headers.Set("Access-Control-Allow-Methods", allowMethods)
					if req.Header.Get("Access-Control-Request-Headers") != "" {
						headers.Set("Access-Control-Allow-Headers", allowHeaders)
					}
					if cfg.AllowCredentials && allowedOrigin != "*" {
						headers.Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						headers.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
					headers.Add("Vary", "Origin")
					headers.Add("Vary", "Access-Control-Request-Method")
					headers.Add("Vary", "Access-Control-Request-Headers")
					w.WriteHeader(http.StatusNoContent)
					return nil
				}
			}

			response := next(ctx)

			if !allowed {
				return response
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				headers := w.Header()
				headers.Set("Access-Control-Allow-Origin", allowedOrigin)
				if cfg.AllowCredentials && allowedOrigin != "*" {
					headers.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposeHeaders != "" {
					headers.Set("Access-Control-Expose-Headers", exposeHeaders)
				}
				headers.Add("Vary", "Origin")
				return response(w, r)
			}
		}
	}
}
