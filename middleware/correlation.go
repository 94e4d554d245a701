package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/plannerhq/planner/core/handler"
)

// CorrelationHeader is the header carrying the request correlation id.
const CorrelationHeader = "X-Correlation-ID"

// maxCorrelationIDLength bounds accepted client-supplied ids. Longer values
// are replaced, never truncated.
const maxCorrelationIDLength = 64

// Correlation ids are log-safe by construction: no whitespace, no control
// characters, no header-splitting characters.
var correlationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CorrelationConfig configures the correlation middleware.
type CorrelationConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool
	// Generator creates fresh correlation ids (default: UUID v4)
	Generator func() string
}

// Correlation creates a correlation middleware with default configuration.
func Correlation() handler.Middleware {
	return CorrelationWithConfig(CorrelationConfig{})
}

// CorrelationWithConfig creates a correlation middleware with custom
// configuration. A client-supplied X-Correlation-ID is accepted only when it
// matches the safe character class and length bound; anything else is
// replaced with a generated id. The effective id is stored on the request
// context and echoed on the response.
func CorrelationWithConfig(cfg CorrelationConfig) handler.Middleware {
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			id := sanitizeCorrelationID(ctx.Request().Header.Get(CorrelationHeader))
			if id == "" {
				id = cfg.Generator()
			}
			ctx.SetCorrelationID(id)

			response := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set(CorrelationHeader, id)
				return response(w, r)
			}
		}
	}
}

// sanitizeCorrelationID returns the trimmed client id when acceptable, or ""
// when it must be replaced.
func sanitizeCorrelationID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxCorrelationIDLength || !correlationIDPattern.MatchString(id) {
		return ""
	}
	return id
}
