package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/logger"
)

// AuthCookieName is the cookie carrying the session token.
const AuthCookieName = "auth_token"

// bearerPrefix is the literal Authorization scheme prefix, single space.
const bearerPrefix = "Bearer "

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (handler.Principal, error)
}

// AuthenticateConfig configures the authentication middleware.
type AuthenticateConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool
	// Authenticator resolves tokens to principals. Required.
	Authenticator Authenticator
	// Logger receives debug lines for failed resolutions (default: slog.Default())
	Logger *slog.Logger
}

// Authenticate creates the authentication middleware. The token is taken
// from the auth cookie first, then from the Authorization header with the
// Bearer scheme. Resolution failures never fail the request: the context is
// simply left anonymous and authorization is decided downstream. An
// already-populated principal is never overwritten.
func Authenticate(auth Authenticator) handler.Middleware {
	return AuthenticateWithConfig(AuthenticateConfig{Authenticator: auth})
}

// AuthenticateWithConfig creates the authentication middleware with custom
// configuration. Panics if no Authenticator is provided, since silently
// admitting every request as anonymous would be a misconfiguration.
func AuthenticateWithConfig(cfg AuthenticateConfig) handler.Middleware {
	if cfg.Authenticator == nil {
		panic("middleware: authenticate requires an Authenticator")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			token := extractToken(ctx)
			if token == "" {
				return next(ctx)
			}

			principal, err := cfg.Authenticator.Authenticate(ctx, token)
			if err != nil {
				cfg.Logger.LogAttrs(ctx, slog.LevelDebug, "token rejected, continuing anonymous",
					logger.Component("auth"),
					logger.CorrelationID(ctx.CorrelationID()),
					logger.Error(err),
				)
				return next(ctx)
			}

			ctx.SetPrincipal(principal)
			return next(ctx)
		}
	}
}

// extractToken searches the cookie first, then the Authorization header.
// Whitespace-only cookie values are ignored rather than parsed.
func extractToken(ctx *handler.Context) string {
	if c, err := ctx.Request().Cookie(AuthCookieName); err == nil {
		if value := strings.TrimSpace(c.Value); value != "" {
			return value
		}
	}

	authz := ctx.Request().Header.Get("Authorization")
	if strings.HasPrefix(authz, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authz, bearerPrefix))
	}
	return ""
}
