package middleware

import (
	"log/slog"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/logger"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/core/sanitizer"
	"github.com/plannerhq/planner/pkg/clientip"
	"github.com/plannerhq/planner/pkg/ratelimiter"
)

// RateLimitConfig configures one rate limit class.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool
	// Limiter is the token bucket backing this class. Required.
	Limiter ratelimiter.RateLimiter
	// KeyFunc derives the bucket key. Returning ok=false exempts the request
	// from this class entirely.
	KeyFunc func(ctx *handler.Context) (key string, ok bool)
	// Logger receives refusal and store-failure lines (default: slog.Default())
	Logger *slog.Logger
}

// RateLimit creates a rate limiting middleware keyed by client IP.
func RateLimit(limiter ratelimiter.RateLimiter) handler.Middleware {
	return RateLimitWithConfig(RateLimitConfig{Limiter: limiter})
}

// RateLimitWithConfig creates a rate limiting middleware with custom
// configuration. Refused requests get a 429 with a Retry-After hint in whole
// seconds (one-second floor). Store failures fail open: admission control
// degrading must not take the service down with it.
func RateLimitWithConfig(cfg RateLimitConfig) handler.Middleware {
	if cfg.Limiter == nil {
		panic("middleware: rate limit requires a Limiter")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByClientIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			key, ok := cfg.KeyFunc(ctx)
			if !ok {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx, key)
			if err != nil {
				cfg.Logger.LogAttrs(ctx, slog.LevelError, "rate limit store failure, admitting request",
					logger.Component("ratelimit"),
					logger.CorrelationID(ctx.CorrelationID()),
					logger.Error(err),
				)
				return next(ctx)
			}

			if !result.Allowed() {
				retryAfter := result.RetryAfterSeconds()
				cfg.Logger.LogAttrs(ctx, slog.LevelWarn, "rate limit exceeded",
					logger.Component("ratelimit"),
					logger.CorrelationID(ctx.CorrelationID()),
					slog.String("key", sanitizer.SanitizeLogValue(key)),
					slog.Int("retry_after", retryAfter),
				)
				return response.Error(response.ErrTooManyRequests.WithRetryAfter(retryAfter))
			}

			return next(ctx)
		}
	}
}

// KeyByClientIP keys buckets on the derived client address. Used for the
// login and registration classes where no identity exists yet.
func KeyByClientIP(ctx *handler.Context) (string, bool) {
	return clientip.GetIP(ctx.Request()), true
}

// KeyByUsername keys buckets on the authenticated username. Anonymous
// requests are exempt; keying them by IP would conflate rate classes, and
// authorization downstream rejects them anyway.
func KeyByUsername(ctx *handler.Context) (string, bool) {
	p := ctx.Principal()
	if p.IsAnonymous() {
		return "", false
	}
	return p.Username, true
}
