package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plannerhq/planner/auth"
	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/core/router"
	"github.com/plannerhq/planner/middleware"
	"github.com/plannerhq/planner/organizer"
)

// Health probe paths, exempt from logging, rate limiting and CSRF.
const (
	healthzPath = "/healthz"
	readyzPath  = "/readyz"
)

type routerDeps struct {
	cfg       Config
	log       *slog.Logger
	cookies   *cookie.Manager
	auth      *auth.Service
	authH     *auth.Handler
	orgH      *organizer.Handler
	limiters  classLimiters
	readiness func(context.Context) error
}

// newRouter assembles the admission chain and mounts the HTTP surface.
// Middleware order is load-bearing: correlation must exist before logging,
// identity before rate limiting, and rate limiting before CSRF so floods of
// token-less requests are throttled rather than all rejected at full cost.
func newRouter(d routerDeps) *router.Router {
	r := router.New(router.WithLogger(d.log))

	r.Use(
		middleware.Correlation(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: d.log,
			Skip:   isHealthProbe,
		}),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.cfg.CORSAllowedOrigins,
			AllowCredentials: true,
		}),
		middleware.SecurityHeaders(),
		middleware.Authenticate(d.auth),
		middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter: d.limiters.login,
			KeyFunc: middleware.KeyByClientIP,
			Logger:  d.log,
			Skip:    notPath("/api/auth/login"),
		}),
		middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter: d.limiters.register,
			KeyFunc: middleware.KeyByClientIP,
			Logger:  d.log,
			Skip:    notPath("/api/auth/register"),
		}),
		middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter: d.limiters.api,
			KeyFunc: middleware.KeyByUsername,
			Logger:  d.log,
			Skip:    notPrefix("/api/v1/"),
		}),
		middleware.CSRFWithConfig(middleware.CSRFConfig{
			Cookies: d.cookies,
			Logger:  d.log,
			Skip:    isHealthProbe,
		}),
	)

	r.Get(healthzPath, func(ctx *handler.Context) handler.Response {
		return response.JSON(map[string]string{"status": "ok"})
	})
	r.Get(readyzPath, func(ctx *handler.Context) handler.Response {
		if err := d.readiness(ctx); err != nil {
			return response.Error(response.ErrServiceUnavailable.WithError(err))
		}
		return response.JSON(map[string]string{"status": "ready"})
	})

	r.Post("/api/auth/login", d.authH.Login)
	r.Post("/api/auth/register", d.authH.Register)
	r.Post("/api/auth/refresh", d.authH.Refresh)
	r.Post("/api/auth/logout", d.authH.Logout)
	r.Get("/api/auth/csrf-token", d.authH.CSRFToken)

	r.Route("/api/v1", d.orgH.Register, middleware.RequireAuth())

	return r
}

func isHealthProbe(ctx *handler.Context) bool {
	p := ctx.Request().URL.Path
	return p == healthzPath || p == readyzPath
}

// notPath skips a rate class for every path except the given one.
func notPath(path string) func(ctx *handler.Context) bool {
	return func(ctx *handler.Context) bool {
		return ctx.Request().URL.Path != path
	}
}

// notPrefix skips a rate class for every path outside the given prefix.
func notPrefix(prefix string) func(ctx *handler.Context) bool {
	return func(ctx *handler.Context) bool {
		return !strings.HasPrefix(ctx.Request().URL.Path, prefix)
	}
}
