package middleware

import (
	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
)

// RequireAuth rejects anonymous requests with 401. Place it after
// Authenticate on protected route groups; it performs no token work itself.
func RequireAuth() handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			if ctx.Principal().IsAnonymous() {
				return response.Error(response.ErrUnauthorized)
			}
			return next(ctx)
		}
	}
}

// RequireRole rejects requests whose principal lacks the given role.
// Anonymous requests get 401, authenticated ones without the role get 403.
func RequireRole(role string) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			p := ctx.Principal()
			if p.IsAnonymous() {
				return response.Error(response.ErrUnauthorized)
			}
			if !p.HasRole(role) {
				return response.Error(response.ErrForbidden)
			}
			return next(ctx)
		}
	}
}
