// Package middleware provides the request admission pipeline: correlation,
// logging, CORS, security headers, authentication, rate limiting, CSRF
// defense, and authorization gates.
//
// Middlewares compose via handler.Middleware and are ordered by the caller.
// The intended chain is:
//
//	Correlation → Logging → CORS → SecurityHeaders → Authenticate →
//	RateLimit → CSRF → (RequireAuth on protected prefixes) → handler
//
// Correlation runs first so every later log line carries the request id.
// Rate limiting runs after authentication so the general API class can key
// on the resolved username. CSRF runs after authentication so
// unauthenticated write attempts surface as 401 rather than being obscured
// by a 403.
//
// Each middleware follows the same configuration pattern: a zero-config
// constructor with sensible defaults and a WithConfig variant taking a
// config struct with an optional Skip predicate.
package middleware
