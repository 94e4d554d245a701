package handler

import "net/http"

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
// Rendering errors are handled by the router's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is an HTTP request handler working on the request context.
type HandlerFunc func(ctx *Context) Response

// ErrorHandler handles errors during request processing. Exactly one error
// handler is wired per router; it is the single projection site for every
// failure path.
type ErrorHandler func(ctx *Context, err error)

// Middleware wraps handlers to add cross-cutting functionality.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain builds a single handler from a middleware stack and endpoint.
// The first middleware in the slice is the outermost one and runs first.
func Chain(middlewares []Middleware, endpoint HandlerFunc) HandlerFunc {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
