// Package router provides a small HTTP router with an explicit middleware
// chain and a single error-projection site. Every failure path that reaches
// the router, panics included, flows through the configured error handler so
// that clients always receive the same response shape. Failures the HTTP
// server rejects before dispatch, such as an unparseable request line, never
// reach the router and keep the server's plain-text form.
package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
)

// Router dispatches requests to registered handlers. Routes and middlewares
// are registered at startup; the router is immutable and safe for concurrent
// use once serving.
type Router struct {
	routes       []*route
	middlewares  []handler.Middleware
	errorHandler handler.ErrorHandler
	logger       *slog.Logger
}

type route struct {
	method   string
	pattern  string
	segments []segment
	handler  handler.HandlerFunc
}

// segment is one path element: either a literal or a {param} capture.
type segment struct {
	literal string
	param   string
}

// Option configures a Router.
type Option func(*Router)

// WithErrorHandler sets the error projection handler for the router.
func WithErrorHandler(eh handler.ErrorHandler) Option {
	return func(r *Router) {
		if eh != nil {
			r.errorHandler = eh
		}
	}
}

// WithLogger sets the logger for internal router diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.logger = log
		}
	}
}

// New creates a router. Without options it projects errors with
// response.JSONErrorHandler and discards internal logs.
func New(opts ...Option) *Router {
	r := &Router{
		errorHandler: response.JSONErrorHandler,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends middlewares to the router. All middlewares must be registered
// before routes so the chain order stays explicit.
func (r *Router) Use(middlewares ...handler.Middleware) {
	if len(r.routes) > 0 {
		panic("router: all middlewares must be registered before routes")
	}
	r.middlewares = append(r.middlewares, middlewares...)
}

// Get registers a handler for GET requests.
func (r *Router) Get(pattern string, h handler.HandlerFunc) { r.handle(http.MethodGet, pattern, h) }

// Post registers a handler for POST requests.
func (r *Router) Post(pattern string, h handler.HandlerFunc) { r.handle(http.MethodPost, pattern, h) }

// Put registers a handler for PUT requests.
func (r *Router) Put(pattern string, h handler.HandlerFunc) { r.handle(http.MethodPut, pattern, h) }

// Delete registers a handler for DELETE requests.
func (r *Router) Delete(pattern string, h handler.HandlerFunc) {
	r.handle(http.MethodDelete, pattern, h)
}

// Route registers a group of routes under a shared prefix with additional
// middlewares applied to every handler in the group.
func (r *Router) Route(prefix string, fn func(g *Group), middlewares ...handler.Middleware) {
	if fn == nil {
		panic(fmt.Sprintf("router: nil group registration for %q", prefix))
	}
	fn(&Group{router: r, prefix: strings.TrimSuffix(prefix, "/"), middlewares: middlewares})
}

func (r *Router) handle(method, pattern string, h handler.HandlerFunc) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Sprintf("router: invalid route pattern %q", pattern))
	}
	if h == nil {
		panic(fmt.Sprintf("router: nil handler for %s %s", method, pattern))
	}
	r.routes = append(r.routes, &route{
		method:   method,
		pattern:  pattern,
		segments: parsePattern(pattern),
		handler:  h,
	})
}

func parsePattern(pattern string) []segment {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segments := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			segments = append(segments, segment{param: p[1 : len(p)-1]})
			continue
		}
		segments = append(segments, segment{literal: p})
	}
	return segments
}

// match reports whether the route matches the given path segments and
// returns captured parameters.
func (rt *route) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(rt.segments) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range rt.segments {
		if seg.param != "" {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ww := newResponseWriter(w)

	// Undecodable percent-encoding in RawPath comes out as the uniform JSON
	// error shape. net/http rejects such request lines before dispatch, so
	// this guard matters when the router is mounted behind a server or mux
	// that forwards the path undecoded.
	if req.URL.RawPath != "" {
		if _, err := url.PathUnescape(req.URL.RawPath); err != nil {
			ctx := handler.NewContext(ww, req, nil)
			r.errorHandler(ctx, response.ErrBadRequest)
			return
		}
	}

	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")

	var (
		matched *route
		params  map[string]string
		allowed []string
	)
	for _, rt := range r.routes {
		p, ok := rt.match(parts)
		if !ok {
			continue
		}
		if rt.method == req.Method {
			matched, params = rt, p
			break
		}
		allowed = append(allowed, rt.method)
	}

	ctx := handler.NewContext(ww, req, params)

	// Panics are projected like any other failure so clients never see a bare
	// container error page. If the response already started, only log.
	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				r.logger.Error("panic after response written",
					slog.Any("value", panicErr.value),
					slog.String("method", req.Method),
					slog.Int("status", ww.Status()),
				)
				return
			}
			r.errorHandler(ctx, panicErr)
		}
	}()

	// Unmatched requests flow through the same middleware chain as matched
	// ones, so 404 and 405 responses still carry correlation identifiers and
	// CORS headers, and preflight requests are answered by the CORS
	// middleware even when no route matches the path.
	var h handler.HandlerFunc
	switch {
	case matched != nil:
		h = matched.handler
	case len(allowed) > 0:
		allow := strings.Join(allowed, ", ")
		h = func(ctx *handler.Context) handler.Response {
			ctx.ResponseWriter().Header().Set("Allow", allow)
			return response.Error(response.ErrMethodNotAllowed)
		}
	default:
		h = func(ctx *handler.Context) handler.Response {
			return response.Error(response.ErrNotFound)
		}
	}
	if len(r.middlewares) > 0 {
		h = handler.Chain(r.middlewares, h)
	}

	resp := h(ctx)
	if resp == nil {
		r.errorHandler(ctx, response.ErrInternalServerError)
		return
	}
	if err := resp(ww, req); err != nil {
		r.errorHandler(ctx, err)
	}
}

// Group registers routes under a shared prefix with group-level middlewares.
type Group struct {
	router      *Router
	prefix      string
	middlewares []handler.Middleware
}

// Get registers a GET handler within the group.
func (g *Group) Get(pattern string, h handler.HandlerFunc) { g.handle(http.MethodGet, pattern, h) }

// Post registers a POST handler within the group.
func (g *Group) Post(pattern string, h handler.HandlerFunc) { g.handle(http.MethodPost, pattern, h) }

// Put registers a PUT handler within the group.
func (g *Group) Put(pattern string, h handler.HandlerFunc) { g.handle(http.MethodPut, pattern, h) }

// Delete registers a DELETE handler within the group.
func (g *Group) Delete(pattern string, h handler.HandlerFunc) {
	g.handle(http.MethodDelete, pattern, h)
}

func (g *Group) handle(method, pattern string, h handler.HandlerFunc) {
	if len(g.middlewares) > 0 {
		h = handler.Chain(g.middlewares, h)
	}
	g.router.handle(method, g.prefix+pattern, h)
}
