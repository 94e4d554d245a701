package handler

import (
	"context"
	"net/http"
)

// Role names granted to authenticated principals.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Principal is the identity resolved for the current request. The zero value
// is the anonymous principal.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

// IsAnonymous reports whether no identity was resolved for the request.
func (p Principal) IsAnonymous() bool {
	return p.Username == ""
}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	return !p.IsAnonymous() && p.Role == role
}

// Context is the per-request security context. It is created fresh for every
// request, owned exclusively by that request, and discarded when the request
// completes. It carries the resolved principal, the correlation identifier
// and arbitrary middleware values.
type Context struct {
	context.Context

	request  *http.Request
	response http.ResponseWriter
	params   map[string]string
	values   map[any]any

	principal     Principal
	correlationID string
}

// NewContext creates a request context backed by the request's context.Context.
func NewContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{
		Context:  r.Context(),
		request:  r,
		response: w,
		params:   params,
	}
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request {
	return c.request
}

// ResponseWriter returns the underlying response writer.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.response
}

// Param returns the named path parameter, or "" when absent.
func (c *Context) Param(key string) string {
	return c.params[key]
}

// SetValue stores a request-scoped value. Values never outlive the request.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Value returns request-scoped values first, falling back to the wrapped
// context.Context chain.
func (c *Context) Value(key any) any {
	if val, ok := c.values[key]; ok {
		return val
	}
	return c.Context.Value(key)
}

// Principal returns the resolved identity, or the anonymous principal.
func (c *Context) Principal() Principal {
	return c.principal
}

// SetPrincipal populates the security context. An already-populated context
// is never overwritten; the first resolved identity wins.
func (c *Context) SetPrincipal(p Principal) {
	if c.principal.IsAnonymous() {
		c.principal = p
	}
}

// CorrelationID returns the per-request correlation identifier.
func (c *Context) CorrelationID() string {
	return c.correlationID
}

// SetCorrelationID records the correlation identifier for this request.
func (c *Context) SetCorrelationID(id string) {
	c.correlationID = id
}
