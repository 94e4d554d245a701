package response

import "net/http"

// HTTPError is the uniform wire shape for every failure. Only Message (and
// RetryAfter for throttled requests) is serialized; the HTTP status and the
// underlying cause stay server-side. Messages must be user-safe: no stack
// traces, no framework identifiers, no parser internals.
type HTTPError struct {
	Status     int    `json:"-"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"` // whole seconds, 429 only

	cause error
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap exposes the attached cause to errors.Is/As.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// WithMessage returns a copy of the error with a custom user-safe message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithError returns a copy of the error with an attached cause. The cause is
// logged at the projection site but never serialized to the client.
func (e HTTPError) WithError(err error) HTTPError {
	e.cause = err
	return e
}

// WithRetryAfter returns a copy of the error carrying a retry hint in whole
// seconds. Values below one second are floored to one so clients never see
// Retry-After: 0.
func (e HTTPError) WithRetryAfter(seconds int) HTTPError {
	if seconds < 1 {
		seconds = 1
	}
	e.RetryAfter = seconds
	return e
}

// Predefined errors covering the error taxonomy. Message strings are pinned
// by tests; changing them is a breaking API change.
var (
	ErrBadRequest = HTTPError{
		Status:  http.StatusBadRequest,
		Message: "Bad request",
	}

	// Authentication failures intentionally share one message so responses
	// never reveal whether a username exists.
	ErrUnauthorized = HTTPError{
		Status:  http.StatusUnauthorized,
		Message: "Invalid credentials",
	}

	ErrForbidden = HTTPError{
		Status:  http.StatusForbidden,
		Message: "Forbidden",
	}

	ErrNotFound = HTTPError{
		Status:  http.StatusNotFound,
		Message: "Resource not found",
	}

	ErrMethodNotAllowed = HTTPError{
		Status:  http.StatusMethodNotAllowed,
		Message: "Method not allowed",
	}

	ErrConflict = HTTPError{
		Status:  http.StatusConflict,
		Message: "Conflict",
	}

	ErrTooManyRequests = HTTPError{
		Status:  http.StatusTooManyRequests,
		Message: "Rate limit exceeded",
	}

	ErrInternalServerError = HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	}

	ErrServiceUnavailable = HTTPError{
		Status:  http.StatusServiceUnavailable,
		Message: "Service unavailable",
	}
)
