package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/logger"
	"github.com/plannerhq/planner/core/sanitizer"
)

// statusCode is implemented by errors that carry their own HTTP status.
type statusCode interface {
	StatusCode() int
}

// stackTracer is implemented by recovered panics wrapped by the router.
type stackTracer interface {
	error
	Stack() []byte
}

// writtenTracker is implemented by the router's response writer.
type writtenTracker interface {
	Written() bool
}

// convertToHTTPError maps any error to the uniform wire shape. Anything
// without an explicit mapping degrades to a generic 500 so internals are
// never disclosed.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if sc, ok := err.(statusCode); ok {
		switch sc.StatusCode() {
		case http.StatusBadRequest:
			return ErrBadRequest.WithError(err)
		case http.StatusUnauthorized:
			return ErrUnauthorized.WithError(err)
		case http.StatusForbidden:
			return ErrForbidden.WithError(err)
		case http.StatusNotFound:
			return ErrNotFound.WithError(err)
		case http.StatusMethodNotAllowed:
			return ErrMethodNotAllowed.WithError(err)
		case http.StatusConflict:
			return ErrConflict.WithError(err)
		case http.StatusTooManyRequests:
			return ErrTooManyRequests.WithError(err)
		case http.StatusServiceUnavailable:
			return ErrServiceUnavailable.WithError(err)
		}
	}

	return ErrInternalServerError.WithError(err)
}

// JSONErrorHandler projects errors with the process-default logger.
func JSONErrorHandler(ctx *handler.Context, err error) {
	NewJSONErrorHandler(slog.Default())(ctx, err)
}

// NewJSONErrorHandler returns the error projection handler: every failure is
// logged with its correlation id and emitted as the single JSON error shape.
// Projection is idempotent: projecting an already-projected error yields the
// same status and body.
func NewJSONErrorHandler(log *slog.Logger) handler.ErrorHandler {
	return func(ctx *handler.Context, err error) {
		httpErr := convertToHTTPError(err)

		attrs := []slog.Attr{
			logger.CorrelationID(ctx.CorrelationID()),
			logger.StatusCode(httpErr.Status),
			slog.String("message", sanitizer.SingleLine(httpErr.Message)),
			logger.Error(httpErr.Unwrap()),
		}

		// Stack traces are logged at ERROR only for the internal kind.
		if httpErr.Status >= http.StatusInternalServerError {
			if st, ok := err.(stackTracer); ok {
				attrs = append(attrs, slog.String("stack", string(st.Stack())))
			}
			log.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
		} else {
			log.LogAttrs(ctx, slog.LevelWarn, "request rejected", attrs...)
		}

		w := ctx.ResponseWriter()
		if wt, ok := w.(writtenTracker); ok && wt.Written() {
			return
		}

		w.Header().Set("Content-Type", ContentTypeJSON)
		if httpErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(httpErr.RetryAfter))
		}
		w.WriteHeader(httpErr.Status)
		_ = json.NewEncoder(w).Encode(httpErr)
	}
}
