package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/logger"
	"github.com/plannerhq/planner/core/sanitizer"
	"github.com/plannerhq/planner/pkg/clientip"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool
	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger
	// Component name for structured logging (default: "http")
	Component string
	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration
}

// Logging creates a request logging middleware with default configuration.
func Logging() handler.Middleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger(log *slog.Logger) handler.Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration. One line is emitted per completed request. Every value
// derived from the request passes through the sanitizer first: the path and
// user agent are stripped of control characters, sensitive query parameters
// are redacted, and the client IP is masked.
func LoggingWithConfig(cfg LoggingConfig) handler.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx *handler.Context) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			response := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				tracked := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
				err := response(tracked, r)
				duration := time.Since(start)

				// Errors are projected by the router after this wrapper
				// returns, so the eventual status must be derived from the
				// error when the response is still unwritten.
				status := tracked.status
				if err != nil && !tracked.written {
					status = http.StatusInternalServerError
					var sc interface{ StatusCode() int }
					if errors.As(err, &sc) {
						status = sc.StatusCode()
					}
				}

				attrs := []slog.Attr{
					logger.Component(cfg.Component),
					logger.CorrelationID(ctx.CorrelationID()),
					logger.Method(r.Method),
					logger.Path(sanitizer.SanitizeLogValue(r.URL.Path)),
					logger.Query(sanitizer.RedactQueryParams(r.URL.RawQuery)),
					logger.StatusCode(status),
					logger.ClientIP(sanitizer.MaskIP(clientip.GetIP(r))),
					logger.UserAgent(sanitizer.SanitizeUserAgent(r.UserAgent())),
					logger.Username(ctx.Principal().Username),
					logger.BytesOut(tracked.bytes),
					logger.Duration(duration),
				}

				level := slog.LevelInfo
				switch {
				case status >= 500:
					level = slog.LevelError
					attrs = append(attrs, logger.Error(err))
				case status >= 400:
					level = slog.LevelWarn
				case duration > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow_request", true))
				}

				cfg.Logger.LogAttrs(r.Context(), level, "request completed", attrs...)
				return err
			}
		}
	}
}

// loggingWriter captures the status code and body size for the log line.
type loggingWriter struct {
	http.ResponseWriter
	status  int
	bytes   int64
	written bool
}

func (w *loggingWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *loggingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
