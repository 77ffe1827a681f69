package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/taskhive/taskhive/pkg/observability"
)

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in order: the first middleware becomes the
// outermost wrapper.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID assigns each request a unique id, echoes it on the response and
// stores it in the request context for log correlation. An id supplied by the
// client in X-Request-ID is kept.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
			w.Header().Set("X-Request-ID", observability.RequestIDFromContext(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessLog logs one line per request with status and duration.
func AccessLog(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				observability.StatusKey, rec.status,
				observability.DurationKey, time.Since(start).Milliseconds(),
				observability.RequestIDKey, observability.RequestIDFromContext(r.Context()),
			)
		})
	}
}

// RecordMetrics counts requests and records latency per method and status.
func RecordMetrics(metrics observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			metrics.Counter("http_requests_total", 1,
				observability.T("method", r.Method),
				observability.T("status", strconv.Itoa(rec.status)),
			)
			metrics.Timing("http_request_duration", time.Since(start),
				observability.T("method", r.Method),
			)
		})
	}
}

// RecoverPanics converts handler panics into 500 responses so a malformed
// client request can never take the process down.
func RecoverPanics(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
						observability.RequestIDKey, observability.RequestIDFromContext(r.Context()),
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
