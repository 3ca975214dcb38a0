// Package middleware provides HTTP middleware for request correlation and access logging.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

const headerRequestID = "X-Request-Id"

// RequestID ensures each request carries a correlation ID, reusing the
// caller's X-Request-Id when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		w.Header().Set(headerRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the correlation ID set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	reqID, _ := ctx.Value(requestIDKey).(string)
	return reqID
}

// LoggerFromContext returns the request-scoped logger installed by
// RequestLogging, falling back to the given logger.
func LoggerFromContext(ctx context.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
		return l
	}
	return fallback
}

// RequestLogging logs one line per request. Server errors are logged at
// error level and client errors at warn level.
func RequestLogging(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.With("request_id", RequestIDFromContext(r.Context()))
			ctx := context.WithValue(r.Context(), loggerKey, reqLog)

			ww := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r.WithContext(ctx))
			if ww.status == 0 {
				ww.status = http.StatusOK
			}

			fields := []interface{}{
				"method", r.Method,
				"path", r.RequestURI,
				"status", ww.status,
				"bytes", ww.size,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			switch {
			case ww.status >= http.StatusInternalServerError:
				reqLog.Errorw("HTTP request", fields...)
			case ww.status >= http.StatusBadRequest:
				reqLog.Warnw("HTTP request", fields...)
			default:
				reqLog.Infow("HTTP request", fields...)
			}
		})
	}
}

// responseWriter captures the status and size of a response.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Flush lets streaming handlers such as the queue dashboard flush through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
