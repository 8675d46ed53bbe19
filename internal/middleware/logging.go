package middleware

import (
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// LoggingMiddleware logs each request with a level matching its status
// class.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			written:        false,
		}

		logger := GetLoggerFromContext(r.Context())

		logger.Info("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		statusCode := wrapped.statusCode
		logAttrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
		}

		switch {
		case statusCode >= 500:
			logger.Error("Request completed with server error", logAttrs...)
		case statusCode >= 400:
			logger.Warn("Request completed with client error", logAttrs...)
		default:
			logger.Info("Request completed successfully", logAttrs...)
		}
	})
}
