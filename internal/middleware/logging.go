// Package middleware contains HTTP middleware shared by every route.
//
// A middleware wraps a handler to add behaviour around it:
//
//	func MyMiddleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before
//	        next.ServeHTTP(w, r)
//	        // after
//	    })
//	}
//
// Access control is not here; see auth.Require for the per-route guards.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter records the status code and body size, which
// http.ResponseWriter does not expose once written.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger logs one line per request with method, path, status, duration,
// bytes written and the request id assigned by chi's RequestID middleware.
//
// Server errors are logged at Error, client errors at Warn, the rest at Info.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
