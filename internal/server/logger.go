package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/quadtile/internal/metrics"
)

// RequestLogger is a middleware to log HTTP requests and record metrics.
// The metrics provider may be nil when /metrics is disabled.
func RequestLogger(next http.Handler, m *metrics.Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Str("ip", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Request processed")

		if m != nil {
			m.ObserveHTTP(r.Method, routeLabel(r.URL.Path), ww.statusCode, time.Since(start))
		}
	})
}

// routeLabel collapses per-quadkey paths to keep metric cardinality bounded.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/quadkey/") {
		return "/api/quadkey/{key}"
	}
	return path
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
