package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Recover converts handler panics into enveloped 500s instead of dropping the
// connection.
func Recover(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.ErrorContext(r.Context(), "panic recovered",
						"service", service,
						"layer", "http",
						"path", r.URL.Path,
						"panic", rec,
						"correlation_id", correlation.FromContext(r.Context()),
					)
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger emits one structured line per request with the resolved
// status and the correlation id.
func RequestLogger(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			slog.InfoContext(r.Context(), "http request",
				"service", service,
				"layer", "http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(started).Milliseconds(),
				"correlation_id", correlation.FromContext(r.Context()),
			)
		})
	}
}
