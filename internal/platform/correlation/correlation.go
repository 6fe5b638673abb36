// Package correlation threads a per-request correlation identifier through
// inbound handling, outbound calls, and responses so one external request can
// be traced across all three services.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the wire name used on requests and responses alike.
const Header = "X-Correlation-ID"

type contextKey struct{}

// Middleware assigns the request's correlation id before any other handling.
// A caller-supplied header value is reused verbatim, even when it does not
// look like a UUID, so external tracing ids survive the hop. The id is set on
// the response immediately so rejection paths echo it too.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := context.WithValue(r.Context(), contextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the correlation id assigned by Middleware, or "" when
// the request did not pass through it.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithID stores an explicit correlation id, for callers outside the HTTP
// middleware chain (workers, tests).
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Attach sets the correlation header on an outbound request when the context
// carries an id. Outbound calls made while serving an inbound request always
// carry the inbound request's id unchanged.
func Attach(ctx context.Context, req *http.Request) {
	if id := FromContext(ctx); id != "" {
		req.Header.Set(Header, id)
	}
}
