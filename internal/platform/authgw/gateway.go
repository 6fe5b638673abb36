package authgw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

// DefaultTTL is how long a verified subject stays cached.
const DefaultTTL = 300 * time.Second

type subjectKey struct{}

// Gateway admits or rejects inbound requests by resolving their bearer token
// through the cache-then-verifier path.
type Gateway struct {
	cache    TokenCache
	verifier Verifier
	ttl      time.Duration
	service  string
}

func NewGateway(service string, cache TokenCache, verifier Verifier, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gateway{cache: cache, verifier: verifier, ttl: ttl, service: service}
}

// Authenticate resolves a token to its subject. A cache hit skips the remote
// call entirely. An explicit refusal evicts any stale entry so a retried,
// now-valid token is never shadowed by an old outcome; a failed verification
// is never negatively cached for the same reason.
func (g *Gateway) Authenticate(ctx context.Context, token string) (Subject, error) {
	if token == "" {
		return Subject{}, ErrNoToken
	}

	if subject, ok, err := g.cache.Get(ctx, token); err == nil && ok {
		g.log(ctx, "cache_hit", nil)
		return subject, nil
	} else if err != nil {
		g.log(ctx, "cache_error", err)
	}

	subject, err := g.verifier.Verify(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenRejected):
			_ = g.cache.Evict(ctx, token)
			g.log(ctx, "token_rejected", err)
		case errors.Is(err, ErrVerifierUnavailable):
			g.log(ctx, "verifier_unavailable", err)
		default:
			g.log(ctx, "verify_error", err)
		}
		return Subject{}, err
	}

	if err := g.cache.Put(ctx, token, subject, g.ttl); err != nil {
		// A cache write failure only costs a future remote call.
		g.log(ctx, "cache_write_error", err)
	}
	g.log(ctx, "admitted", nil)
	return subject, nil
}

// Middleware short-circuits unauthenticated requests before any handler
// runs. The correlation header is already on the response by the time a
// rejection is written, because the correlation middleware runs first.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		subject, err := g.Authenticate(r.Context(), token)
		if err != nil {
			status, message := rejectionResponse(err)
			httpx.WriteError(w, status, message)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey{}, subject)
		ctx = context.WithValue(ctx, tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rejectionResponse(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNoToken):
		return http.StatusUnauthorized, "Token not provided. Please login first."
	case errors.Is(err, ErrTokenRejected):
		return http.StatusUnauthorized, "Invalid or expired token. Please login again."
	case errors.Is(err, ErrVerifierUnavailable):
		return http.StatusServiceUnavailable, "Authentication service is currently unavailable. Please try again later."
	default:
		return http.StatusInternalServerError, "An error occurred during authentication."
	}
}

func (g *Gateway) log(ctx context.Context, outcome string, err error) {
	attrs := []any{
		"service", g.service,
		"layer", "authgw",
		"operation", "authenticate",
		"outcome", outcome,
		"correlation_id", correlation.FromContext(ctx),
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
		slog.WarnContext(ctx, "token verification", attrs...)
		return
	}
	slog.DebugContext(ctx, "token verification", attrs...)
}

type tokenKey struct{}

// SubjectFromContext returns the admitted subject for the request.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	subject, ok := ctx.Value(subjectKey{}).(Subject)
	return subject, ok
}

// TokenFromContext returns the raw bearer token the request was admitted
// with, for handlers that call further upstream services on the caller's
// behalf.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// BearerToken extracts the token from an Authorization header, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
