// Package authgw authenticates inbound requests on behalf of services that
// do not own identities themselves. A bearer token is resolved to a Subject
// by the central user service, with verification outcomes cached for a
// bounded TTL so the remote call is skipped on repeat traffic.
package authgw

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Subject is the identity a token resolves to, immutable for the duration of
// the request that resolved it.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

var (
	// ErrNoToken means the caller omitted credentials entirely.
	ErrNoToken = errors.New("no bearer token provided")
	// ErrTokenRejected means the verifier explicitly refused the token.
	ErrTokenRejected = errors.New("token rejected by identity service")
	// ErrVerifierUnavailable means the verifier could not be reached at all,
	// which callers must not mistake for a credential problem.
	ErrVerifierUnavailable = errors.New("identity service unavailable")
)

// Verifier resolves a bearer token to a Subject by asking the identity
// service. Implementations return ErrTokenRejected for an explicit refusal
// and ErrVerifierUnavailable for connect or timeout failures.
type Verifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

// TokenCache maps token digests to previously verified subjects. Entries
// expire lazily after their TTL; Evict removes an entry entirely so the next
// lookup is a guaranteed miss.
type TokenCache interface {
	Get(ctx context.Context, token string) (Subject, bool, error)
	Put(ctx context.Context, token string, subject Subject, ttl time.Duration) error
	Evict(ctx context.Context, token string) error
}

// digest keys the cache on a one-way hash so raw credentials never appear in
// cache storage.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
