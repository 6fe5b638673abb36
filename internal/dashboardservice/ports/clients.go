package ports

import (
	"context"
	"net/url"
)

// Failure is the normalized outcome of an upstream call that did not yield a
// usable payload. Transport errors, timeouts, and non-2xx responses all land
// here; nothing upstream-shaped ever surfaces as a raw error.
type Failure struct {
	Reason     string
	StatusCode int
}

// Profile is the critical upstream payload, the caller's identity as the
// user service reports it.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProfileResult is a tagged outcome: exactly one of Profile or Failure is
// set.
type ProfileResult struct {
	Profile *Profile
	Failure *Failure
}

// DocumentRecord is the slice of a listed document the aggregator needs for
// its stats reduction.
type DocumentRecord struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	JenisNama string `json:"jenis_arsip_nama"`
}

type DocumentListResult struct {
	Documents []DocumentRecord
	Failure   *Failure
}

// ProfileReader fetches the caller's profile from the user service, always
// carrying the bearer token and the request's correlation id.
type ProfileReader interface {
	GetProfile(ctx context.Context, token string) ProfileResult
}

// DocumentLister fetches a document listing from the document service. The
// caller's query params are forwarded as-is so pagination and filters behave
// exactly as they do against the document service directly.
type DocumentLister interface {
	ListDocuments(ctx context.Context, token string, params url.Values) DocumentListResult
}
