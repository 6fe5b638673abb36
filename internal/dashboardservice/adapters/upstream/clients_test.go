package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/ports"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

func TestUserClientParsesProfile(t *testing.T) {
	t.Parallel()

	var gotAuthz, gotCorrelation string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/profile" {
			t.Errorf("path = %q, want /api/profile", r.URL.Path)
		}
		gotAuthz = r.Header.Get("Authorization")
		gotCorrelation = r.Header.Get(correlation.Header)
		httpx.WriteSuccess(w, http.StatusOK, "Profile retrieved", ports.Profile{
			ID: "u1", Name: "A", Email: "a@example.com", Role: "admin",
		})
	}))
	defer server.Close()

	client := NewUserClient(server.URL, time.Second)
	ctx := correlation.WithID(context.Background(), "trace-77")
	result := client.GetProfile(ctx, "tok")

	if result.Failure != nil {
		t.Fatalf("failure = %+v", result.Failure)
	}
	if result.Profile == nil || result.Profile.ID != "u1" || result.Profile.Role != "admin" {
		t.Fatalf("profile = %+v", result.Profile)
	}
	if gotAuthz != "Bearer tok" {
		t.Fatalf("authorization = %q", gotAuthz)
	}
	if gotCorrelation != "trace-77" {
		t.Fatalf("correlation header = %q, want trace-77", gotCorrelation)
	}
}

func TestUserClientNormalizesServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusInternalServerError, "boom")
	}))
	defer server.Close()

	client := NewUserClient(server.URL, time.Second)
	result := client.GetProfile(context.Background(), "tok")

	if result.Failure == nil {
		t.Fatal("expected failure result")
	}
	if result.Failure.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", result.Failure.StatusCode)
	}
	if result.Profile != nil {
		t.Fatal("profile set alongside failure")
	}
}

func TestUserClientNormalizesConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewUserClient(server.URL, time.Second)
	result := client.GetProfile(context.Background(), "tok")

	if result.Failure == nil {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Failure.Reason, "unreachable") {
		t.Fatalf("reason = %q", result.Failure.Reason)
	}
	if result.Failure.StatusCode != 0 {
		t.Fatalf("status = %d, want 0 for transport failure", result.Failure.StatusCode)
	}
}

func TestUserClientNormalizesMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewUserClient(server.URL, time.Second)
	result := client.GetProfile(context.Background(), "tok")

	if result.Failure == nil || !strings.Contains(result.Failure.Reason, "decode") {
		t.Fatalf("result = %+v, want decode failure", result)
	}
}

func TestUserClientRejectsEnvelopeWithoutSubject(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, "Profile retrieved", ports.Profile{})
	}))
	defer server.Close()

	client := NewUserClient(server.URL, time.Second)
	result := client.GetProfile(context.Background(), "tok")

	if result.Profile != nil {
		t.Fatalf("profile = %+v, want none for an empty payload", result.Profile)
	}
	if result.Failure == nil || !strings.Contains(result.Failure.Reason, "no subject") {
		t.Fatalf("failure = %+v, want a no-subject failure", result.Failure)
	}
}

func TestDocumentClientRequestsPerPage(t *testing.T) {
	t.Parallel()

	var gotPerPage, gotAuthz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents" {
			t.Errorf("path = %q, want /api/documents", r.URL.Path)
		}
		gotPerPage = r.URL.Query().Get("per_page")
		gotAuthz = r.Header.Get("Authorization")
		httpx.WriteSuccess(w, http.StatusOK, "Documents retrieved", map[string]any{
			"documents": []ports.DocumentRecord{
				{ID: "d1", Type: "masuk", JenisNama: "Surat Masuk"},
				{ID: "d2", Type: "keluar", JenisNama: "Surat Keluar"},
			},
			"meta": map[string]any{"page": 1, "per_page": 1000, "total": 2, "total_pages": 1},
		})
	}))
	defer server.Close()

	client := NewDocumentClient(server.URL, time.Second)
	result := client.ListDocuments(context.Background(), "tok", url.Values{"per_page": {"1000"}})

	if result.Failure != nil {
		t.Fatalf("failure = %+v", result.Failure)
	}
	if gotPerPage != "1000" {
		t.Fatalf("per_page = %q, want 1000", gotPerPage)
	}
	if gotAuthz != "Bearer tok" {
		t.Fatalf("authorization = %q", gotAuthz)
	}
	if len(result.Documents) != 2 || result.Documents[0].JenisNama != "Surat Masuk" {
		t.Fatalf("documents = %+v", result.Documents)
	}
}

func TestDocumentClientForwardsQueryVerbatim(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		httpx.WriteSuccess(w, http.StatusOK, "Documents retrieved", map[string]any{
			"documents": []ports.DocumentRecord{},
			"meta":      map[string]any{"page": 2, "per_page": 5, "total": 0, "total_pages": 0},
		})
	}))
	defer server.Close()

	client := NewDocumentClient(server.URL, time.Second)
	result := client.ListDocuments(context.Background(), "tok", url.Values{
		"page":      {"2"},
		"per_page":  {"5"},
		"type":      {"keluar"},
		"search":    {"laporan"},
		"date_from": {"2024-01-01"},
	})

	if result.Failure != nil {
		t.Fatalf("failure = %+v", result.Failure)
	}
	want := map[string]string{
		"page": "2", "per_page": "5", "type": "keluar", "search": "laporan", "date_from": "2024-01-01",
	}
	for key, value := range want {
		if gotQuery.Get(key) != value {
			t.Fatalf("query %s = %q, want %q", key, gotQuery.Get(key), value)
		}
	}
}

func TestDocumentClientNormalizesUpstreamRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusServiceUnavailable, "down")
	}))
	defer server.Close()

	client := NewDocumentClient(server.URL, time.Second)
	result := client.ListDocuments(context.Background(), "tok", nil)

	if result.Failure == nil || result.Failure.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("result = %+v, want 503 failure", result)
	}
}
