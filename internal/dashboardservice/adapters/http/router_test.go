package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/adapters/upstream"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/application"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/ports"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

// correlationLog records the correlation header each upstream stub saw, keyed
// by request path. The aggregator hits both stubs concurrently, so access is
// mutex-guarded.
type correlationLog struct {
	mu   sync.Mutex
	seen map[string]string
}

func newCorrelationLog() *correlationLog {
	return &correlationLog{seen: make(map[string]string)}
}

func (l *correlationLog) record(path, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[path] = id
}

func (l *correlationLog) get(path string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[path]
}

// identityStub backs both the auth gateway's verification call and the
// aggregator's profile fetch, the way the user service does in production.
func identityStub(t *testing.T, log *correlationLog) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer live-token" {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired token. Please login again.")
			return
		}
		log.record(r.URL.Path, r.Header.Get(correlation.Header))
		httpx.WriteSuccess(w, http.StatusOK, "ok", ports.Profile{
			ID: "u1", Name: "A", Email: "a@example.com", Role: "p3m",
		})
	}))
}

func newTestRouter(t *testing.T, identityURL, documentURL string) http.Handler {
	t.Helper()
	gateway := authgw.NewGateway("dashboard-service",
		authgw.NewMemoryCache(),
		authgw.NewHTTPVerifier(identityURL, time.Second),
		time.Minute,
	)
	service := application.NewService(
		upstream.NewUserClient(identityURL, time.Second),
		upstream.NewDocumentClient(documentURL, time.Second),
		"test",
	)
	return NewRouter(NewHandler(service), gateway)
}

func TestDashboardFullSuccess(t *testing.T) {
	t.Parallel()

	seen := newCorrelationLog()
	identity := identityStub(t, seen)
	defer identity.Close()

	documents := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.record(r.URL.Path, r.Header.Get(correlation.Header))
		httpx.WriteSuccess(w, http.StatusOK, "Documents retrieved", map[string]any{
			"documents": []ports.DocumentRecord{
				{ID: "d1", Type: "masuk", JenisNama: "Surat Masuk"},
				{ID: "d2", Type: "keluar", JenisNama: "Surat Keluar"},
			},
		})
	}))
	defer documents.Close()

	router := newTestRouter(t, identity.URL, documents.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer live-token")
	req.Header.Set(correlation.Header, "trace-e2e")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(correlation.Header); got != "trace-e2e" {
		t.Fatalf("response correlation = %q", got)
	}
	// Both hops saw the inbound id.
	if seen.get("/api/profile") != "trace-e2e" || seen.get("/api/documents") != "trace-e2e" {
		t.Fatalf("propagated correlation ids = %v, %v", seen.get("/api/profile"), seen.get("/api/documents"))
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			User          *ports.Profile             `json:"user"`
			DocumentStats *application.DocumentStats `json:"document_stats"`
		} `json:"data"`
		Warnings map[string]string `json:"warnings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Message != "Dashboard data retrieved successfully" {
		t.Fatalf("body = %+v", body)
	}
	if body.Data.User == nil || body.Data.User.ID != "u1" {
		t.Fatalf("user = %+v", body.Data.User)
	}
	if body.Data.DocumentStats == nil || body.Data.DocumentStats.TotalDocuments != 2 {
		t.Fatalf("stats = %+v", body.Data.DocumentStats)
	}
	if body.Warnings != nil {
		t.Fatalf("warnings = %v", body.Warnings)
	}
}

func TestDashboardDegradedWhenDocumentServiceDown(t *testing.T) {
	t.Parallel()

	seen := newCorrelationLog()
	identity := identityStub(t, seen)
	defer identity.Close()

	documents := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	documents.Close()

	router := newTestRouter(t, identity.URL, documents.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer live-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want degraded 200", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	// The stats field must be an explicit null, not absent.
	if string(data["document_stats"]) != "null" {
		t.Fatalf("document_stats = %s, want null", data["document_stats"])
	}
	var warnings map[string]string
	if err := json.Unmarshal(raw["warnings"], &warnings); err != nil {
		t.Fatalf("decode warnings: %v", err)
	}
	if warnings["document_service"] != "unavailable" {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestDashboardFailsWhenUserServiceDown(t *testing.T) {
	t.Parallel()

	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/user" {
			// The gateway's verification still succeeds; only the profile
			// fetch fails, isolating the critical-dependency branch.
			httpx.WriteSuccess(w, http.StatusOK, "ok", ports.Profile{ID: "u1"})
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "boom")
	}))
	defer identity.Close()

	documents := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, "ok", map[string]any{"documents": []ports.DocumentRecord{}})
	}))
	defer documents.Close()

	router := newTestRouter(t, identity.URL, documents.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer live-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var envelope httpx.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Success || envelope.Message != "User Service unavailable" {
		t.Fatalf("envelope = %+v", envelope)
	}
}

func TestDashboardRejectsMissingToken(t *testing.T) {
	t.Parallel()

	seen := newCorrelationLog()
	identity := identityStub(t, seen)
	defer identity.Close()

	router := newTestRouter(t, identity.URL, identity.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get(correlation.Header) == "" {
		t.Fatal("rejection missing generated correlation id")
	}
	var envelope httpx.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Message != "Token not provided. Please login first." {
		t.Fatalf("message = %q", envelope.Message)
	}
}

func TestInfoIsOpenWithoutToken(t *testing.T) {
	t.Parallel()

	seen := newCorrelationLog()
	identity := identityStub(t, seen)
	defer identity.Close()

	router := newTestRouter(t, identity.URL, identity.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool                    `json:"success"`
		Data    application.ServiceInfo `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.Service != "dashboard-service" || body.Data.Version != "test" {
		t.Fatalf("body = %+v", body)
	}
}
