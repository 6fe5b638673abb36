package application

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/ports"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
)

// statsPerPage is the listing size the stats reduction works over. The
// document service accepts this cap, so one fetch covers the whole archive
// for institutions of the intended size.
const statsPerPage = 1000

var (
	// ErrUserUpstream fails the whole aggregate: the profile is the critical
	// dependency and there is nothing useful to compose without it.
	ErrUserUpstream = errors.New("user service unavailable")
	// ErrDocumentUpstream is returned only by the documents pass-through;
	// during aggregation the same condition degrades to a warning instead.
	ErrDocumentUpstream = errors.New("document service unavailable")
)

// DocumentStats is the reduction the aggregator computes locally from the
// raw listing rather than delegating to the document service.
type DocumentStats struct {
	TotalDocuments int            `json:"total_documents"`
	ByJenis        map[string]int `json:"by_jenis"`
	Masuk          int            `json:"masuk"`
	Keluar         int            `json:"keluar"`
}

// DashboardData keeps DocumentStats a pointer so a degraded response renders
// an explicit null instead of dropping the field.
type DashboardData struct {
	User          *ports.Profile `json:"user"`
	DocumentStats *DocumentStats `json:"document_stats"`
}

// ServiceInfo is the public metadata payload behind GET /api/info.
type ServiceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

type Service struct {
	profiles  ports.ProfileReader
	documents ports.DocumentLister
	version   string
}

func NewService(profiles ports.ProfileReader, documents ports.DocumentLister, version string) *Service {
	return &Service{profiles: profiles, documents: documents, version: version}
}

func (s *Service) Info() ServiceInfo {
	return ServiceInfo{Service: "dashboard-service", Version: s.version}
}

// BuildDashboard fans out to both upstreams concurrently and composes the
// result under the critical/optional policy: a profile failure rejects the
// whole aggregate and discards whatever the document call returned, while a
// document failure degrades to a warning beside the profile data.
func (s *Service) BuildDashboard(ctx context.Context, token string) (DashboardData, map[string]string, error) {
	var (
		wg            sync.WaitGroup
		profileResult ports.ProfileResult
		listResult    ports.DocumentListResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profileResult = s.profiles.GetProfile(ctx, token)
	}()
	go func() {
		defer wg.Done()
		listResult = s.documents.ListDocuments(ctx, token, statsFetchParams())
	}()
	wg.Wait()

	if profileResult.Failure != nil {
		s.logFailure(ctx, "user-service", profileResult.Failure)
		return DashboardData{}, nil, ErrUserUpstream
	}

	if listResult.Failure != nil {
		s.logFailure(ctx, "document-service", listResult.Failure)
		return DashboardData{User: profileResult.Profile},
			map[string]string{"document_service": "unavailable"},
			nil
	}

	stats := computeStats(listResult.Documents)
	return DashboardData{User: profileResult.Profile, DocumentStats: &stats}, nil, nil
}

// UserOverview is the profile pass-through behind /api/dashboard/user.
func (s *Service) UserOverview(ctx context.Context, token string) (ports.Profile, error) {
	result := s.profiles.GetProfile(ctx, token)
	if result.Failure != nil {
		s.logFailure(ctx, "user-service", result.Failure)
		return ports.Profile{}, ErrUserUpstream
	}
	return *result.Profile, nil
}

// DocumentsOverview is the listing pass-through behind
// /api/dashboard/documents. The caller's query params travel to the document
// service untouched; only a missing per_page gets the stats-fetch default.
func (s *Service) DocumentsOverview(ctx context.Context, token string, params url.Values) ([]ports.DocumentRecord, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("per_page") == "" {
		params.Set("per_page", strconv.Itoa(statsPerPage))
	}
	result := s.documents.ListDocuments(ctx, token, params)
	if result.Failure != nil {
		s.logFailure(ctx, "document-service", result.Failure)
		return nil, ErrDocumentUpstream
	}
	return result.Documents, nil
}

func statsFetchParams() url.Values {
	return url.Values{"per_page": []string{strconv.Itoa(statsPerPage)}}
}

func computeStats(documents []ports.DocumentRecord) DocumentStats {
	stats := DocumentStats{
		TotalDocuments: len(documents),
		ByJenis:        make(map[string]int),
	}
	for _, doc := range documents {
		jenis := doc.JenisNama
		if jenis == "" {
			jenis = "Unknown"
		}
		stats.ByJenis[jenis]++

		switch doc.Type {
		case "masuk":
			stats.Masuk++
		case "keluar":
			stats.Keluar++
		}
	}
	return stats
}

func (s *Service) logFailure(ctx context.Context, dependency string, failure *ports.Failure) {
	slog.WarnContext(ctx, "upstream dependency failed",
		"service", "dashboard-service",
		"layer", "application",
		"dependency", dependency,
		"reason", failure.Reason,
		"status_code", failure.StatusCode,
		"correlation_id", correlation.FromContext(ctx),
	)
}
