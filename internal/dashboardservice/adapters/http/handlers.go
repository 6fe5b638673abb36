package http

import (
	"errors"
	"net/http"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/application"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, "dashboard-service is healthy", map[string]string{"status": "ok"})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token := authgw.TokenFromContext(r.Context())
	data, warnings, err := h.service.BuildDashboard(r.Context(), token)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	if len(warnings) > 0 {
		httpx.WriteDegraded(w, "Dashboard data retrieved (Document Service unavailable)", data, warnings)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Dashboard data retrieved successfully", data)
}

func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	token := authgw.TokenFromContext(r.Context())
	profile, err := h.service.UserOverview(r.Context(), token)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "User info retrieved", profile)
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, "Service info", h.service.Info())
}

func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	token := authgw.TokenFromContext(r.Context())
	documents, err := h.service.DocumentsOverview(r.Context(), token, r.URL.Query())
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Documents retrieved", documents)
}

func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrUserUpstream):
		httpx.WriteError(w, http.StatusServiceUnavailable, "User Service unavailable")
	case errors.Is(err, application.ErrDocumentUpstream):
		httpx.WriteError(w, http.StatusServiceUnavailable, "Document Service unavailable")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "Dashboard error")
	}
}
