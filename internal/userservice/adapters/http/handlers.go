package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/application"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/domain"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, "user-service is healthy", map[string]string{"status": "ok"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "User registered successfully", user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Login successful", resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), bearerToken(r)); err != nil {
		h.writeError(w, r, "logout", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// CurrentUser is the identity-verification boundary downstream auth gateways
// call. Its data payload must stay shape-compatible with authgw.Subject.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetProfile(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, r, "current_user", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Authenticated user retrieved", user)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetProfile(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, r, "get_profile", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Profile retrieved", user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req application.ProfileUpdateRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), bearerToken(r), req)
	if err != nil {
		h.writeError(w, r, "update_profile", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Profile updated", user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := application.ListUsersQuery{
		Page:    httpx.ParseIntDefault(r.URL.Query().Get("page"), 1),
		PerPage: httpx.ParseIntDefault(r.URL.Query().Get("per_page"), 15),
	}
	list, err := h.service.ListUsers(r.Context(), bearerToken(r), query)
	if err != nil {
		h.writeError(w, r, "list_users", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Users retrieved", list)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), bearerToken(r), userID)
	if err != nil {
		h.writeError(w, r, "get_user", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "User retrieved", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req application.UserUpdateRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	user, err := h.service.UpdateUser(r.Context(), bearerToken(r), userID, req)
	if err != nil {
		h.writeError(w, r, "update_user", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "User updated", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(r.Context(), bearerToken(r), userID); err != nil {
		h.writeError(w, r, "delete_user", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "User deleted", nil)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "Resource not found")
		return uuid.UUID{}, false
	}
	return userID, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, message := mapDomainError(err)
	if status >= http.StatusInternalServerError && !errors.Is(err, domain.ErrStorageUnavailable) {
		slog.ErrorContext(r.Context(), "handler error",
			"service", "user-service",
			"layer", "http",
			"operation", operation,
			"error", err.Error(),
			"correlation_id", correlation.FromContext(r.Context()),
		)
	}
	httpx.WriteError(w, status, message)
}

func bearerToken(r *http.Request) string {
	return authgw.BearerToken(r)
}
