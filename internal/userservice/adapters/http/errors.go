package http

import (
	"errors"
	"net/http"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/domain"
)

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusUnprocessableEntity, "Email is already registered"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "Validation failed"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusUnauthorized, "Too many failed attempts. Account temporarily locked"
	case errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, "Invalid or expired token. Please login again."
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid or expired token. Please login again."
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
