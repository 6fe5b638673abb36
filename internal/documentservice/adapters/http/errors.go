package http

import (
	"errors"
	"net/http"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
)

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownJenis):
		return http.StatusUnprocessableEntity, "Unknown jenis arsip"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "Validation failed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "File storage is currently unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
