package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

// NewRouter wires the document-service routes behind the remote auth
// gateway. Health and info stay open for probes.
func NewRouter(handler *Handler, gateway *authgw.Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(httpx.Recover("document-service"))
	r.Use(httpx.RequestLogger("document-service"))

	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", handler.Info)

		r.Group(func(r chi.Router) {
			r.Use(gateway.Middleware)
			r.Get("/documents", handler.List)
			r.Post("/documents", handler.Create)
			r.Get("/documents/me", handler.ListMine)
			r.Route("/documents/{id}", func(r chi.Router) {
				r.Get("/", handler.Get)
				r.Put("/", handler.Update)
				r.Delete("/", handler.Delete)
			})
			r.Get("/jenis-arsip", handler.ListJenis)
		})
	})

	return r
}
