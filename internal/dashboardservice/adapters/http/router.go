package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

func NewRouter(handler *Handler, gateway *authgw.Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(httpx.Recover("dashboard-service"))
	r.Use(httpx.RequestLogger("dashboard-service"))

	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", handler.Info)

		r.Group(func(r chi.Router) {
			r.Use(gateway.Middleware)
			r.Get("/dashboard", handler.Dashboard)
			r.Get("/dashboard/user", handler.UserInfo)
			r.Get("/dashboard/documents", handler.Documents)
		})
	})

	return r
}
