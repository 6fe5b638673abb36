package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

// NewRouter wires the user-service routes. Correlation runs before
// everything else so even panics and auth rejections echo the id.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(httpx.Recover("user-service"))
	r.Use(httpx.RequestLogger("user-service"))

	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireBearer)
			r.Post("/logout", handler.Logout)
			r.Get("/user", handler.CurrentUser)
			r.Get("/profile", handler.GetProfile)
			r.Put("/profile", handler.UpdateProfile)
			r.Get("/users", handler.ListUsers)
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", handler.GetUser)
				r.Put("/", handler.UpdateUser)
				r.Delete("/", handler.DeleteUser)
			})
		})
	})

	return r
}

// requireBearer rejects credential-less requests before any handler or
// signature check runs.
func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "Token not provided. Please login first.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
