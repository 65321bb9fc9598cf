package server

import (
	"github.com/go-chi/chi/v5"
)

// New returns the bridge's HTTP routes.
func New(h *Handler, adminToken string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)

	r.Get("/healthz", Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/forms/submissions", h.Submit)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuth(adminToken))
			r.Get("/debug-log", h.ReadLog)
			r.Delete("/debug-log", h.ClearLog)
		})
	})

	return r
}
