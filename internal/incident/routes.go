package incident

import "github.com/go-chi/chi/v5"

func (h *Handler) Register(r chi.Router) {
	r.Post("/incident", h.Create)

	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/range", h.ByDateRange)
		r.Get("/zone/{zoneId}", h.ByZone)
		r.Get("/type/{type}", h.ByType)
		r.Get("/severity/{severity}", h.BySeverity)

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Put("/{id}/validate", h.Validate)
	})
}
