package zone

import "github.com/go-chi/chi/v5"

// Register mounts both zone surfaces and the standalone polygon route on r.
// /zone and /zones share handlers.
func (h *Handler) Register(r chi.Router) {
	r.Post("/zone", h.Create)
	r.Get("/zone", h.List)
	r.Put("/zone/{id}", h.Update)
	r.Delete("/zone/{id}", h.Delete)

	r.Get("/zones", h.List)
	r.Get("/zones/{id}", h.Get)
	r.Get("/zones/{id}/geojson", h.GeoJSON)
	r.Put("/zones/{id}", h.Update)
	r.Delete("/zones/{id}", h.Delete)

	r.Post("/polygon", h.CreatePolygon)
}
