package user

import "github.com/go-chi/chi/v5"

// Register mounts the user routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/user", h.Signup)
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.Update)
}
