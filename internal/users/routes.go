package users

import "github.com/EmpoweredVote/barangay-admin/internal/middleware"

func (h *Handler) Routes(g *middleware.Gate) {
	g.Get("/api/users", h.List)
	g.Post("/api/users", h.Create)
	g.Get("/api/users/{id}", h.Get)
	g.Put("/api/users/{id}", h.Update)
	g.Delete("/api/users/{id}", h.Delete)
}
