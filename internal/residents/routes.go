package residents

import "github.com/EmpoweredVote/barangay-admin/internal/middleware"

func (h *Handler) Routes(g *middleware.Gate) {
	g.Get("/api/residents", h.List)
	g.Post("/api/residents", h.Create)
	g.Get("/api/residents/{id}", h.Get)
	g.Put("/api/residents/{id}", h.Update)
	g.Delete("/api/residents/{id}", h.Delete)
}
