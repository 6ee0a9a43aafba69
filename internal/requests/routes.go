package requests

import "github.com/EmpoweredVote/barangay-admin/internal/middleware"

func (h *Handler) Routes(g *middleware.Gate) {
	g.Get("/api/requests", h.List)
	g.Post("/api/requests", h.Create)
	g.Get("/api/requests/{id}", h.Get)
	g.Put("/api/requests/{id}", h.Update)
	g.Delete("/api/requests/{id}", h.Delete)
}
