package dashboard

import "github.com/EmpoweredVote/barangay-admin/internal/middleware"

func (h *Handler) Routes(g *middleware.Gate) {
	g.Get("/api/dashboard/stats", h.Stats)
	g.Get("/api/dashboard/activities", h.Activities)
	g.Post("/api/dashboard/activities", h.CreateActivity)
}
