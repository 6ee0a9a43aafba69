package auth

import (
	"net/http"

	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
)

func (h *Handler) Routes(g *middleware.Gate) {
	login := http.HandlerFunc(h.Login)
	if h.limiter != nil {
		login = h.limiter.Middleware(login).ServeHTTP
	}
	g.Post("/api/auth/login", login)
	g.Post("/api/auth/logout", h.Logout)
	g.Get("/api/auth/me", h.Me)
	g.Put("/api/auth/password", h.ChangePassword)
}
