package middleware

import (
	"fmt"
	"net/http"

	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/go-chi/chi/v5"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Access is the requirement a route places on its caller.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
	StaffOnly
	AdminOrStaff
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	case StaffOnly:
		return "staff"
	case AdminOrStaff:
		return "admin|staff"
	}
	return fmt.Sprintf("Access(%d)", int(a))
}

// Roles lists the roles accepted by a, or nil when no role check applies.
func (a Access) Roles() []string {
	switch a {
	case AdminOnly:
		return []string{RoleAdmin}
	case StaffOnly:
		return []string{RoleStaff}
	case AdminOrStaff:
		return []string{RoleAdmin, RoleStaff}
	}
	return nil
}

// Policy maps "METHOD /pattern" to the access a route requires.
type Policy map[string]Access

func (p Policy) Lookup(method, pattern string) (Access, bool) {
	a, ok := p[method+" "+pattern]
	return a, ok
}

// Gate registers routes on a router and wraps each one in the checks its policy
// entry demands. Registering a route without an entry panics, so nothing is
// reachable unless the table says so.
type Gate struct {
	router   chi.Router
	sessions session.Store
	policy   Policy
}

func NewGate(r chi.Router, sessions session.Store, policy Policy) *Gate {
	return &Gate{router: r, sessions: sessions, policy: policy}
}

func (g *Gate) Handle(method, pattern string, h http.HandlerFunc) {
	access, ok := g.policy.Lookup(method, pattern)
	if !ok {
		panic(fmt.Sprintf("no access policy for %s %s", method, pattern))
	}
	g.router.With(g.chain(access)...).Method(method, pattern, h)
}

func (g *Gate) Get(pattern string, h http.HandlerFunc)    { g.Handle(http.MethodGet, pattern, h) }
func (g *Gate) Post(pattern string, h http.HandlerFunc)   { g.Handle(http.MethodPost, pattern, h) }
func (g *Gate) Put(pattern string, h http.HandlerFunc)    { g.Handle(http.MethodPut, pattern, h) }
func (g *Gate) Delete(pattern string, h http.HandlerFunc) { g.Handle(http.MethodDelete, pattern, h) }

func (g *Gate) chain(a Access) []func(http.Handler) http.Handler {
	if a == Public {
		return nil
	}
	mws := []func(http.Handler) http.Handler{SessionMiddleware(g.sessions)}
	if roles := a.Roles(); roles != nil {
		mws = append(mws, RequireRoles(roles...))
	}
	return mws
}
