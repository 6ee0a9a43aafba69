package server

import "github.com/EmpoweredVote/barangay-admin/internal/middleware"

// Policy is the single table of who may call what. A route missing from it
// cannot be registered. Admins are listed explicitly wherever they may act;
// nothing is inherited from another role.
var Policy = middleware.Policy{
	"POST /api/auth/login":   middleware.Public,
	"POST /api/auth/logout":  middleware.Public,
	"GET /api/auth/me":       middleware.Authenticated,
	"PUT /api/auth/password": middleware.Authenticated,

	"GET /api/users":         middleware.AdminOnly,
	"POST /api/users":        middleware.AdminOnly,
	"GET /api/users/{id}":    middleware.AdminOnly,
	"PUT /api/users/{id}":    middleware.AdminOnly,
	"DELETE /api/users/{id}": middleware.AdminOnly,

	"GET /api/residents":         middleware.AdminOrStaff,
	"POST /api/residents":        middleware.AdminOrStaff,
	"GET /api/residents/{id}":    middleware.AdminOrStaff,
	"PUT /api/residents/{id}":    middleware.AdminOrStaff,
	"DELETE /api/residents/{id}": middleware.AdminOnly,

	"GET /api/requests":         middleware.AdminOrStaff,
	"POST /api/requests":        middleware.AdminOrStaff,
	"GET /api/requests/{id}":    middleware.AdminOrStaff,
	"PUT /api/requests/{id}":    middleware.AdminOrStaff,
	"DELETE /api/requests/{id}": middleware.AdminOnly,

	"GET /api/dashboard/stats":       middleware.AdminOrStaff,
	"GET /api/dashboard/activities":  middleware.AdminOrStaff,
	"POST /api/dashboard/activities": middleware.AdminOrStaff,
}
