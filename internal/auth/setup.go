package auth

import (
	"time"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
)

// CookieOptions controls the session cookie written on login.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

type Handler struct {
	users    store.Store[*users.User]
	verifier *Verifier
	sessions session.Store
	activity *activity.Recorder
	limiter  *middleware.RateLimiter
	cookie   CookieOptions
}

func NewHandler(
	u store.Store[*users.User],
	sessions session.Store,
	rec *activity.Recorder,
	limiter *middleware.RateLimiter,
	cookie CookieOptions,
) *Handler {
	return &Handler{
		users:    u,
		verifier: NewVerifier(u),
		sessions: sessions,
		activity: rec,
		limiter:  limiter,
		cookie:   cookie,
	}
}
