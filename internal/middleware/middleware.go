package middleware

import (
	"errors"
	"net/http"
	"slices"

	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
	"github.com/rs/zerolog/log"
)

const SessionCookie = "session_id"

var ErrForbidden = errors.New("forbidden")

// SessionMiddleware resolves the session cookie to an identity and stores it in
// the request context.
func SessionMiddleware(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			id, err := store.Get(r.Context(), cookie.Value)
			switch {
			case errors.Is(err, session.ErrExpired):
				respond.Error(w, http.StatusUnauthorized, "Session expired")
				return
			case errors.Is(err, session.ErrNotFound):
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			case err != nil:
				log.Error().Err(err).Msg("session lookup failed")
				respond.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := utils.WithIdentity(r.Context(), cookie.Value, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize requires the identity's role to be one of roles exactly. There is
// no hierarchy: an admin only passes where "admin" is listed.
func Authorize(id session.Identity, roles ...string) error {
	if slices.Contains(roles, id.Role) {
		return nil
	}
	return ErrForbidden
}

// RequireRoles must run after SessionMiddleware.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := utils.GetIdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if err := Authorize(id, roles...); err != nil {
				respond.Error(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware echoes the origin back only if it is on the allow-list.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
