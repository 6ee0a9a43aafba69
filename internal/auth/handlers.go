package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/httputil"
	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
	"github.com/rs/zerolog/log"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := validate.Missing(body, "email", "password"); len(missing) > 0 {
		respond.Fields(w, "Email and password are required", missing)
		return
	}
	var in loginInput
	if err := httputil.Bind(body, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.verifier.VerifyCredentials(r.Context(), in.Email, in.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		log.Info().Str("email", in.Email).Msg("failed login")
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case errors.Is(err, ErrInactive):
		respond.Error(w, http.StatusForbidden, "Account is inactive")
		return
	case err != nil:
		respond.Internal(w, r, err, "Login failed")
		return
	}

	token, err := session.NewToken()
	if err != nil {
		respond.Internal(w, r, err, "Login failed")
		return
	}
	id := session.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.FullName(),
		Role:   u.Role,
	}
	if err := h.sessions.Set(r.Context(), token, id); err != nil {
		respond.Internal(w, r, err, "Login failed")
		return
	}
	h.setCookie(w, token)

	if updated, err := h.users.Update(r.Context(), u.ID, map[string]any{"lastLoginAt": store.Timestamp()}); err != nil {
		log.Warn().Err(err).Int("user_id", u.ID).Msg("failed to record last login")
	} else {
		u = updated
	}

	h.activity.Record(r.Context(), id, activity.Activity{
		Type:        activity.TypeAuth,
		Action:      "login",
		Description: fmt.Sprintf("%s logged in", u.FullName()),
		EntityType:  "user",
		EntityID:    u.ID,
	})

	respond.OK(w, loginResult{User: u.Public(), Redirect: redirects[u.Role]})
}

// Logout drops the server-side session, if any, and always clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookie); err == nil && c.Value != "" {
		id, getErr := h.sessions.Get(r.Context(), c.Value)
		if err := h.sessions.Delete(r.Context(), c.Value); err != nil {
			log.Warn().Err(err).Msg("failed to delete session")
		}
		if getErr == nil {
			h.activity.Record(r.Context(), id, activity.Activity{
				Type:        activity.TypeAuth,
				Action:      "logout",
				Description: fmt.Sprintf("%s logged out", id.Name),
				EntityType:  "user",
				EntityID:    id.UserID,
			})
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookie.Secure,
	})
	respond.Message(w, "Logged out successfully")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := utils.GetIdentityFromContext(r.Context())
	u, err := h.users.Get(r.Context(), id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch user")
		return
	}
	respond.OK(w, u.Public())
}

// ChangePassword re-hashes the caller's password and revokes their other sessions.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := validate.Missing(body, "currentPassword", "newPassword"); len(missing) > 0 {
		respond.Fields(w, "Missing required fields", missing)
		return
	}
	var in passwordInput
	if err := httputil.Bind(body, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Password("newPassword", in.NewPassword); err != nil {
		respond.Fields(w, err.Error(), []string{"newPassword"})
		return
	}

	id, _ := utils.GetIdentityFromContext(r.Context())
	token, _ := utils.GetTokenFromContext(r.Context())

	u, err := h.users.Get(r.Context(), id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to update password")
		return
	}
	if err := password.Check(u.Password, in.CurrentPassword); err != nil {
		respond.Error(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := password.Hash(in.NewPassword)
	if err != nil {
		respond.Internal(w, r, err, "Failed to update password")
		return
	}
	if _, err := h.users.Update(r.Context(), u.ID, map[string]any{"password": hashed}); err != nil {
		respond.Internal(w, r, err, "Failed to update password")
		return
	}

	if err := h.sessions.DeleteUser(r.Context(), u.ID); err != nil {
		log.Warn().Err(err).Int("user_id", u.ID).Msg("failed to revoke sessions")
	}
	if err := h.sessions.Set(r.Context(), token, id); err != nil {
		log.Warn().Err(err).Int("user_id", u.ID).Msg("failed to restore current session")
	}

	h.activity.Record(r.Context(), id, activity.Activity{
		Type:        activity.TypeAuth,
		Action:      "password",
		Description: fmt.Sprintf("%s changed their password", u.FullName()),
		EntityType:  "user",
		EntityID:    u.ID,
	})
	respond.Message(w, "Password updated successfully")
}

func (h *Handler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookie.Secure,
	})
}
