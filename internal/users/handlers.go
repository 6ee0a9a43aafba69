package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/httputil"
	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/textutil"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
	"github.com/rs/zerolog/log"
)

// List handles GET /api/users?role=&status=&search=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := store.Query[*User]{
		Page:  httputil.QueryInt(r, "page", 1),
		Limit: httputil.QueryInt(r, "limit", store.DefaultLimit),
	}
	if role := q.Get("role"); role != "" {
		query = query.Where(func(u *User) bool { return u.Role == role })
	}
	if status := q.Get("status"); status != "" {
		query = query.Where(func(u *User) bool { return u.Status == status })
	}
	if search := q.Get("search"); search != "" {
		query = query.Where(func(u *User) bool {
			return textutil.ContainsFold(search, u.FirstName, u.LastName, u.Email)
		})
	}

	page, err := store.List(r.Context(), h.users, query)
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch users")
		return
	}
	respond.Page(w, PublicList(page.Items), page.Pagination)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := validate.Missing(body, "firstName", "lastName", "email", "role", "password"); len(missing) > 0 {
		respond.Fields(w, "Missing required fields", missing)
		return
	}

	var in createInput
	if err := httputil.Bind(body, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Email = textutil.Email(in.Email)
	if in.Status == "" {
		in.Status = StatusActive
	}

	if err := validate.Email(in.Email); err != nil {
		respond.Fields(w, "Invalid email format", []string{"email"})
		return
	}
	if err := validate.OneOf("role", in.Role, Roles...); err != nil {
		respond.Fields(w, err.Error(), []string{"role"})
		return
	}
	if err := validate.OneOf("status", in.Status, Statuses...); err != nil {
		respond.Fields(w, err.Error(), []string{"status"})
		return
	}
	if err := validate.Password("password", in.Password); err != nil {
		respond.Fields(w, err.Error(), []string{"password"})
		return
	}

	taken, err := h.emailTaken(r, in.Email, 0)
	if err != nil {
		respond.Internal(w, r, err, "Failed to save user")
		return
	}
	if taken {
		respond.Error(w, http.StatusConflict, "Email already exists")
		return
	}

	hashed, err := password.Hash(in.Password)
	if err != nil {
		respond.Internal(w, r, err, "Failed to save user")
		return
	}

	u, err := h.users.Create(r.Context(), &User{
		FirstName:  textutil.Name(in.FirstName),
		LastName:   textutil.Name(in.LastName),
		Email:      in.Email,
		Password:   hashed,
		Role:       in.Role,
		Status:     in.Status,
		BarangayID: in.BarangayID,
		Phone:      in.Phone,
	})
	if err != nil {
		respond.Internal(w, r, err, "Failed to save user")
		return
	}

	by, _ := utils.GetIdentityFromContext(r.Context())
	h.activity.Record(r.Context(), by, activity.Activity{
		Type:        activity.TypeUser,
		Action:      "create",
		Description: fmt.Sprintf("Created %s account for %s", u.Role, u.FullName()),
		EntityType:  "user",
		EntityID:    u.ID,
	})

	respond.Created(w, u.Public())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	u, err := h.users.Get(r.Context(), id)
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

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := h.users.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch user")
		return
	}

	patch := make(map[string]any)
	for _, field := range updatable {
		v, ok, err := httputil.String(body, field)
		if err != nil {
			respond.Fields(w, err.Error(), []string{field})
			return
		}
		if ok {
			patch[field] = v
		}
	}
	if len(patch) == 0 {
		respond.Error(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	if bad, msg := checkPatch(patch); bad != "" {
		respond.Fields(w, msg, []string{bad})
		return
	}

	if email, ok := patch["email"].(string); ok {
		taken, err := h.emailTaken(r, email, id)
		if err != nil {
			respond.Internal(w, r, err, "Failed to update user")
			return
		}
		if taken {
			respond.Error(w, http.StatusConflict, "Email already exists")
			return
		}
	}
	if plain, ok := patch["password"].(string); ok {
		hashed, err := password.Hash(plain)
		if err != nil {
			respond.Internal(w, r, err, "Failed to update user")
			return
		}
		patch["password"] = hashed
	}

	u, err := h.users.Update(r.Context(), id, patch)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to update user")
		return
	}

	// A changed role or a deactivated account must not keep acting on an old session.
	if u.Role != existing.Role || (existing.Active() && !u.Active()) || patch["password"] != nil {
		if err := h.sessions.DeleteUser(r.Context(), u.ID); err != nil {
			log.Warn().Err(err).Int("user_id", u.ID).Msg("failed to revoke sessions")
		}
	}

	by, _ := utils.GetIdentityFromContext(r.Context())
	h.activity.Record(r.Context(), by, activity.Activity{
		Type:        activity.TypeUser,
		Action:      "update",
		Description: fmt.Sprintf("Updated user %s", u.FullName()),
		EntityType:  "user",
		EntityID:    u.ID,
	})

	respond.OK(w, u.Public())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	by, _ := utils.GetIdentityFromContext(r.Context())
	if by.UserID == id {
		respond.Error(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	u, err := h.users.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to delete user")
		return
	}

	if err := h.sessions.DeleteUser(r.Context(), u.ID); err != nil {
		log.Warn().Err(err).Int("user_id", u.ID).Msg("failed to revoke sessions")
	}

	h.activity.Record(r.Context(), by, activity.Activity{
		Type:        activity.TypeUser,
		Action:      "delete",
		Description: fmt.Sprintf("Deleted user %s", u.FullName()),
		EntityType:  "user",
		EntityID:    u.ID,
	})

	respond.WriteJSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Data:    u.Public(),
		Message: "User deleted successfully",
	})
}

// checkPatch validates the fields present in patch and normalises them in
// place. It returns the first offending field and a message.
func checkPatch(patch map[string]any) (string, string) {
	for _, f := range []string{"firstName", "lastName"} {
		if v, ok := patch[f].(string); ok {
			v = textutil.Name(v)
			if v == "" {
				return f, f + " cannot be empty"
			}
			patch[f] = v
		}
	}
	if v, ok := patch["email"].(string); ok {
		v = textutil.Email(v)
		if err := validate.Email(v); err != nil {
			return "email", "Invalid email format"
		}
		patch["email"] = v
	}
	if v, ok := patch["role"].(string); ok {
		if err := validate.OneOf("role", v, Roles...); err != nil {
			return "role", err.Error()
		}
	}
	if v, ok := patch["status"].(string); ok {
		if err := validate.OneOf("status", v, Statuses...); err != nil {
			return "status", err.Error()
		}
	}
	if v, ok := patch["password"].(string); ok {
		if err := validate.Password("password", v); err != nil {
			return "password", err.Error()
		}
	}
	return "", ""
}

// emailTaken reports whether another user than self already holds email.
func (h *Handler) emailTaken(r *http.Request, email string, self int) (bool, error) {
	u, err := h.users.FindBy(r.Context(), "email", email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.ID != self, nil
}
