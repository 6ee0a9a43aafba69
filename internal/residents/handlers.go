package residents

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/httputil"
	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/textutil"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
)

// List handles GET /api/residents?status=&gender=&civilStatus=&purok=&search=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := store.Query[*Resident]{
		Page:  httputil.QueryInt(r, "page", 1),
		Limit: httputil.QueryInt(r, "limit", store.DefaultLimit),
	}
	if v := q.Get("status"); v != "" {
		query = query.Where(func(res *Resident) bool { return res.Status == v })
	}
	if v := q.Get("gender"); v != "" {
		query = query.Where(func(res *Resident) bool { return res.Gender == v })
	}
	if v := q.Get("civilStatus"); v != "" {
		query = query.Where(func(res *Resident) bool { return res.CivilStatus == v })
	}
	if v := q.Get("purok"); v != "" {
		query = query.Where(func(res *Resident) bool { return textutil.EqualFold(res.Purok, v) })
	}
	if v := q.Get("search"); v != "" {
		query = query.Where(func(res *Resident) bool {
			return textutil.ContainsFold(v, res.FullName(), res.Email, res.Phone)
		})
	}

	page, err := store.List(r.Context(), h.residents, query)
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch residents")
		return
	}
	respond.Page(w, page.Items, page.Pagination)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := validate.Missing(body, requiredFields...); len(missing) > 0 {
		respond.Fields(w, "Missing required fields", missing)
		return
	}
	fields, bad, msg := readFields(body)
	if bad != "" {
		respond.Fields(w, msg, []string{bad})
		return
	}
	if _, ok := fields["status"]; !ok {
		fields["status"] = defaultStatus
	}

	var res Resident
	if err := httputil.Bind(fields, &res); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.residents.Create(r.Context(), &res)
	if err != nil {
		respond.Internal(w, r, err, "Failed to save resident")
		return
	}

	h.record(r, "create", fmt.Sprintf("Registered resident %s", created.FullName()), created.ID)
	respond.Created(w, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid resident ID")
		return
	}
	res, err := h.residents.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Resident not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch resident")
		return
	}
	respond.OK(w, res)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid resident ID")
		return
	}
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch, bad, msg := readFields(body)
	if bad != "" {
		respond.Fields(w, msg, []string{bad})
		return
	}
	for _, f := range requiredFields {
		if v, ok := patch[f].(string); ok && v == "" {
			respond.Fields(w, f+" cannot be empty", []string{f})
			return
		}
	}
	if len(patch) == 0 {
		respond.Error(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	res, err := h.residents.Update(r.Context(), id, patch)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Resident not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to update resident")
		return
	}

	h.record(r, "update", fmt.Sprintf("Updated resident %s", res.FullName()), res.ID)
	respond.OK(w, res)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid resident ID")
		return
	}
	res, err := h.residents.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Resident not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to delete resident")
		return
	}

	h.record(r, "delete", fmt.Sprintf("Removed resident %s", res.FullName()), res.ID)
	respond.WriteJSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Data:    res,
		Message: "Resident deleted successfully",
	})
}

func (h *Handler) record(r *http.Request, action, desc string, id int) {
	by, _ := utils.GetIdentityFromContext(r.Context())
	h.activity.Record(r.Context(), by, activity.Activity{
		Type:        activity.TypeResident,
		Action:      action,
		Description: desc,
		EntityType:  "resident",
		EntityID:    id,
	})
}

// readFields pulls the known fields out of body, normalised and validated.
// On failure it returns the offending field and a message.
func readFields(body map[string]any) (map[string]any, string, string) {
	out := make(map[string]any)
	for _, f := range stringFields {
		v, ok, err := httputil.String(body, f)
		if err != nil {
			return nil, f, err.Error()
		}
		if ok {
			out[f] = strings.TrimSpace(v)
		}
	}
	if v, ok := body["voterStatus"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return nil, "voterStatus", "voterStatus must be a boolean"
		}
		out["voterStatus"] = b
	}

	for _, f := range []string{"firstName", "middleName", "lastName"} {
		if v, ok := out[f].(string); ok {
			out[f] = textutil.Name(v)
		}
	}
	if v, ok := out["email"].(string); ok && v != "" {
		v = textutil.Email(v)
		if err := validate.Email(v); err != nil {
			return nil, "email", "Invalid email format"
		}
		out["email"] = v
	}
	if v, ok := out["phone"].(string); ok && v != "" {
		if err := validate.Phone(v); err != nil {
			return nil, "phone", "Invalid phone number"
		}
	}
	if v, ok := out["dateOfBirth"].(string); ok && v != "" {
		if err := validate.Date(v); err != nil {
			return nil, "dateOfBirth", "dateOfBirth: " + err.Error()
		}
	}
	enums := []struct {
		field   string
		allowed []string
	}{
		{"gender", Genders},
		{"civilStatus", CivilStatuses},
		{"status", Statuses},
	}
	for _, e := range enums {
		v, ok := out[e.field].(string)
		if !ok || (v == "" && e.field == "civilStatus") {
			continue
		}
		if err := validate.OneOf(e.field, v, e.allowed...); err != nil {
			return nil, e.field, err.Error()
		}
	}
	return out, "", ""
}
