package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/httputil"
	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/textutil"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
)

// List handles GET /api/requests?status=&type=&priority=&search=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := store.Query[*Request]{
		Page:  httputil.QueryInt(r, "page", 1),
		Limit: httputil.QueryInt(r, "limit", store.DefaultLimit),
	}
	if v := q.Get("status"); v != "" {
		query = query.Where(func(req *Request) bool { return req.Status == v })
	}
	if v := q.Get("type"); v != "" {
		query = query.Where(func(req *Request) bool { return req.Type == v })
	}
	if v := q.Get("priority"); v != "" {
		query = query.Where(func(req *Request) bool { return req.Priority == v })
	}
	if v := q.Get("search"); v != "" {
		query = query.Where(func(req *Request) bool {
			return textutil.ContainsFold(v, req.ReferenceNo, req.RequesterName, req.RequesterEmail, req.Purpose)
		})
	}

	page, err := store.List(r.Context(), h.requests, query)
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch requests")
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
	fields, bad, msg := h.readFields(r, body)
	if bad != "" {
		respond.Fields(w, msg, []string{bad})
		return
	}

	var req Request
	if err := httputil.Bind(fields, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}
	req.Status = StatusPending
	req.ReferenceNo = NewReferenceNo(time.Now())

	created, err := h.requests.Create(r.Context(), &req)
	if err != nil {
		respond.Internal(w, r, err, "Failed to save request")
		return
	}

	h.record(r, "create",
		fmt.Sprintf("New %s request %s from %s", created.Type, created.ReferenceNo, created.RequesterName), created.ID)
	respond.Created(w, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	req, err := h.requests.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch request")
		return
	}
	respond.OK(w, req)
}

// Update applies field edits and status transitions. A request leaves pending
// once and its decision is final.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch, bad, msg := h.readFields(r, body)
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

	status, hasStatus, err := httputil.String(body, "status")
	if err != nil {
		respond.Fields(w, err.Error(), []string{"status"})
		return
	}
	if hasStatus {
		if err := validate.OneOf("status", status, Statuses...); err != nil {
			respond.Fields(w, err.Error(), []string{"status"})
			return
		}
	}
	if len(patch) == 0 && !hasStatus {
		respond.Error(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	existing, err := h.requests.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch request")
		return
	}

	by, _ := utils.GetIdentityFromContext(r.Context())
	transition := hasStatus && status != existing.Status
	if transition {
		if existing.Status != StatusPending {
			respond.Error(w, http.StatusConflict,
				fmt.Sprintf("Request has already been %s", existing.Status))
			return
		}
		patch["status"] = status
		patch["processedBy"] = by.Name
		patch["processedAt"] = store.Timestamp()
	}
	if len(patch) == 0 {
		respond.OK(w, existing)
		return
	}

	req, err := h.requests.Update(r.Context(), id, patch)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to update request")
		return
	}

	if transition {
		h.record(r, req.Status, fmt.Sprintf("Request %s %s", req.ReferenceNo, req.Status), req.ID)
	} else {
		h.record(r, "update", fmt.Sprintf("Updated request %s", req.ReferenceNo), req.ID)
	}
	respond.OK(w, req)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	req, err := h.requests.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		respond.Internal(w, r, err, "Failed to delete request")
		return
	}

	h.record(r, "delete", fmt.Sprintf("Deleted request %s", req.ReferenceNo), req.ID)
	respond.WriteJSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Data:    req,
		Message: "Request deleted successfully",
	})
}

func (h *Handler) record(r *http.Request, action, desc string, id int) {
	by, _ := utils.GetIdentityFromContext(r.Context())
	h.activity.Record(r.Context(), by, activity.Activity{
		Type:        activity.TypeRequest,
		Action:      action,
		Description: desc,
		EntityType:  "request",
		EntityID:    id,
	})
}

// readFields extracts the client-settable fields, validated and normalised.
func (h *Handler) readFields(r *http.Request, body map[string]any) (map[string]any, string, string) {
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

	if v, ok := out["type"].(string); ok && v != "" {
		if err := validate.OneOf("type", v, Types...); err != nil {
			return nil, "type", err.Error()
		}
	}
	if v, ok := out["priority"].(string); ok {
		if v == "" {
			out["priority"] = PriorityNormal
		} else if err := validate.OneOf("priority", v, Priorities...); err != nil {
			return nil, "priority", err.Error()
		}
	}
	if v, ok := out["requesterEmail"].(string); ok && v != "" {
		v = textutil.Email(v)
		if err := validate.Email(v); err != nil {
			return nil, "requesterEmail", "Invalid email format"
		}
		out["requesterEmail"] = v
	}
	if v, ok := out["requesterPhone"].(string); ok && v != "" {
		if err := validate.Phone(v); err != nil {
			return nil, "requesterPhone", "Invalid phone number"
		}
	}

	if raw, ok := body["residentId"]; ok && raw != nil {
		n, isNum := raw.(json.Number)
		id, err := n.Int64()
		if !isNum || err != nil || id < 1 {
			return nil, "residentId", "residentId must be a positive integer"
		}
		if h.residents != nil {
			if _, err := h.residents.Get(r.Context(), int(id)); err != nil {
				return nil, "residentId", "Resident not found"
			}
		}
		out["residentId"] = int(id)
	}

	if raw, ok := body["documents"]; ok && raw != nil {
		list, isList := raw.([]any)
		if !isList {
			return nil, "documents", "documents must be a list of strings"
		}
		docs := make([]string, 0, len(list))
		for _, d := range list {
			s, isStr := d.(string)
			if !isStr {
				return nil, "documents", "documents must be a list of strings"
			}
			docs = append(docs, s)
		}
		out["documents"] = docs
	}
	return out, "", ""
}
