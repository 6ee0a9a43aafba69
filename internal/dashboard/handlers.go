package dashboard

import (
	"context"
	"net/http"
	"strings"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/httputil"
	"github.com/EmpoweredVote/barangay-admin/internal/respond"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
)

var now = store.Timestamp

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collect(r.Context())
	if err != nil {
		respond.Internal(w, r, err, "Failed to load dashboard stats")
		return
	}
	respond.OK(w, stats)
}

// collect scans every collection. Counts are cheap at barangay scale.
func (h *Handler) collect(ctx context.Context) (Stats, error) {
	var s Stats
	today := now()[:len("2006-01-02")]

	us, err := h.src.Users.All(ctx)
	if err != nil {
		return s, err
	}
	s.Users = UserStats{Total: len(us), ByRole: map[string]int{}, ByStatus: map[string]int{}}
	for _, u := range us {
		s.Users.ByRole[u.Role]++
		s.Users.ByStatus[u.Status]++
	}

	rs, err := h.src.Residents.All(ctx)
	if err != nil {
		return s, err
	}
	s.Residents = ResidentStats{Total: len(rs), ByStatus: map[string]int{}, ByGender: map[string]int{}}
	for _, res := range rs {
		s.Residents.ByStatus[res.Status]++
		s.Residents.ByGender[res.Gender]++
		if res.VoterStatus {
			s.Residents.Voters++
		}
	}

	rq, err := h.src.Requests.All(ctx)
	if err != nil {
		return s, err
	}
	s.Requests = RequestStats{
		Total:      len(rq),
		ByStatus:   map[string]int{},
		ByType:     map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, req := range rq {
		s.Requests.ByStatus[req.Status]++
		s.Requests.ByType[req.Type]++
		s.Requests.ByPriority[req.Priority]++
		if strings.HasPrefix(req.CreatedAt, today) {
			s.Requests.Today++
		}
	}

	as, err := h.src.Activities.All(ctx)
	if err != nil {
		return s, err
	}
	s.Activities = len(as)
	return s, nil
}

// Activities handles GET /api/dashboard/activities?limit=&type=
func (h *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	_, limit := store.Normalize(1, httputil.QueryInt(r, "limit", store.DefaultLimit))
	list, err := h.activity.Recent(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		respond.Internal(w, r, err, "Failed to fetch activities")
		return
	}
	respond.OK(w, list)
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.DecodeBody(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := validate.Missing(body, "type", "action", "description"); len(missing) > 0 {
		respond.Fields(w, "Missing required fields", missing)
		return
	}
	var in activityInput
	if err := httputil.Bind(body, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	by, _ := utils.GetIdentityFromContext(r.Context())
	a, err := h.activity.Create(r.Context(), by, activity.Activity{
		Type:        in.Type,
		Action:      in.Action,
		Description: in.Description,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
	})
	if err != nil {
		respond.Internal(w, r, err, "Failed to save activity")
		return
	}
	respond.Created(w, a)
}
