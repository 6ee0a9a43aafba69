package dashboard

import (
	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/requests"
	"github.com/EmpoweredVote/barangay-admin/internal/residents"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
)

// Sources are the collections the dashboard reads.
type Sources struct {
	Users      store.Reader[*users.User]
	Residents  store.Reader[*residents.Resident]
	Requests   store.Reader[*requests.Request]
	Activities store.Reader[*activity.Activity]
}

type Handler struct {
	src      Sources
	activity *activity.Recorder
}

func NewHandler(src Sources, rec *activity.Recorder) *Handler {
	return &Handler{src: src, activity: rec}
}
