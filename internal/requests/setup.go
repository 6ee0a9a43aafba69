package requests

import (
	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/residents"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
)

type Handler struct {
	requests  store.Store[*Request]
	residents store.Reader[*residents.Resident]
	activity  *activity.Recorder
}

// NewHandler wires the handler. residentId values are checked against
// residentStore.
func NewHandler(requests store.Store[*Request], residentStore store.Reader[*residents.Resident], rec *activity.Recorder) *Handler {
	return &Handler{requests: requests, residents: residentStore, activity: rec}
}
