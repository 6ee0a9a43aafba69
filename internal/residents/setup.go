package residents

import (
	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
)

type Handler struct {
	residents store.Store[*Resident]
	activity  *activity.Recorder
}

func NewHandler(residents store.Store[*Resident], rec *activity.Recorder) *Handler {
	return &Handler{residents: residents, activity: rec}
}
