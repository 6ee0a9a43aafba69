package users

import (
	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
)

type Handler struct {
	users    store.Store[*User]
	sessions session.Store
	activity *activity.Recorder
}

func NewHandler(users store.Store[*User], sessions session.Store, rec *activity.Recorder) *Handler {
	return &Handler{users: users, sessions: sessions, activity: rec}
}
