package activity

import "github.com/EmpoweredVote/barangay-admin/internal/store"

// Activity is one entry in the dashboard feed.
type Activity struct {
	store.Meta
	Type        string `json:"type"`
	Action      string `json:"action"`
	Description string `json:"description"`
	UserID      int    `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	EntityType  string `json:"entityType,omitempty"`
	EntityID    int    `json:"entityId,omitempty"`
}

// Types used by the handlers that record activity.
const (
	TypeAuth     = "auth"
	TypeUser     = "user"
	TypeResident = "resident"
	TypeRequest  = "request"
	TypeSystem   = "system"
)
