package requests

import (
	"strings"
	"time"

	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	PriorityNormal = "normal"
)

var (
	Types      = []string{"clearance", "certificate", "permit", "indigency", "residency", "id"}
	Priorities = []string{"low", PriorityNormal, "high", "urgent"}
	Statuses   = []string{StatusPending, StatusApproved, StatusRejected}
)

// Request is a document or permit application and its processing state.
type Request struct {
	store.Meta
	ReferenceNo    string   `json:"referenceNo"`
	Type           string   `json:"type"`
	Purpose        string   `json:"purpose"`
	RequesterName  string   `json:"requesterName"`
	RequesterEmail string   `json:"requesterEmail,omitempty"`
	RequesterPhone string   `json:"requesterPhone,omitempty"`
	ResidentID     int      `json:"residentId,omitempty"`
	Priority       string   `json:"priority"`
	Status         string   `json:"status"`
	Documents      []string `json:"documents,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Remarks        string   `json:"remarks,omitempty"`
	ProcessedBy    string   `json:"processedBy,omitempty"`
	ProcessedAt    string   `json:"processedAt,omitempty"`
}

// NewReferenceNo returns REQ-YYYYMMDD-XXXXXX with six uppercase hex digits.
func NewReferenceNo(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "REQ-" + t.UTC().Format("20060102") + "-" + suffix
}

// String-valued fields a client may set. status is handled separately.
var stringFields = []string{
	"type", "purpose", "requesterName", "requesterEmail", "requesterPhone",
	"priority", "notes", "remarks",
}

var requiredFields = []string{"type", "requesterName", "purpose"}
