package users

import (
	"github.com/EmpoweredVote/barangay-admin/internal/store"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	Roles    = []string{RoleAdmin, RoleStaff}
	Statuses = []string{StatusActive, StatusInactive}
)

// User is an admin or staff account. Password holds a bcrypt hash.
type User struct {
	store.Meta
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	BarangayID  string `json:"barangayId,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Active() bool {
	return u.Status != StatusInactive
}

// Public is the shape returned to clients. The shadowing field keeps the hash
// out of every response.
type Public struct {
	*User
	Password string `json:"password,omitempty"`
}

func (u *User) Public() Public {
	return Public{User: u}
}

func PublicList(list []*User) []Public {
	out := make([]Public, len(list))
	for i, u := range list {
		out[i] = u.Public()
	}
	return out
}

type createInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	BarangayID string `json:"barangayId"`
	Phone      string `json:"phone"`
}

// Fields a PUT may change. Anything else in the body is ignored.
var updatable = []string{"firstName", "lastName", "email", "password", "role", "status", "barangayId", "phone"}
