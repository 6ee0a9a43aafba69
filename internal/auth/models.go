package auth

import (
	"errors"

	"github.com/EmpoweredVote/barangay-admin/internal/users"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is inactive")
)

// Landing pages handed back on login, per role.
var redirects = map[string]string{
	users.RoleAdmin: "/admin/dashboard",
	users.RoleStaff: "/staff/dashboard",
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type loginResult struct {
	User     users.Public `json:"user"`
	Redirect string       `json:"redirect"`
}
