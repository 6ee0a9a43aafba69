package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/textutil"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
)

// Verifier checks an email and password against the user store.
type Verifier struct {
	users store.Reader[*users.User]

	once  sync.Once
	dummy string
}

func NewVerifier(u store.Reader[*users.User]) *Verifier {
	return &Verifier{users: u}
}

// VerifyCredentials returns the matching user, ErrInvalidCredentials when the
// email is unknown or the password wrong, or ErrInactive for a disabled account
// whose password was right.
func (v *Verifier) VerifyCredentials(ctx context.Context, email, plain string) (*users.User, error) {
	u, err := v.users.FindBy(ctx, "email", textutil.Email(email))
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same bcrypt time as a real comparison.
		_ = password.Check(v.dummyHash(), plain)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := password.Check(u.Password, plain); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active() {
		return nil, ErrInactive
	}
	return u, nil
}

func (v *Verifier) dummyHash() string {
	v.once.Do(func() {
		v.dummy, _ = password.Hash("not-a-real-password")
	})
	return v.dummy
}
