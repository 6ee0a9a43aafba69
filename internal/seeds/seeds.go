// Package seeds loads initial accounts and residents from a YAML file.
package seeds

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/residents"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/textutil"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

type User struct {
	FirstName  string `yaml:"firstName"`
	LastName   string `yaml:"lastName"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Status     string `yaml:"status"`
	Phone      string `yaml:"phone"`
	BarangayID string `yaml:"barangayId"`
}

type Resident struct {
	FirstName   string `yaml:"firstName"`
	MiddleName  string `yaml:"middleName"`
	LastName    string `yaml:"lastName"`
	Suffix      string `yaml:"suffix"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Address     string `yaml:"address"`
	Purok       string `yaml:"purok"`
	DateOfBirth string `yaml:"dateOfBirth"`
	Gender      string `yaml:"gender"`
	CivilStatus string `yaml:"civilStatus"`
	Occupation  string `yaml:"occupation"`
	VoterStatus bool   `yaml:"voterStatus"`
	Status      string `yaml:"status"`
}

type File struct {
	Users     []User     `yaml:"users"`
	Residents []Resident `yaml:"residents"`
}

// Result counts what Apply created and skipped.
type Result struct {
	UsersCreated     int
	UsersSkipped     int
	ResidentsCreated int
	ResidentsSkipped int
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read seed file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %d: email and password are required", i+1)
		}
		if u.Role != users.RoleAdmin && u.Role != users.RoleStaff {
			return nil, fmt.Errorf("seed user %s: unknown role %q", u.Email, u.Role)
		}
		if err := validate.Password("password", u.Password); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return &f, nil
}

// Apply creates the users whose email is not taken yet and the residents not
// already registered under the same name and birth date. Running it twice is
// a no-op.
func Apply(ctx context.Context, f *File, us store.Store[*users.User], rs store.Store[*residents.Resident]) (Result, error) {
	var res Result

	for _, u := range f.Users {
		email := textutil.Email(u.Email)
		_, err := us.FindBy(ctx, "email", email)
		if err == nil {
			log.Debug().Str("email", email).Msg("seed user exists, skipping")
			res.UsersSkipped++
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return res, fmt.Errorf("look up seed user %s: %w", email, err)
		}

		hashed, err := password.Hash(u.Password)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", email, err)
		}
		status := u.Status
		if status == "" {
			status = users.StatusActive
		}
		if _, err := us.Create(ctx, &users.User{
			FirstName:  textutil.Name(u.FirstName),
			LastName:   textutil.Name(u.LastName),
			Email:      email,
			Password:   hashed,
			Role:       u.Role,
			Status:     status,
			Phone:      u.Phone,
			BarangayID: u.BarangayID,
		}); err != nil {
			return res, fmt.Errorf("create seed user %s: %w", email, err)
		}
		res.UsersCreated++
	}

	existing, err := rs.All(ctx)
	if err != nil {
		return res, fmt.Errorf("list residents: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[residentKey(r.FirstName, r.LastName, r.DateOfBirth)] = true
	}

	for _, r := range f.Residents {
		key := residentKey(r.FirstName, r.LastName, r.DateOfBirth)
		if known[key] {
			res.ResidentsSkipped++
			continue
		}
		status := r.Status
		if status == "" {
			status = "active"
		}
		if _, err := rs.Create(ctx, &residents.Resident{
			FirstName:   textutil.Name(r.FirstName),
			MiddleName:  textutil.Name(r.MiddleName),
			LastName:    textutil.Name(r.LastName),
			Suffix:      r.Suffix,
			Email:       textutil.Email(r.Email),
			Phone:       r.Phone,
			Address:     r.Address,
			Purok:       r.Purok,
			DateOfBirth: r.DateOfBirth,
			Gender:      r.Gender,
			CivilStatus: r.CivilStatus,
			Occupation:  r.Occupation,
			VoterStatus: r.VoterStatus,
			Status:      status,
		}); err != nil {
			return res, fmt.Errorf("create seed resident %s %s: %w", r.FirstName, r.LastName, err)
		}
		known[key] = true
		res.ResidentsCreated++
	}

	log.Info().
		Int("users_created", res.UsersCreated).
		Int("users_skipped", res.UsersSkipped).
		Int("residents_created", res.ResidentsCreated).
		Int("residents_skipped", res.ResidentsSkipped).
		Msg("seeding complete")
	return res, nil
}

func residentKey(first, last, dob string) string {
	return textutil.Name(first) + "|" + textutil.Name(last) + "|" + dob
}
