package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/server"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/textutil"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
	"github.com/EmpoweredVote/barangay-admin/internal/validate"
	"github.com/spf13/cobra"
)

func init() {
	hashCmd := &cobra.Command{
		Use:   "hash-passwords",
		Short: "Replace any plaintext passwords in the user store with bcrypt hashes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(st *server.Stores) error {
				return runHashPasswords(cmd.Context(), st.Users, os.Stdout)
			})
		},
	}
	rootCmd.AddCommand(hashCmd)

	var in adminInput
	adminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(st *server.Stores) error {
				return runCreateAdmin(cmd.Context(), st.Users, in, os.Stdout)
			})
		},
	}
	adminCmd.Flags().StringVarP(&in.Email, "email", "e", "", "Email (required)")
	adminCmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password, at least 6 characters (required)")
	adminCmd.Flags().StringVar(&in.FirstName, "first-name", "Barangay", "First name")
	adminCmd.Flags().StringVar(&in.LastName, "last-name", "Admin", "Last name")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(adminCmd)
}

func runHashPasswords(ctx context.Context, us store.Store[*users.User], out io.Writer) error {
	all, err := us.All(ctx)
	if err != nil {
		return err
	}
	n := 0
	for _, u := range all {
		if password.IsHash(u.Password) {
			continue
		}
		hashed, err := password.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		if _, err := us.Update(ctx, u.ID, map[string]any{"password": hashed}); err != nil {
			return fmt.Errorf("update %s: %w", u.Email, err)
		}
		n++
	}
	fmt.Fprintf(out, "re-hashed %d of %d passwords\n", n, len(all))
	return nil
}

type adminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func runCreateAdmin(ctx context.Context, us store.Store[*users.User], in adminInput, out io.Writer) error {
	email := textutil.Email(in.Email)
	if err := validate.Email(email); err != nil {
		return err
	}
	if err := validate.Password("password", in.Password); err != nil {
		return err
	}

	_, err := us.FindBy(ctx, "email", email)
	if err == nil {
		return fmt.Errorf("a user with email %s already exists", email)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := password.Hash(in.Password)
	if err != nil {
		return err
	}
	u, err := us.Create(ctx, &users.User{
		FirstName: textutil.Name(in.FirstName),
		LastName:  textutil.Name(in.LastName),
		Email:     email,
		Password:  hashed,
		Role:      users.RoleAdmin,
		Status:    users.StatusActive,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created admin %s (id %d)\n", u.Email, u.ID)
	return nil
}
