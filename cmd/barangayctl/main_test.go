package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/EmpoweredVote/barangay-admin/internal/config"
	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/server"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func openStores(t *testing.T, dir string) *server.Stores {
	t.Helper()
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = bcrypt.DefaultCost })

	st, err := server.OpenStores(context.Background(), config.NewForTesting(dir))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestHashPasswords(t *testing.T) {
	dir := t.TempDir()
	legacy := `[
  {"id": 1, "firstName": "Old", "lastName": "Admin", "email": "old@b.com", "password": "plain123", "role": "admin", "status": "active", "createdAt": "2024-01-01T00:00:00.000Z"},
  {"id": 2, "firstName": "New", "lastName": "Staff", "email": "new@b.com", "password": "plain456", "role": "staff", "status": "active", "createdAt": "2024-01-02T00:00:00.000Z"}
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(legacy), 0o644))
	st := openStores(t, dir)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runHashPasswords(ctx, st.Users, &out))
	assert.Equal(t, "re-hashed 2 of 2 passwords\n", out.String())

	u, err := st.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.NoError(t, password.Check(u.Password, "plain123"))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", u.CreatedAt)

	out.Reset()
	require.NoError(t, runHashPasswords(ctx, st.Users, &out))
	assert.Equal(t, "re-hashed 0 of 2 passwords\n", out.String())
}

func TestCreateAdmin(t *testing.T) {
	st := openStores(t, t.TempDir())
	ctx := context.Background()
	in := adminInput{Email: "Kap@B.com", Password: "secret1", FirstName: "kap", LastName: "tan"}

	var out bytes.Buffer
	require.NoError(t, runCreateAdmin(ctx, st.Users, in, &out))
	assert.Contains(t, out.String(), "kap@b.com")

	u, err := st.Users.FindBy(ctx, "email", "kap@b.com")
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, u.Role)
	assert.Equal(t, "Kap", u.FirstName)

	assert.ErrorContains(t, runCreateAdmin(ctx, st.Users, in, &out), "already exists")
	assert.Error(t, runCreateAdmin(ctx, st.Users, adminInput{Email: "x@b.com", Password: "123"}, &out))
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	st := openStores(t, dir)
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("users:\n  - email: a@b.com\n    password: secret1\n    role: staff\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, runSeed(context.Background(), st, seed, &out))
	assert.Equal(t, "users: 1 created, 0 skipped\nresidents: 0 created, 0 skipped\n", out.String())
}

func TestWriteCollectionIsReadableByJSONStore(t *testing.T) {
	dir := t.TempDir()
	recs := []map[string]json.RawMessage{
		{"id": json.RawMessage("3"), "email": json.RawMessage(`"a@b.com"`), "createdAt": json.RawMessage(`"2024-01-01T00:00:00.000Z"`)},
		{"id": json.RawMessage("8"), "email": json.RawMessage(`"c@d.com"`), "createdAt": json.RawMessage(`"2024-01-02T00:00:00.000Z"`)},
	}
	require.NoError(t, writeCollection(dir, "users", recs, 9))

	s, err := store.NewJSONFile[*users.User](dir, "users")
	require.NoError(t, err)
	ctx := context.Background()

	u, err := s.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "c@d.com", u.Email)

	created, err := s.Create(ctx, &users.User{Email: "e@f.com"})
	require.NoError(t, err)
	assert.Equal(t, 10, created.ID, "ids continue past the exported high-water mark")
}

func TestExportRequiresPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping export test (requires DATABASE_URL)")
	}
	var out bytes.Buffer
	require.NoError(t, runExport(context.Background(), dsn, t.TempDir(), &out))
	assert.Contains(t, out.String(), "users:")
}
