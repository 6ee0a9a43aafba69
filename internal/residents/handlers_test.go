package residents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policy = middleware.Policy{
	"GET /api/residents":         middleware.AdminOrStaff,
	"POST /api/residents":        middleware.AdminOrStaff,
	"GET /api/residents/{id}":    middleware.AdminOrStaff,
	"PUT /api/residents/{id}":    middleware.AdminOrStaff,
	"DELETE /api/residents/{id}": middleware.AdminOnly,
}

type env struct {
	router    chi.Router
	residents store.Store[*Resident]
	staff     *http.Cookie
	admin     *http.Cookie
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	rs, err := store.NewJSONFile[*Resident](dir, "residents")
	require.NoError(t, err)
	as, err := store.NewJSONFile[*activity.Activity](dir, "activities")
	require.NoError(t, err)

	sessions := session.NewMemoryStore(time.Hour)
	e := &env{router: chi.NewRouter(), residents: rs}
	NewHandler(rs, activity.NewRecorder(as)).Routes(middleware.NewGate(e.router, sessions, policy))

	require.NoError(t, sessions.Set(context.Background(), "staff-token", session.Identity{UserID: 2, Role: middleware.RoleStaff}))
	require.NoError(t, sessions.Set(context.Background(), "admin-token", session.Identity{UserID: 1, Role: middleware.RoleAdmin}))
	e.staff = &http.Cookie{Name: middleware.SessionCookie, Value: "staff-token"}
	e.admin = &http.Cookie{Name: middleware.SessionCookie, Value: "admin-token"}
	return e
}

func (e *env) do(t *testing.T, method, path string, body any, c *http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.AddCookie(c)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func validResident() map[string]any {
	return map[string]any{
		"firstName":   "maria",
		"lastName":    "SANTOS",
		"dateOfBirth": "1990-04-12",
		"gender":      "female",
		"address":     "123 Rizal St.",
		"purok":       "Purok 3",
		"voterStatus": true,
	}
}

func TestCreateResident(t *testing.T) {
	e := newEnv(t)
	rr, out := e.do(t, http.MethodPost, "/api/residents", validResident(), e.staff)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	data := out["data"].(map[string]any)
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "Maria", data["firstName"])
	assert.Equal(t, "Santos", data["lastName"])
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, true, data["voterStatus"])
	assert.NotEmpty(t, data["createdAt"])

	got, err := e.residents.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", got.FullName())
}

func TestCreateResidentValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		change map[string]any
		fields []string
	}{
		{"missing", map[string]any{"gender": "", "address": nil}, []string{"gender", "address"}},
		{"bad gender", map[string]any{"gender": "x"}, []string{"gender"}},
		{"bad date", map[string]any{"dateOfBirth": "12/04/1990"}, []string{"dateOfBirth"}},
		{"future date", map[string]any{"dateOfBirth": time.Now().AddDate(1, 0, 0).Format("2006-01-02")}, []string{"dateOfBirth"}},
		{"bad email", map[string]any{"email": "maria@"}, []string{"email"}},
		{"bad civil status", map[string]any{"civilStatus": "complicated"}, []string{"civilStatus"}},
		{"voter not bool", map[string]any{"voterStatus": "yes"}, []string{"voterStatus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validResident()
			for k, v := range tt.change {
				body[k] = v
			}
			rr, out := e.do(t, http.MethodPost, "/api/residents", body, e.staff)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var fields []string
			for _, f := range out["fields"].([]any) {
				fields = append(fields, f.(string))
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestListResidentsFilters(t *testing.T) {
	e := newEnv(t)
	seed := []*Resident{
		{FirstName: "Ana", LastName: "Reyes", Gender: "female", Purok: "Purok 1", Status: "active"},
		{FirstName: "Ben", LastName: "Reyes", Gender: "male", Purok: "Purok 2", Status: "moved"},
		{FirstName: "Carla", LastName: "Diaz", Gender: "female", Purok: "purok 1", Status: "active"},
	}
	for _, r := range seed {
		_, err := e.residents.Create(context.Background(), r)
		require.NoError(t, err)
	}

	rr, out := e.do(t, http.MethodGet, "/api/residents?gender=female&purok=PUROK%201", nil, e.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	items := out["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Ana", items[0].(map[string]any)["firstName"])
	assert.Equal(t, "Carla", items[1].(map[string]any)["firstName"])

	_, out = e.do(t, http.MethodGet, "/api/residents?search=reyes&status=moved", nil, e.staff)
	items = out["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Ben", items[0].(map[string]any)["firstName"])
	assert.Equal(t, float64(1), out["pagination"].(map[string]any)["total"])
}

func TestUpdateResidentKeepsOtherFields(t *testing.T) {
	e := newEnv(t)
	rr, _ := e.do(t, http.MethodPost, "/api/residents", validResident(), e.staff)
	require.Equal(t, http.StatusCreated, rr.Code)
	before, err := e.residents.Get(context.Background(), 1)
	require.NoError(t, err)

	rr, out := e.do(t, http.MethodPut, "/api/residents/1", map[string]any{"occupation": "Farmer", "id": 99}, e.staff)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	data := out["data"].(map[string]any)
	assert.Equal(t, float64(1), data["id"])

	after, err := e.residents.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Farmer", after.Occupation)
	assert.Equal(t, before.Address, after.Address)
	assert.Equal(t, before.DateOfBirth, after.DateOfBirth)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	rr, _ = e.do(t, http.MethodPut, "/api/residents/1", map[string]any{"firstName": "  "}, e.staff)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = e.do(t, http.MethodPut, "/api/residents/42", map[string]any{"occupation": "x"}, e.staff)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteResidentAdminOnly(t *testing.T) {
	e := newEnv(t)
	rr, _ := e.do(t, http.MethodPost, "/api/residents", validResident(), e.staff)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, out := e.do(t, http.MethodDelete, "/api/residents/1", nil, e.staff)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Forbidden", out["error"])

	rr, _ = e.do(t, http.MethodDelete, "/api/residents/1", nil, e.admin)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = e.do(t, http.MethodGet, "/api/residents/1", nil, e.staff)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
