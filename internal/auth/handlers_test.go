package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
	"github.com/EmpoweredVote/barangay-admin/internal/password"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var policy = middleware.Policy{
	"POST /api/auth/login":   middleware.Public,
	"POST /api/auth/logout":  middleware.Public,
	"GET /api/auth/me":       middleware.Authenticated,
	"PUT /api/auth/password": middleware.Authenticated,
}

type env struct {
	router   chi.Router
	users    store.Store[*users.User]
	sessions *session.MemoryStore
}

func newEnv(t *testing.T, perMinute int) *env {
	t.Helper()
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = bcrypt.DefaultCost })

	dir := t.TempDir()
	us, err := store.NewJSONFile[*users.User](dir, "users")
	require.NoError(t, err)
	as, err := store.NewJSONFile[*activity.Activity](dir, "activities")
	require.NoError(t, err)

	e := &env{router: chi.NewRouter(), users: us, sessions: session.NewMemoryStore(time.Hour)}
	h := NewHandler(us, e.sessions, activity.NewRecorder(as), middleware.NewRateLimiter(perMinute),
		CookieOptions{TTL: 7 * 24 * time.Hour})
	h.Routes(middleware.NewGate(e.router, e.sessions, policy))
	return e
}

func (e *env) addUser(t *testing.T, email, plain, role, status string) *users.User {
	t.Helper()
	hashed, err := password.Hash(plain)
	require.NoError(t, err)
	u, err := e.users.Create(context.Background(), &users.User{
		FirstName: "Juan", LastName: "Cruz", Email: email, Password: hashed, Role: role, Status: status,
	})
	require.NoError(t, err)
	return u
}

func (e *env) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginUnknownEmail(t *testing.T) {
	e := newEnv(t, 100)
	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@b.com", "password": "whatever"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rr.Body.String())
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t, 100)
	e.addUser(t, "a@b.com", "secret1", users.RoleStaff, users.StatusActive)

	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rr.Body.String())
}

func TestLoginInactive(t *testing.T) {
	e := newEnv(t, 100)
	e.addUser(t, "a@b.com", "secret1", users.RoleStaff, users.StatusInactive)

	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestLoginMissingFields(t *testing.T) {
	e := newEnv(t, 100)
	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Email and password are required","fields":["password"]}`, rr.Body.String())
}

func TestLoginSuccessSetsCookieAndSession(t *testing.T) {
	e := newEnv(t, 100)
	u := e.addUser(t, "admin@b.com", "secret1", users.RoleAdmin, users.StatusActive)

	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ADMIN@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		Success bool `json:"success"`
		Data    struct {
			User     map[string]any `json:"user"`
			Redirect string         `json:"redirect"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "/admin/dashboard", res.Data.Redirect)
	assert.NotContains(t, res.Data.User, "password")
	assert.NotEmpty(t, res.Data.User["lastLoginAt"])

	c := sessionCookie(t, rr)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.Len(t, c.Value, 43)

	id, err := e.sessions.Get(context.Background(), c.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, users.RoleAdmin, id.Role)

	me := e.do(t, http.MethodGet, "/api/auth/me", nil, c)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"email":"admin@b.com"`)
}

func TestLogoutDeletesSession(t *testing.T) {
	e := newEnv(t, 100)
	e.addUser(t, "a@b.com", "secret1", users.RoleStaff, users.StatusActive)

	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rr.Code)
	c := sessionCookie(t, rr)

	out := e.do(t, http.MethodPost, "/api/auth/logout", nil, c)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Less(t, sessionCookie(t, out).MaxAge, 0)

	_, err := e.sessions.Get(context.Background(), c.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)

	me := e.do(t, http.MethodGet, "/api/auth/me", nil, c)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t, 100)
	e.addUser(t, "a@b.com", "secret1", users.RoleStaff, users.StatusActive)

	first := sessionCookie(t, e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret1"}))
	second := sessionCookie(t, e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret1"}))

	rr := e.do(t, http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "wrong1", "newPassword": "newsecret"}, first)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "secret1", "newPassword": strings.Repeat("x", 80)}, first)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"newPassword must be at most 72 bytes","fields":["newPassword"]}`, rr.Body.String())

	rr = e.do(t, http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "secret1", "newPassword": "newsecret"}, first)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The caller stays logged in, other sessions are gone.
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/auth/me", nil, first).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/auth/me", nil, second).Code)

	rr = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginRateLimited(t *testing.T) {
	e := newEnv(t, 2)
	body := map[string]string{"email": "x@b.com", "password": "whatever"}

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/auth/login", body).Code)

	rr := e.do(t, http.MethodPost, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestVerifyCredentials(t *testing.T) {
	e := newEnv(t, 100)
	e.addUser(t, "a@b.com", "secret1", users.RoleStaff, users.StatusActive)
	v := NewVerifier(e.users)

	u, err := v.VerifyCredentials(context.Background(), " A@B.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = v.VerifyCredentials(context.Background(), "a@b.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
