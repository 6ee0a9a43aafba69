package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EmpoweredVote/barangay-admin/internal/middleware"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/utils"
)

// mockSessions implements session.Store without any storage behind it.
type mockSessions struct {
	id  session.Identity
	err error
}

func (m mockSessions) Set(context.Context, string, session.Identity) error { return nil }
func (m mockSessions) Get(context.Context, string) (session.Identity, error) {
	return m.id, m.err
}
func (m mockSessions) Delete(context.Context, string) error { return nil }
func (m mockSessions) DeleteUser(context.Context, int) error { return nil }
func (m mockSessions) Expire(context.Context) (int, error) { return 0, nil }

// callWithCookie wraps a 200-OK handler in mw, optionally sets the session
// cookie, and returns the recorded response.
func callWithCookie(t *testing.T, mw func(http.Handler) http.Handler, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockSessions{}), "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Unauthorized"`) {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockSessions{err: session.ErrExpired}), "expired")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Session expired") {
		t.Errorf("expected body to contain %q, got: %q", "Session expired", rec.Body.String())
	}
}

func TestSessionMiddleware_UnknownToken(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockSessions{err: session.ErrNotFound}), "nope")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_StoreFailure(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockSessions{err: errors.New("db down")}), "tok")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestSessionMiddleware_ValidSession(t *testing.T) {
	want := session.Identity{UserID: 7, Role: middleware.RoleStaff}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := utils.GetIdentityFromContext(r.Context())
		if !ok || got.UserID != want.UserID {
			http.Error(w, "identity missing from context", http.StatusInternalServerError)
			return
		}
		if tok, _ := utils.GetTokenFromContext(r.Context()); tok != "valid" {
			http.Error(w, "token missing from context", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "valid"})
	rec := httptest.NewRecorder()
	middleware.SessionMiddleware(mockSessions{id: want})(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireRoles_MissingIdentity(t *testing.T) {
	rec := callWithCookie(t, middleware.RequireRoles(middleware.RoleAdmin), "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthorize_ExactMatch(t *testing.T) {
	admin := session.Identity{Role: middleware.RoleAdmin}
	staff := session.Identity{Role: middleware.RoleStaff}

	if err := middleware.Authorize(admin, middleware.RoleAdmin); err != nil {
		t.Errorf("admin rejected from admin route: %v", err)
	}
	if err := middleware.Authorize(admin, middleware.RoleStaff); !errors.Is(err, middleware.ErrForbidden) {
		t.Errorf("admin must not pass a staff-only check, got %v", err)
	}
	if err := middleware.Authorize(staff, middleware.RoleAdmin, middleware.RoleStaff); err != nil {
		t.Errorf("staff rejected from shared route: %v", err)
	}
	if err := middleware.Authorize(session.Identity{Role: "resident"}, middleware.RoleAdmin, middleware.RoleStaff); err == nil {
		t.Error("unknown role passed")
	}
}

func TestCORSMiddleware(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"http://localhost:5173"})
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 on preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allowed origin not echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin echoed: %q", got)
	}
}

func TestRecoverer(t *testing.T) {
	h := middleware.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}
