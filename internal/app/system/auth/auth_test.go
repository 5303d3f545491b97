package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-0123456789ABCDEF", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", false, zap.NewNop()); err == nil {
		t.Fatal("empty session key should be rejected")
	}
}

func TestCurrentUser_NotSet(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Fatal("CurrentUser on a bare request should report not found")
	}
}

func TestWithTestUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Name: "Jane", Email: "jane@example.com"})

	u, ok := auth.CurrentUser(req)
	if !ok {
		t.Fatal("CurrentUser should find injected user")
	}
	if u.Name != "Jane" || u.Email != "jane@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestRequireSignedIn_Rejects(t *testing.T) {
	sm := newManager(t)
	called := false
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if called {
		t.Error("next handler should not run for anonymous request")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("401 body is not JSON: %v", err)
	}
	if body["error"] != "please log in" {
		t.Errorf("error message: got %q", body["error"])
	}
}

func TestRequireSignedIn_PassesThrough(t *testing.T) {
	sm := newManager(t)
	called := false
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Name: "Jane"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Error("next handler should run for signed-in request")
	}
}

func TestLoadSessionUser_AnonymousPassesThrough(t *testing.T) {
	sm := newManager(t)
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("anonymous request should have no user in context")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}
