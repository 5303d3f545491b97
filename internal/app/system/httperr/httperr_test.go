package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewdeck/crewdeck/internal/app/system/httperr"
	"go.uber.org/zap"
)

func call(t *testing.T, f func(l *httperr.Logger, w http.ResponseWriter, r *http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()
	l := httperr.NewLogger(zap.NewNop())
	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	f(l, rec, req)

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return rec, body.Error
}

func TestUnauthenticated(t *testing.T) {
	rec, msg := call(t, func(l *httperr.Logger, w http.ResponseWriter, r *http.Request) {
		l.Unauthenticated(w, r)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	if msg != "please log in" {
		t.Errorf("message: got %q", msg)
	}
}

func TestForbidden(t *testing.T) {
	rec, msg := call(t, func(l *httperr.Logger, w http.ResponseWriter, r *http.Request) {
		l.Forbidden(w, r, "Only the project creator can delete it")
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
	if msg != "Only the project creator can delete it" {
		t.Errorf("message: got %q", msg)
	}
}

func TestNotFound(t *testing.T) {
	rec, msg := call(t, func(l *httperr.Logger, w http.ResponseWriter, r *http.Request) {
		l.NotFound(w, r, "User not found")
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	if msg != "User not found" {
		t.Errorf("message: got %q", msg)
	}
}

func TestValidation(t *testing.T) {
	rec, msg := call(t, func(l *httperr.Logger, w http.ResponseWriter, r *http.Request) {
		l.Validation(w, r, "Title is a required field")
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if msg != "Title is a required field" {
		t.Errorf("message: got %q", msg)
	}
}

func TestConflict(t *testing.T) {
	rec, msg := call(t, func(l *httperr.Logger, w http.ResponseWriter, r *http.Request) {
		l.Conflict(w, r, "this user is already part of the project")
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
	if msg != "this user is already part of the project" {
		t.Errorf("message: got %q", msg)
	}
}

func TestServerError_HidesCause(t *testing.T) {
	rec, msg := call(t, func(l *httperr.Logger, w http.ResponseWriter, r *http.Request) {
		l.ServerError(w, r, "db exploded", errors.New("connection refused to 10.0.0.5"))
	})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	if msg != "internal server error" {
		t.Errorf("internal detail leaked: %q", msg)
	}
}
