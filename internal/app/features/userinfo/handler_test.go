package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewdeck/crewdeck/internal/app/features/userinfo"
	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestServeUserInfo_Unauthenticated(t *testing.T) {
	handler := userinfo.NewHandler()

	req := httptest.NewRequest("GET", "/api/userinfo", nil)
	rec := httptest.NewRecorder()

	handler.ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", contentType, "application/json")
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}

	if isAuth, ok := response["isAuthenticated"].(bool); !ok || isAuth {
		t.Errorf("isAuthenticated: got %v, want false", response["isAuthenticated"])
	}
	if name, ok := response["name"].(string); !ok || name != "" {
		t.Errorf("name: got %q, want empty string", response["name"])
	}
}

func TestServeUserInfo_Authenticated(t *testing.T) {
	handler := userinfo.NewHandler()

	userID := primitive.NewObjectID()
	sessionUser := &auth.SessionUser{
		ID:    userID.Hex(),
		Name:  "Test User",
		Email: "test@example.com",
	}

	req := httptest.NewRequest("GET", "/api/userinfo", nil)
	req = auth.WithTestUser(req, sessionUser)
	rec := httptest.NewRecorder()

	handler.ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}

	if isAuth, ok := response["isAuthenticated"].(bool); !ok || !isAuth {
		t.Errorf("isAuthenticated: got %v, want true", response["isAuthenticated"])
	}
	if name, ok := response["name"].(string); !ok || name != "Test User" {
		t.Errorf("name: got %q, want %q", response["name"], "Test User")
	}
	if email, ok := response["email"].(string); !ok || email != "test@example.com" {
		t.Errorf("email: got %q, want %q", response["email"], "test@example.com")
	}
	if id, ok := response["id"].(string); !ok || id != userID.Hex() {
		t.Errorf("id: got %q, want %q", response["id"], userID.Hex())
	}
}
