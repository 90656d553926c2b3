package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillforge/backend/internal/models"
)

func TestMiddlewareSetsUserIDAndRole(t *testing.T) {
	token, err := generateToken(7, models.RoleTeacher)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	var gotID int64
	var gotRole models.Role
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = r.Context().Value("user_id").(int64)
		gotRole, _ = r.Context().Value("user_role").(models.Role)
	})

	r := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !called {
		t.Fatal("next handler was not called for a valid token")
	}
	if gotID != 7 {
		t.Errorf("user_id = %d, want 7", gotID)
	}
	if gotRole != models.RoleTeacher {
		t.Errorf("user_role = %q, want teacher", gotRole)
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run without a token")
	})

	w := httptest.NewRecorder()
	Middleware(next).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMiddlewareRejectsGarbageToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run for an invalid token")
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	Middleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
