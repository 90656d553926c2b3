package industry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/skillforge/backend/internal/models"
)

func authedRequest(method, target, body string, userID int64, role models.Role) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(r.Context(), "user_id", userID)
	ctx = context.WithValue(ctx, "user_role", role)
	return r.WithContext(ctx)
}

func TestCreatePostingRejectsNonIndustry(t *testing.T) {
	// The role gate fires before the request body or the store is touched.
	h := NewHandler(nil)

	for _, role := range []models.Role{models.RoleStudent, models.RoleTeacher} {
		w := httptest.NewRecorder()
		h.CreatePosting(w, authedRequest("POST", "/api/v1/postings",
			`{"type":"job","title":"Backend Intern","required_skills":["Recursion"]}`, 1, role))

		if w.Code != http.StatusForbidden {
			t.Errorf("role %q: status = %d, want 403", role, w.Code)
		}
	}
}

func TestGetCandidateMatchesRejectsNonIndustry(t *testing.T) {
	h := NewHandler(nil)

	r := authedRequest("GET", "/api/v1/postings/1/candidates", "", 1, models.RoleStudent)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	w := httptest.NewRecorder()
	h.GetCandidateMatches(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestCreatePostingRequiresAuth(t *testing.T) {
	h := NewHandler(nil)

	w := httptest.NewRecorder()
	h.CreatePosting(w, httptest.NewRequest("POST", "/api/v1/postings", strings.NewReader(`{}`)))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
