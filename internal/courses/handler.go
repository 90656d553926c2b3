package courses

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skillforge/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func getUserRole(r *http.Request) models.Role {
	role, _ := r.Context().Value("user_role").(models.Role)
	return role
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	if getUserRole(r) != models.RoleTeacher {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Only teachers can create courses"})
		return
	}

	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Title == "" || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title and subject are required"})
		return
	}

	course, err := h.store.CreateCourse(userID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create course"})
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := intQueryParam(query.Get("page"), 1)
	pageSize := intQueryParam(query.Get("page_size"), 20)

	courses, total, err := h.store.ListCourses(query.Get("subject"), pageSize, (page-1)*pageSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list courses"})
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}

	writeJSON(w, http.StatusOK, models.CourseListResponse{
		Courses:  courses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid course ID"})
		return
	}

	course, err := h.store.GetCourse(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Course not found"})
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid course ID"})
		return
	}

	enrollment, err := h.store.Enroll(id, userID)
	if err != nil {
		switch err {
		case ErrCourseNotFound:
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Course not found"})
		case ErrAlreadyEnrolled:
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Already enrolled in this course"})
		default:
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to enroll"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	enrollments, err := h.store.ListEnrollments(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list enrollments"})
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}

	writeJSON(w, http.StatusOK, models.EnrollmentListResponse{
		Enrollments: enrollments,
		Total:       len(enrollments),
	})
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
