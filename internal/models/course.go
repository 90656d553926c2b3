package models

import "time"

type Course struct {
	ID          int64     `json:"id"`
	TeacherID   int64     `json:"teacher_id"`
	TeacherName string    `json:"teacher_name,omitempty"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Enrolled    int       `json:"enrolled"`
	CreatedAt   time.Time `json:"created_at"`
}

type Enrollment struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"course_id"`
	StudentID  int64     `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`

	Course *Course `json:"course,omitempty"`
}

// ── Request Types ─────────────────────────────────────────

type CreateCourseRequest struct {
	Title       string   `json:"title"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// ── Response Types ────────────────────────────────────────

type CourseListResponse struct {
	Courses []Course `json:"courses"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PageSize int     `json:"page_size"`
}

type EnrollmentListResponse struct {
	Enrollments []Enrollment `json:"enrollments"`
	Total       int          `json:"total"`
}
