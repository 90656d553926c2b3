package courses

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/skillforge/backend/internal/models"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateCourse(teacherID int64, req models.CreateCourseRequest) (*models.Course, error) {
	skillsJSON, err := json.Marshal(req.Skills)
	if err != nil {
		return nil, fmt.Errorf("marshal skills: %w", err)
	}

	course := models.Course{
		TeacherID:   teacherID,
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Skills:      req.Skills,
	}
	err = s.db.QueryRow(
		`INSERT INTO courses (teacher_id, title, subject, description, skills)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		teacherID, req.Title, req.Subject, req.Description, string(skillsJSON),
	).Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	return &course, nil
}

func (s *Store) GetCourse(courseID int64) (*models.Course, error) {
	var c models.Course
	var skillsJSON []byte
	err := s.db.QueryRow(
		`SELECT c.id, c.teacher_id, u.name, c.title, c.subject, c.description, c.skills,
		        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id), c.created_at
		 FROM courses c
		 JOIN users u ON u.id = c.teacher_id
		 WHERE c.id = $1`,
		courseID,
	).Scan(&c.ID, &c.TeacherID, &c.TeacherName, &c.Title, &c.Subject,
		&c.Description, &skillsJSON, &c.Enrolled, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if err := decodeSkills(&c, skillsJSON); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCourses(subject string, limit, offset int) ([]models.Course, int, error) {
	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM courses WHERE ($1 = '' OR subject = $1)`, subject,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT c.id, c.teacher_id, u.name, c.title, c.subject, c.description, c.skills,
		        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id), c.created_at
		 FROM courses c
		 JOIN users u ON u.id = c.teacher_id
		 WHERE ($1 = '' OR c.subject = $1)
		 ORDER BY c.created_at DESC
		 LIMIT $2 OFFSET $3`,
		subject, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var c models.Course
		var skillsJSON []byte
		err := rows.Scan(&c.ID, &c.TeacherID, &c.TeacherName, &c.Title, &c.Subject,
			&c.Description, &skillsJSON, &c.Enrolled, &c.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan course: %w", err)
		}
		if err := decodeSkills(&c, skillsJSON); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

func decodeSkills(c *models.Course, skillsJSON []byte) error {
	if len(skillsJSON) > 0 {
		if err := json.Unmarshal(skillsJSON, &c.Skills); err != nil {
			return fmt.Errorf("decode skills: %w", err)
		}
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return nil
}

func (s *Store) Enroll(courseID, studentID int64) (*models.Enrollment, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}

	var e models.Enrollment
	err := s.db.QueryRow(
		`INSERT INTO enrollments (course_id, student_id)
		 VALUES ($1, $2)
		 RETURNING id, course_id, student_id, enrolled_at`,
		courseID, studentID,
	).Scan(&e.ID, &e.CourseID, &e.StudentID, &e.EnrolledAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("enroll: %w", err)
	}
	return &e, nil
}

func (s *Store) ListEnrollments(studentID int64) ([]models.Enrollment, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.course_id, e.student_id, e.enrolled_at,
		        c.id, c.teacher_id, u.name, c.title, c.subject, c.description, c.skills, c.created_at
		 FROM enrollments e
		 JOIN courses c ON c.id = e.course_id
		 JOIN users u ON u.id = c.teacher_id
		 WHERE e.student_id = $1
		 ORDER BY e.enrolled_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		var c models.Course
		var skillsJSON []byte
		err := rows.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.EnrolledAt,
			&c.ID, &c.TeacherID, &c.TeacherName, &c.Title, &c.Subject,
			&c.Description, &skillsJSON, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		if err := decodeSkills(&c, skillsJSON); err != nil {
			return nil, err
		}
		e.Course = &c
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
