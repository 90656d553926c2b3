package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "skillforge_user")
	password := getEnv("DB_PASSWORD", "skillforge_password")
	dbname := getEnv("DB_NAME", "skillforge")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'student',
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

	CREATE TABLE IF NOT EXISTS questions (
		id             BIGSERIAL PRIMARY KEY,
		subject        VARCHAR(100) NOT NULL,
		skill          VARCHAR(100) NOT NULL,
		difficulty     VARCHAR(20) NOT NULL,
		question_text  TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		wrong_answers  JSONB NOT NULL DEFAULT '[]',
		explanation    TEXT NOT NULL DEFAULT '',
		hint           TEXT NOT NULL DEFAULT '',
		times_served   INT NOT NULL DEFAULT 0,
		times_correct  INT NOT NULL DEFAULT 0,
		created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject, difficulty);
	CREATE INDEX IF NOT EXISTS idx_questions_serving ON questions(subject, difficulty, times_served);

	CREATE TABLE IF NOT EXISTS dungeon_runs (
		id              VARCHAR(36) PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject         VARCHAR(100) NOT NULL,
		difficulty      VARCHAR(20) NOT NULL,
		total_rooms     INT NOT NULL,
		rooms_cleared   INT NOT NULL DEFAULT 0,
		current_hp      INT NOT NULL,
		score           INT NOT NULL DEFAULT 0,
		hints_used      INT NOT NULL DEFAULT 0,
		failed_skills   JSONB NOT NULL DEFAULT '{}',
		mastered_skills JSONB NOT NULL DEFAULT '[]',
		status          VARCHAR(20) NOT NULL DEFAULT 'in_progress',
		study_report    JSONB,
		version         INT NOT NULL DEFAULT 1,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		completed_at    TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_user ON dungeon_runs(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON dungeon_runs(status);

	CREATE TABLE IF NOT EXISTS room_attempts (
		id                 BIGSERIAL PRIMARY KEY,
		run_id             VARCHAR(36) NOT NULL REFERENCES dungeon_runs(id) ON DELETE CASCADE,
		room_number        INT NOT NULL,
		skill              VARCHAR(100) NOT NULL,
		difficulty         VARCHAR(20) NOT NULL DEFAULT '',
		question_text      TEXT NOT NULL,
		correct_answer     TEXT NOT NULL,
		wrong_answers      JSONB NOT NULL DEFAULT '[]',
		explanation        TEXT NOT NULL DEFAULT '',
		student_answer     TEXT NOT NULL,
		correct            BOOLEAN NOT NULL,
		hint_used          BOOLEAN NOT NULL DEFAULT FALSE,
		hint_content       TEXT,
		time_spent_seconds INT NOT NULL DEFAULT 0,
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_run ON room_attempts(run_id, created_at);

	CREATE TABLE IF NOT EXISTS courses (
		id          BIGSERIAL PRIMARY KEY,
		teacher_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       VARCHAR(255) NOT NULL,
		subject     VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		skills      JSONB NOT NULL DEFAULT '[]',
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_courses_teacher ON courses(teacher_id);
	CREATE INDEX IF NOT EXISTS idx_courses_subject ON courses(subject);

	CREATE TABLE IF NOT EXISTS enrollments (
		id          BIGSERIAL PRIMARY KEY,
		course_id   BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		student_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		enrolled_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(course_id, student_id)
	);

	CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(student_id);

	CREATE TABLE IF NOT EXISTS postings (
		id              BIGSERIAL PRIMARY KEY,
		poster_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type            VARCHAR(20) NOT NULL,
		title           VARCHAR(255) NOT NULL,
		company         VARCHAR(255) NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		required_skills JSONB NOT NULL DEFAULT '[]',
		open            BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_postings_open ON postings(open, type, created_at DESC);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent for databases created before these columns existed.
	alterStatements := []string{
		`ALTER TABLE dungeon_runs ADD COLUMN IF NOT EXISTS version INT NOT NULL DEFAULT 1`,
		`ALTER TABLE dungeon_runs ADD COLUMN IF NOT EXISTS study_report JSONB`,
		`ALTER TABLE room_attempts ADD COLUMN IF NOT EXISTS time_spent_seconds INT NOT NULL DEFAULT 0`,
	}
	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
