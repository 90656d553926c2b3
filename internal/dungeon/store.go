package dungeon

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skillforge/backend/internal/models"
)

var (
	// ErrRunNotFound means the referenced run does not exist.
	ErrRunNotFound = errors.New("dungeon run not found")
	// ErrVersionConflict means a concurrent submission updated the run first.
	ErrVersionConflict = errors.New("dungeon run version conflict")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateRun(run *models.DungeonRun) error {
	failedJSON, err := json.Marshal(run.FailedSkills)
	if err != nil {
		return fmt.Errorf("marshal failed skills: %w", err)
	}
	masteredJSON, err := json.Marshal(run.MasteredSkills)
	if err != nil {
		return fmt.Errorf("marshal mastered skills: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO dungeon_runs
		    (id, user_id, subject, difficulty, total_rooms, rooms_cleared,
		     current_hp, score, hints_used, failed_skills, mastered_skills,
		     status, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.UserID, run.Subject, run.Difficulty, run.TotalRooms, run.RoomsCleared,
		run.CurrentHP, run.Score, run.HintsUsed, string(failedJSON), string(masteredJSON),
		run.Status, run.Version, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *Store) GetRun(runID string) (*models.DungeonRun, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, subject, difficulty, total_rooms, rooms_cleared,
		        current_hp, score, hints_used, failed_skills, mastered_skills,
		        status, study_report, version, created_at, completed_at
		 FROM dungeon_runs WHERE id = $1`,
		runID,
	)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*models.DungeonRun, error) {
	var run models.DungeonRun
	var failedJSON, masteredJSON []byte
	var reportJSON []byte

	err := row.Scan(&run.ID, &run.UserID, &run.Subject, &run.Difficulty,
		&run.TotalRooms, &run.RoomsCleared, &run.CurrentHP, &run.Score,
		&run.HintsUsed, &failedJSON, &masteredJSON, &run.Status,
		&reportJSON, &run.Version, &run.CreatedAt, &run.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if err := decodeRunJSON(&run, failedJSON, masteredJSON, reportJSON); err != nil {
		return nil, err
	}
	return &run, nil
}

func decodeRunJSON(run *models.DungeonRun, failedJSON, masteredJSON, reportJSON []byte) error {
	if len(failedJSON) > 0 {
		if err := json.Unmarshal(failedJSON, &run.FailedSkills); err != nil {
			return fmt.Errorf("decode failed skills: %w", err)
		}
	}
	if run.FailedSkills == nil {
		run.FailedSkills = make(map[string]int)
	}
	if len(masteredJSON) > 0 {
		if err := json.Unmarshal(masteredJSON, &run.MasteredSkills); err != nil {
			return fmt.Errorf("decode mastered skills: %w", err)
		}
	}
	if run.MasteredSkills == nil {
		run.MasteredSkills = []string{}
	}
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &run.StudyReport); err != nil {
			return fmt.Errorf("decode study report: %w", err)
		}
	}
	return nil
}

// ApplyAttempt persists one submission: the attempt row and the updated run
// state land in a single transaction. The run update carries an optimistic
// version check; if a concurrent submission won the race, nothing is written
// and ErrVersionConflict is returned so the caller can re-read and retry.
func (s *Store) ApplyAttempt(ctx context.Context, run *models.DungeonRun, attempt *models.RoomAttempt) error {
	failedJSON, err := json.Marshal(run.FailedSkills)
	if err != nil {
		return fmt.Errorf("marshal failed skills: %w", err)
	}
	masteredJSON, err := json.Marshal(run.MasteredSkills)
	if err != nil {
		return fmt.Errorf("marshal mastered skills: %w", err)
	}
	var reportJSON *string
	if run.StudyReport != nil {
		b, err := json.Marshal(run.StudyReport)
		if err != nil {
			return fmt.Errorf("marshal study report: %w", err)
		}
		s := string(b)
		reportJSON = &s
	}
	wrongJSON, err := json.Marshal(attempt.WrongAnswers)
	if err != nil {
		return fmt.Errorf("marshal wrong answers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE dungeon_runs SET
		    rooms_cleared = $2, current_hp = $3, score = $4, hints_used = $5,
		    failed_skills = $6, mastered_skills = $7, status = $8,
		    study_report = COALESCE(study_report, $9),
		    completed_at = COALESCE(completed_at, $10),
		    version = version + 1
		 WHERE id = $1 AND version = $11`,
		run.ID, run.RoomsCleared, run.CurrentHP, run.Score, run.HintsUsed,
		string(failedJSON), string(masteredJSON), run.Status, reportJSON, run.CompletedAt,
		run.Version,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	err = tx.QueryRow(
		`INSERT INTO room_attempts
		    (run_id, room_number, skill, difficulty, question_text, correct_answer,
		     wrong_answers, explanation, student_answer, correct, hint_used,
		     hint_content, time_spent_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at`,
		attempt.RunID, attempt.RoomNumber, attempt.Skill, attempt.Difficulty,
		attempt.QuestionText, attempt.CorrectAnswer, string(wrongJSON), attempt.Explanation,
		attempt.StudentAnswer, attempt.Correct, attempt.HintUsed,
		attempt.HintContent, attempt.TimeSpentSeconds,
	).Scan(&attempt.ID, &attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	run.Version++
	return nil
}

func (s *Store) ListRuns(userID int64, limit, offset int) ([]models.DungeonRun, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, subject, difficulty, total_rooms, rooms_cleared,
		        current_hp, score, hints_used, failed_skills, mastered_skills,
		        status, study_report, version, created_at, completed_at
		 FROM dungeon_runs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.DungeonRun
	for rows.Next() {
		var run models.DungeonRun
		var failedJSON, masteredJSON, reportJSON []byte
		err := rows.Scan(&run.ID, &run.UserID, &run.Subject, &run.Difficulty,
			&run.TotalRooms, &run.RoomsCleared, &run.CurrentHP, &run.Score,
			&run.HintsUsed, &failedJSON, &masteredJSON, &run.Status,
			&reportJSON, &run.Version, &run.CreatedAt, &run.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := decodeRunJSON(&run, failedJSON, masteredJSON, reportJSON); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) CountRuns(userID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM dungeon_runs WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return total, nil
}

func (s *Store) ListAttempts(runID string) ([]models.RoomAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, room_number, skill, difficulty, question_text,
		        correct_answer, wrong_answers, explanation, student_answer,
		        correct, hint_used, hint_content, time_spent_seconds, created_at
		 FROM room_attempts
		 WHERE run_id = $1
		 ORDER BY created_at ASC, id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.RoomAttempt
	for rows.Next() {
		var a models.RoomAttempt
		var wrongJSON []byte
		err := rows.Scan(&a.ID, &a.RunID, &a.RoomNumber, &a.Skill, &a.Difficulty,
			&a.QuestionText, &a.CorrectAnswer, &wrongJSON, &a.Explanation,
			&a.StudentAnswer, &a.Correct, &a.HintUsed, &a.HintContent,
			&a.TimeSpentSeconds, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if len(wrongJSON) > 0 {
			if err := json.Unmarshal(wrongJSON, &a.WrongAnswers); err != nil {
				return nil, fmt.Errorf("decode wrong answers: %w", err)
			}
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
