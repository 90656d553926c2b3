package questions

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/skillforge/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveQuestions(subject string, difficulty models.Difficulty, qs []models.Question) ([]models.Question, error) {
	saved := make([]models.Question, 0, len(qs))
	for _, q := range qs {
		wrongJSON, err := json.Marshal(q.WrongAnswers)
		if err != nil {
			return nil, fmt.Errorf("marshal wrong answers: %w", err)
		}

		q.Subject = subject
		q.Difficulty = difficulty
		err = s.db.QueryRow(
			`INSERT INTO questions
			    (subject, skill, difficulty, question_text, correct_answer,
			     wrong_answers, explanation, hint)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			q.Subject, q.Skill, q.Difficulty, q.QuestionText, q.CorrectAnswer,
			string(wrongJSON), q.Explanation, q.Hint,
		).Scan(&q.ID, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		saved = append(saved, q)
	}
	return saved, nil
}

// GetServingQuestions returns up to count questions for a subject and
// difficulty, least-served first so fresh questions rotate in.
func (s *Store) GetServingQuestions(subject string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, subject, skill, difficulty, question_text, correct_answer,
		        wrong_answers, explanation, hint, times_served, times_correct, created_at
		 FROM questions
		 WHERE subject = $1 AND difficulty = $2
		 ORDER BY times_served ASC, RANDOM()
		 LIMIT $3`,
		subject, difficulty, count,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func (s *Store) ListQuestions(subject string, limit, offset int) ([]models.Question, int, error) {
	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM questions WHERE ($1 = '' OR subject = $1)`, subject,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, subject, skill, difficulty, question_text, correct_answer,
		        wrong_answers, explanation, hint, times_served, times_correct, created_at
		 FROM questions
		 WHERE ($1 = '' OR subject = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		subject, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	qs, err := scanQuestions(rows)
	return qs, total, err
}

func scanQuestions(rows *sql.Rows) ([]models.Question, error) {
	var qs []models.Question
	for rows.Next() {
		var q models.Question
		var wrongJSON []byte
		err := rows.Scan(&q.ID, &q.Subject, &q.Skill, &q.Difficulty,
			&q.QuestionText, &q.CorrectAnswer, &wrongJSON, &q.Explanation,
			&q.Hint, &q.TimesServed, &q.TimesCorrect, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(wrongJSON) > 0 {
			if err := json.Unmarshal(wrongJSON, &q.WrongAnswers); err != nil {
				return nil, fmt.Errorf("decode wrong answers: %w", err)
			}
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

func (s *Store) IncrementServed(questionID int64) error {
	_, err := s.db.Exec(
		`UPDATE questions SET times_served = times_served + 1 WHERE id = $1`,
		questionID,
	)
	return err
}

func (s *Store) CountQuestions(subject string, difficulty models.Difficulty) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM questions WHERE subject = $1 AND difficulty = $2`,
		subject, difficulty,
	).Scan(&count)
	return count, err
}
