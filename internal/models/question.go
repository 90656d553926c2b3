package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// Question is a stored quiz question for one dungeon room.
type Question struct {
	ID            int64      `json:"id"`
	Subject       string     `json:"subject"`
	Skill         string     `json:"skill"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionText  string     `json:"question_text"`
	CorrectAnswer string     `json:"correct_answer"`
	WrongAnswers  []string   `json:"wrong_answers"`
	Explanation   string     `json:"explanation"`
	Hint          string     `json:"hint"`
	TimesServed   int        `json:"times_served"`
	TimesCorrect  int        `json:"times_correct"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DrillQuestion is the serving shape. Answers ride along because the dungeon
// client grades locally and echoes the full question back on submission for
// the attempt audit record.
type DrillQuestion struct {
	ID            int64      `json:"id"`
	Skill         string     `json:"skill"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionText  string     `json:"question_text"`
	CorrectAnswer string     `json:"correct_answer"`
	WrongAnswers  []string   `json:"wrong_answers"`
	Explanation   string     `json:"explanation"`
	Hint          string     `json:"hint"`
}

func (q *Question) ToDrillQuestion() DrillQuestion {
	return DrillQuestion{
		ID:            q.ID,
		Skill:         q.Skill,
		Difficulty:    q.Difficulty,
		QuestionText:  q.QuestionText,
		CorrectAnswer: q.CorrectAnswer,
		WrongAnswers:  q.WrongAnswers,
		Explanation:   q.Explanation,
		Hint:          q.Hint,
	}
}

// ── Request Types ─────────────────────────────────────────

type GenerateQuestionsRequest struct {
	Subject    string     `json:"subject"`
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
}

// ── Response Types ────────────────────────────────────────

type GenerateQuestionsResponse struct {
	Generated int        `json:"generated"`
	Questions []Question `json:"questions"`
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}
