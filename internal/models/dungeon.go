package models

import "time"

type RunStatus string

const (
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
)

const (
	// StartingHP is the knowledge HP every run begins with.
	StartingHP = 100
	// WrongAnswerPenalty is subtracted from HP on each incorrect answer.
	WrongAnswerPenalty = 20
	// CorrectAnswerScore is awarded for a correct answer without a hint.
	CorrectAnswerScore = 20
	// HintedAnswerScore is awarded for a correct answer when a hint was used.
	HintedAnswerScore = 10
)

// DungeonRun is a player's progress through a sequence of quiz rooms.
type DungeonRun struct {
	ID             string         `json:"id"`
	UserID         int64          `json:"user_id"`
	Subject        string         `json:"subject"`
	Difficulty     Difficulty     `json:"difficulty"`
	TotalRooms     int            `json:"total_rooms"`
	RoomsCleared   int            `json:"rooms_cleared"`
	CurrentHP      int            `json:"current_hp"`
	Score          int            `json:"score"`
	HintsUsed      int            `json:"hints_used"`
	FailedSkills   map[string]int `json:"failed_skills"`
	MasteredSkills []string       `json:"mastered_skills"`
	Status         RunStatus      `json:"status"`
	StudyReport    *StudyReport   `json:"study_report,omitempty"`
	Version        int            `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// HasMastered reports whether skill is already in the mastered set.
func (r *DungeonRun) HasMastered(skill string) bool {
	for _, s := range r.MasteredSkills {
		if s == skill {
			return true
		}
	}
	return false
}

// RoomAttempt is one answer submission for one room. Append-only.
type RoomAttempt struct {
	ID               int64      `json:"id"`
	RunID            string     `json:"run_id"`
	RoomNumber       int        `json:"room_number"`
	Skill            string     `json:"skill"`
	Difficulty       Difficulty `json:"difficulty"`
	QuestionText     string     `json:"question_text"`
	CorrectAnswer    string     `json:"correct_answer"`
	WrongAnswers     []string   `json:"wrong_answers"`
	Explanation      string     `json:"explanation"`
	StudentAnswer    string     `json:"student_answer"`
	Correct          bool       `json:"correct"`
	HintUsed         bool       `json:"hint_used"`
	HintContent      *string    `json:"hint_content,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	CreatedAt        time.Time  `json:"created_at"`
}

// StudyReport summarizes why a run failed and what to review.
// Populated exactly once, only when HP reaches 0.
type StudyReport struct {
	Reason          string           `json:"reason"`
	FailedSkills    map[string]int   `json:"failed_skills"`
	Recommendations []Recommendation `json:"recommendations"`
}

type Recommendation struct {
	Skill   string `json:"skill"`
	Message string `json:"message"`
}

// ── Request Types ─────────────────────────────────────────

type StartRunRequest struct {
	Subject    string     `json:"subject"`
	Difficulty Difficulty `json:"difficulty"`
	RoomCount  int        `json:"room_count"`
}

type SubmitRoomAnswerRequest struct {
	RunID            string     `json:"run_id"`
	RoomNumber       int        `json:"room_number"`
	Skill            string     `json:"skill"`
	Difficulty       Difficulty `json:"difficulty"`
	QuestionText     string     `json:"question_text"`
	CorrectAnswer    string     `json:"correct_answer"`
	WrongAnswers     []string   `json:"wrong_answers"`
	Explanation      string     `json:"explanation"`
	StudentAnswer    string     `json:"student_answer"`
	HintUsed         bool       `json:"hint_used"`
	HintContent      *string    `json:"hint_content,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
}

// ── Response Types ────────────────────────────────────────

type StartRunResponse struct {
	Run       DungeonRun      `json:"run"`
	Questions []DrillQuestion `json:"questions"`
}

type SubmitRoomAnswerResponse struct {
	Attempt      RoomAttempt  `json:"attempt"`
	Correct      bool         `json:"correct"`
	CurrentHP    int          `json:"current_hp"`
	Score        int          `json:"score"`
	RoomsCleared int          `json:"rooms_cleared"`
	Completed    bool         `json:"completed"`
	Failed       bool         `json:"failed"`
	StudyReport  *StudyReport `json:"study_report,omitempty"`
}

type RunListResponse struct {
	Runs  []DungeonRun `json:"runs"`
	Total int          `json:"total"`
}

type AttemptListResponse struct {
	Attempts []RoomAttempt `json:"attempts"`
	Total    int           `json:"total"`
}
