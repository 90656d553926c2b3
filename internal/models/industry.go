package models

import "time"

type PostingType string

const (
	PostingJob       PostingType = "job"
	PostingChallenge PostingType = "challenge"
)

var ValidPostingTypes = map[PostingType]bool{
	PostingJob:       true,
	PostingChallenge: true,
}

// Posting is an industry job or challenge published for students.
type Posting struct {
	ID             int64       `json:"id"`
	PosterID       int64       `json:"poster_id"`
	PosterName     string      `json:"poster_name,omitempty"`
	Type           PostingType `json:"type"`
	Title          string      `json:"title"`
	Company        string      `json:"company"`
	Description    string      `json:"description"`
	RequiredSkills []string    `json:"required_skills"`
	Open           bool        `json:"open"`
	CreatedAt      time.Time   `json:"created_at"`
}

// SkillRecord is a student's aggregated skill evidence across completed
// dungeon runs, used to score them against a posting.
type SkillRecord struct {
	UserID         int64          `json:"user_id"`
	DisplayName    string         `json:"display_name"`
	MasteredSkills []string       `json:"mastered_skills"`
	FailedSkills   map[string]int `json:"failed_skills"`
	RunsCompleted  int            `json:"runs_completed"`
	TotalScore     int            `json:"total_score"`
}

// ── Request Types ─────────────────────────────────────────

type CreatePostingRequest struct {
	Type           PostingType `json:"type"`
	Title          string      `json:"title"`
	Company        string      `json:"company"`
	Description    string      `json:"description"`
	RequiredSkills []string    `json:"required_skills"`
}

// ── Response Types ────────────────────────────────────────

type PostingListResponse struct {
	Postings []Posting `json:"postings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type CandidateMatch struct {
	UserID         int64    `json:"user_id"`
	DisplayName    string   `json:"display_name"`
	MatchScore     float64  `json:"match_score"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`
	StrugglingWith []string `json:"struggling_with"`
	RunsCompleted  int      `json:"runs_completed"`
}

type CandidateMatchResponse struct {
	PostingID  int64            `json:"posting_id"`
	Candidates []CandidateMatch `json:"candidates"`
}
