package industry

import (
	"math"
	"sort"

	"github.com/skillforge/backend/internal/models"
)

// strugglePenalty is subtracted from the coverage score for each required
// skill the student has failed without later mastering.
const strugglePenalty = 0.1

// ScoreCandidate scores one student's skill record against a posting's
// required skills. The score is the fraction of required skills the student
// has mastered in completed dungeon runs, penalized for required skills
// they repeatedly failed and never mastered, clamped to [0, 1].
func ScoreCandidate(required []string, record models.SkillRecord) models.CandidateMatch {
	mastered := make(map[string]bool, len(record.MasteredSkills))
	for _, s := range record.MasteredSkills {
		mastered[s] = true
	}

	var matched, missing, struggling []string
	for _, skill := range required {
		if mastered[skill] {
			matched = append(matched, skill)
			continue
		}
		missing = append(missing, skill)
		if record.FailedSkills[skill] > 0 {
			struggling = append(struggling, skill)
		}
	}

	score := 0.0
	if len(required) > 0 {
		score = float64(len(matched)) / float64(len(required))
		score -= strugglePenalty * float64(len(struggling))
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	if matched == nil {
		matched = []string{}
	}
	if missing == nil {
		missing = []string{}
	}
	if struggling == nil {
		struggling = []string{}
	}

	return models.CandidateMatch{
		UserID:         record.UserID,
		DisplayName:    record.DisplayName,
		MatchScore:     math.Round(score*100) / 100,
		MatchedSkills:  matched,
		MissingSkills:  missing,
		StrugglingWith: struggling,
		RunsCompleted:  record.RunsCompleted,
	}
}

// RankCandidates scores every record and orders the result best-first.
// Ties break on completed runs, then user ID for a stable order.
func RankCandidates(required []string, records []models.SkillRecord) []models.CandidateMatch {
	matches := make([]models.CandidateMatch, 0, len(records))
	for _, rec := range records {
		matches = append(matches, ScoreCandidate(required, rec))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		if matches[i].RunsCompleted != matches[j].RunsCompleted {
			return matches[i].RunsCompleted > matches[j].RunsCompleted
		}
		return matches[i].UserID < matches[j].UserID
	})

	return matches
}
