package industry

import (
	"testing"

	"github.com/skillforge/backend/internal/models"
)

func TestScoreCandidateFullMatch(t *testing.T) {
	required := []string{"Recursion", "Sorting"}
	record := models.SkillRecord{
		UserID:         1,
		MasteredSkills: []string{"Recursion", "Sorting", "Graphs"},
	}

	match := ScoreCandidate(required, record)

	if match.MatchScore != 1.0 {
		t.Errorf("MatchScore = %v, want 1.0", match.MatchScore)
	}
	if len(match.MatchedSkills) != 2 {
		t.Errorf("got %d matched skills, want 2", len(match.MatchedSkills))
	}
	if len(match.MissingSkills) != 0 {
		t.Errorf("got %d missing skills, want 0", len(match.MissingSkills))
	}
}

func TestScoreCandidatePartialMatch(t *testing.T) {
	required := []string{"Recursion", "Sorting", "Graphs", "Hash Tables"}
	record := models.SkillRecord{
		UserID:         2,
		MasteredSkills: []string{"Recursion", "Sorting"},
		FailedSkills:   map[string]int{"Graphs": 3},
	}

	match := ScoreCandidate(required, record)

	// 2/4 coverage minus one struggling penalty.
	if match.MatchScore != 0.4 {
		t.Errorf("MatchScore = %v, want 0.4", match.MatchScore)
	}
	if len(match.MissingSkills) != 2 {
		t.Errorf("got %d missing skills, want 2", len(match.MissingSkills))
	}
	if len(match.StrugglingWith) != 1 || match.StrugglingWith[0] != "Graphs" {
		t.Errorf("StrugglingWith = %v, want [Graphs]", match.StrugglingWith)
	}
}

func TestScoreCandidateMasteredAfterFailing(t *testing.T) {
	// A skill failed early but mastered later counts as matched, not struggling.
	required := []string{"Recursion"}
	record := models.SkillRecord{
		UserID:         3,
		MasteredSkills: []string{"Recursion"},
		FailedSkills:   map[string]int{"Recursion": 2},
	}

	match := ScoreCandidate(required, record)

	if match.MatchScore != 1.0 {
		t.Errorf("MatchScore = %v, want 1.0", match.MatchScore)
	}
	if len(match.StrugglingWith) != 0 {
		t.Errorf("StrugglingWith = %v, want empty", match.StrugglingWith)
	}
}

func TestScoreCandidateClampsAtZero(t *testing.T) {
	required := []string{"A", "B", "C"}
	record := models.SkillRecord{
		UserID:       4,
		FailedSkills: map[string]int{"A": 1, "B": 2, "C": 1},
	}

	match := ScoreCandidate(required, record)

	if match.MatchScore != 0 {
		t.Errorf("MatchScore = %v, want 0", match.MatchScore)
	}
}

func TestScoreCandidateNoRequiredSkills(t *testing.T) {
	match := ScoreCandidate(nil, models.SkillRecord{UserID: 5})
	if match.MatchScore != 0 {
		t.Errorf("MatchScore = %v, want 0", match.MatchScore)
	}
}

func TestRankCandidatesOrdering(t *testing.T) {
	required := []string{"Recursion", "Sorting"}
	records := []models.SkillRecord{
		{UserID: 1, MasteredSkills: []string{"Recursion"}, RunsCompleted: 1},
		{UserID: 2, MasteredSkills: []string{"Recursion", "Sorting"}, RunsCompleted: 3},
		{UserID: 3, MasteredSkills: []string{"Recursion"}, RunsCompleted: 5},
	}

	ranked := RankCandidates(required, records)

	if len(ranked) != 3 {
		t.Fatalf("got %d candidates, want 3", len(ranked))
	}
	if ranked[0].UserID != 2 {
		t.Errorf("best candidate = user %d, want 2", ranked[0].UserID)
	}
	// Equal scores break on completed runs.
	if ranked[1].UserID != 3 || ranked[2].UserID != 1 {
		t.Errorf("tie-break order = %d, %d; want 3, 1", ranked[1].UserID, ranked[2].UserID)
	}
}
