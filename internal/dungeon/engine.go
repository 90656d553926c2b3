package dungeon

import (
	"fmt"
	"sort"
	"time"

	"github.com/skillforge/backend/internal/models"
)

// Submission is one graded answer for one room, already validated.
type Submission struct {
	RoomNumber    int
	Skill         string
	CorrectAnswer string
	StudentAnswer string
	HintUsed      bool
}

// Outcome describes the state transition ApplyAnswer produced.
type Outcome struct {
	Correct   bool
	Completed bool
	Failed    bool
}

// ApplyAnswer applies one answer submission to a run in place and returns
// the outcome. The run must still be in progress.
//
// Rules, in order:
//   - correctness is exact string equality, case-sensitive, no trimming
//   - wrong answer: HP drops by the fixed penalty, clamped at 0
//   - correct answer: +20 score, or +10 if a hint was used; rooms cleared +1
//   - wrong answer: the tested skill's failure counter increments
//   - correct answer: the tested skill joins the mastered set
//   - hint usage counts toward the run total regardless of correctness
//   - the run completes the first time rooms cleared reaches the total or
//     HP reaches 0; only the HP case produces a study report, and an
//     existing report is never replaced
func ApplyAnswer(run *models.DungeonRun, sub Submission, now time.Time) Outcome {
	correct := sub.StudentAnswer == sub.CorrectAnswer

	if correct {
		award := models.CorrectAnswerScore
		if sub.HintUsed {
			award = models.HintedAnswerScore
		}
		run.Score += award
		run.RoomsCleared++
		if !run.HasMastered(sub.Skill) {
			run.MasteredSkills = append(run.MasteredSkills, sub.Skill)
		}
	} else {
		run.CurrentHP -= models.WrongAnswerPenalty
		if run.CurrentHP < 0 {
			run.CurrentHP = 0
		}
		if run.FailedSkills == nil {
			run.FailedSkills = make(map[string]int)
		}
		run.FailedSkills[sub.Skill]++
	}

	if sub.HintUsed {
		run.HintsUsed++
	}

	completed := run.RoomsCleared >= run.TotalRooms
	failed := run.CurrentHP <= 0

	if completed || failed {
		run.Status = models.RunCompleted
		if run.CompletedAt == nil {
			t := now
			run.CompletedAt = &t
		}
		if failed && run.StudyReport == nil {
			run.StudyReport = buildStudyReport(run.FailedSkills)
		}
	}

	return Outcome{Correct: correct, Completed: completed, Failed: failed}
}

// buildStudyReport constructs the failure report from the run's failed-skill
// counters. Recommendations are sorted by skill name so the report is stable.
func buildStudyReport(failedSkills map[string]int) *models.StudyReport {
	skills := make([]string, 0, len(failedSkills))
	for skill := range failedSkills {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	recs := make([]models.Recommendation, 0, len(skills))
	for _, skill := range skills {
		recs = append(recs, models.Recommendation{
			Skill:   skill,
			Message: fmt.Sprintf("Review %s — you struggled with this %d time(s)", skill, failedSkills[skill]),
		})
	}

	copied := make(map[string]int, len(failedSkills))
	for skill, n := range failedSkills {
		copied[skill] = n
	}

	return &models.StudyReport{
		Reason:          "Knowledge HP depleted",
		FailedSkills:    copied,
		Recommendations: recs,
	}
}

// NewRun builds an in-progress run with starting values.
func NewRun(id string, userID int64, subject string, difficulty models.Difficulty, totalRooms int, now time.Time) *models.DungeonRun {
	return &models.DungeonRun{
		ID:             id,
		UserID:         userID,
		Subject:        subject,
		Difficulty:     difficulty,
		TotalRooms:     totalRooms,
		RoomsCleared:   0,
		CurrentHP:      models.StartingHP,
		Score:          0,
		HintsUsed:      0,
		FailedSkills:   make(map[string]int),
		MasteredSkills: []string{},
		Status:         models.RunInProgress,
		Version:        1,
		CreatedAt:      now,
	}
}
