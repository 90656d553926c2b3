package generator

import "log"

// Bounds for the structural checks. Dungeon answers are graded by exact
// string match, so answers and distractors must stay short and canonical.
const (
	minQuestionLen = 20
	maxQuestionLen = 600
	maxAnswerLen   = 120
	// A distractor dwarfing the correct answer (or vice versa) telegraphs
	// the answer by length alone.
	maxAnswerLenRatio = 3
)

// StructuralScore holds the individual structural compliance checks.
type StructuralScore struct {
	QuestionLengthOK           bool
	AnswerLengthsOK            bool
	DistractorsDistinct        bool
	DistractorLengthsPlausible bool
}

// ComputeStructuralScore evaluates structural compliance for a single question.
func ComputeStructuralScore(q GeneratedQuestion) StructuralScore {
	qLen := len(q.QuestionText)

	lengthsOK := len(q.CorrectAnswer) <= maxAnswerLen
	distinct := true
	plausible := true
	seen := make(map[string]bool, len(q.WrongAnswers))
	for _, w := range q.WrongAnswers {
		if len(w) > maxAnswerLen {
			lengthsOK = false
		}
		if seen[w] {
			distinct = false
		}
		seen[w] = true
		if len(w) > len(q.CorrectAnswer)*maxAnswerLenRatio ||
			len(q.CorrectAnswer) > len(w)*maxAnswerLenRatio {
			plausible = false
		}
	}

	return StructuralScore{
		QuestionLengthOK:           qLen >= minQuestionLen && qLen <= maxQuestionLen,
		AnswerLengthsOK:            lengthsOK,
		DistractorsDistinct:        distinct,
		DistractorLengthsPlausible: plausible,
	}
}

// ComputeQualityScore calculates a quality score (0.0-1.0) from the
// structural checks, each worth 0.25.
func ComputeQualityScore(s StructuralScore) float64 {
	score := 0.0
	if s.QuestionLengthOK {
		score += 0.25
	}
	if s.AnswerLengthsOK {
		score += 0.25
	}
	if s.DistractorsDistinct {
		score += 0.25
	}
	if s.DistractorLengthsPlausible {
		score += 0.25
	}
	return score
}

// ClassifyQuality returns a classification based on the quality score.
// Returns: "reject" (< 0.50), "flagged" (0.50-0.75), "passed" (> 0.75)
func ClassifyQuality(score float64) string {
	if score < 0.50 {
		return "reject"
	}
	if score <= 0.75 {
		return "flagged"
	}
	return "passed"
}

// FilterByQuality drops rejected questions from a generated batch and keeps
// flagged ones with a warning. Serving a flagged question beats serving
// nothing; a rejected one would break the room it lands in.
func FilterByQuality(questions []GeneratedQuestion) []GeneratedQuestion {
	kept := make([]GeneratedQuestion, 0, len(questions))
	for i, q := range questions {
		score := ComputeQualityScore(ComputeStructuralScore(q))
		switch ClassifyQuality(score) {
		case "reject":
			log.Printf("WARN: [generator] rejecting question %d (quality %.2f, skill %q)", i+1, score, q.Skill)
		case "flagged":
			log.Printf("[generator] flagged question %d (quality %.2f, skill %q)", i+1, score, q.Skill)
			kept = append(kept, q)
		default:
			kept = append(kept, q)
		}
	}
	return kept
}
