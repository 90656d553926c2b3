package generator

import (
	"math"
	"strings"
	"testing"
)

func wellFormedQuestion() GeneratedQuestion {
	return GeneratedQuestion{
		Skill:         "Recursion",
		QuestionText:  "What must every recursive function have to terminate?",
		CorrectAnswer: "A base case",
		WrongAnswers:  []string{"A loop counter", "A global flag", "A return type"},
		Explanation:   "Without a base case the recursion never stops.",
		Hint:          "What stops the calls?",
	}
}

func TestComputeStructuralScore_AllPass(t *testing.T) {
	s := ComputeStructuralScore(wellFormedQuestion())

	if !s.QuestionLengthOK {
		t.Error("expected QuestionLengthOK = true")
	}
	if !s.AnswerLengthsOK {
		t.Error("expected AnswerLengthsOK = true")
	}
	if !s.DistractorsDistinct {
		t.Error("expected DistractorsDistinct = true")
	}
	if !s.DistractorLengthsPlausible {
		t.Error("expected DistractorLengthsPlausible = true")
	}
	if !almostEqual(ComputeQualityScore(s), 1.0) {
		t.Errorf("expected score ~1.0, got %f", ComputeQualityScore(s))
	}
}

func TestComputeStructuralScore_ShortQuestion(t *testing.T) {
	q := wellFormedQuestion()
	q.QuestionText = "Why?"

	s := ComputeStructuralScore(q)
	if s.QuestionLengthOK {
		t.Error("expected QuestionLengthOK = false for a 4-char question")
	}
}

func TestComputeStructuralScore_OverlongAnswer(t *testing.T) {
	q := wellFormedQuestion()
	q.WrongAnswers[0] = strings.Repeat("x", maxAnswerLen+1)

	s := ComputeStructuralScore(q)
	if s.AnswerLengthsOK {
		t.Error("expected AnswerLengthsOK = false for an overlong distractor")
	}
}

func TestComputeStructuralScore_DuplicateDistractors(t *testing.T) {
	q := wellFormedQuestion()
	q.WrongAnswers = []string{"A loop counter", "A loop counter", "A return type"}

	s := ComputeStructuralScore(q)
	if s.DistractorsDistinct {
		t.Error("expected DistractorsDistinct = false for duplicate distractors")
	}
}

func TestComputeStructuralScore_LengthTelegraph(t *testing.T) {
	// One distractor more than 3x the correct answer's length gives the
	// answer away by shape alone.
	q := wellFormedQuestion()
	q.CorrectAnswer = "Yes"
	q.WrongAnswers = []string{"No", "Maybe", "Only when the input is already sorted in reverse"}

	s := ComputeStructuralScore(q)
	if s.DistractorLengthsPlausible {
		t.Error("expected DistractorLengthsPlausible = false")
	}
}

func TestClassifyQuality(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{1.0, "passed"},
		{0.75, "flagged"},
		{0.50, "flagged"},
		{0.25, "reject"},
		{0.0, "reject"},
	}

	for _, tt := range tests {
		if got := ClassifyQuality(tt.score); got != tt.expected {
			t.Errorf("ClassifyQuality(%v) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}

func TestFilterByQualityDropsRejects(t *testing.T) {
	good := wellFormedQuestion()

	bad := wellFormedQuestion()
	bad.QuestionText = "Why?"
	bad.WrongAnswers = []string{"x", "x", strings.Repeat("y", maxAnswerLen+1)}

	kept := FilterByQuality([]GeneratedQuestion{good, bad})

	if len(kept) != 1 {
		t.Fatalf("kept %d questions, want 1", len(kept))
	}
	if kept[0].QuestionText != good.QuestionText {
		t.Error("the well-formed question should survive filtering")
	}
}

func TestFilterByQualityKeepsFlagged(t *testing.T) {
	// One failed check flags the question but does not drop it.
	q := wellFormedQuestion()
	q.QuestionText = "Why?"

	kept := FilterByQuality([]GeneratedQuestion{q})
	if len(kept) != 1 {
		t.Errorf("kept %d questions, want 1 (flagged, not rejected)", len(kept))
	}
}

func TestMockQuestionsPassQuality(t *testing.T) {
	batch, err := ParseResponse(buildMockJSON())
	if err != nil {
		t.Fatalf("mock JSON must parse: %v", err)
	}

	kept := FilterByQuality(batch.Questions)
	if len(kept) != len(batch.Questions) {
		t.Errorf("quality filter dropped %d of %d mock questions", len(batch.Questions)-len(kept), len(batch.Questions))
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}
