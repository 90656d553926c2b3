package generator

import (
	"strings"
	"testing"
)

const validResponse = `{
  "questions": [
    {
      "skill": "Recursion",
      "question_text": "What must every recursive function have to terminate?",
      "correct_answer": "A base case",
      "wrong_answers": ["A loop counter", "A global variable", "A return type"],
      "explanation": "Without a base case the recursion never stops.",
      "hint": "What stops the calls?"
    }
  ]
}`

func TestParseResponseValid(t *testing.T) {
	batch, err := ParseResponse(validResponse)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(batch.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(batch.Questions))
	}
	q := batch.Questions[0]
	if q.Skill != "Recursion" {
		t.Errorf("Skill = %q", q.Skill)
	}
	if q.CorrectAnswer != "A base case" {
		t.Errorf("CorrectAnswer = %q", q.CorrectAnswer)
	}
	if len(q.WrongAnswers) != 3 {
		t.Errorf("got %d wrong answers, want 3", len(q.WrongAnswers))
	}
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	batch, err := ParseResponse(fenced)
	if err != nil {
		t.Fatalf("ParseResponse with fences: %v", err)
	}
	if len(batch.Questions) != 1 {
		t.Errorf("got %d questions, want 1", len(batch.Questions))
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	_, err := ParseResponse("not json at all")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseResponseEmptyBatch(t *testing.T) {
	_, err := ParseResponse(`{"questions":[]}`)
	if err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestValidateBatchRejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing skill",
			body:    `{"questions":[{"skill":"","question_text":"q","correct_answer":"a","wrong_answers":["b","c","d"],"explanation":"e","hint":"h"}]}`,
			wantErr: "empty skill",
		},
		{
			name:    "missing correct answer",
			body:    `{"questions":[{"skill":"s","question_text":"q","correct_answer":"","wrong_answers":["b","c","d"],"explanation":"e","hint":"h"}]}`,
			wantErr: "empty correct_answer",
		},
		{
			name:    "too few distractors",
			body:    `{"questions":[{"skill":"s","question_text":"q","correct_answer":"a","wrong_answers":["b"],"explanation":"e","hint":"h"}]}`,
			wantErr: "wrong answers",
		},
		{
			name:    "distractor equals correct answer",
			body:    `{"questions":[{"skill":"s","question_text":"q","correct_answer":"a","wrong_answers":["a","c","d"],"explanation":"e","hint":"h"}]}`,
			wantErr: "duplicates the correct answer",
		},
		{
			name:    "empty explanation",
			body:    `{"questions":[{"skill":"s","question_text":"q","correct_answer":"a","wrong_answers":["b","c","d"],"explanation":"","hint":"h"}]}`,
			wantErr: "empty explanation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.body)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMockClientOutputParses(t *testing.T) {
	batch, err := ParseResponse(buildMockJSON())
	if err != nil {
		t.Fatalf("mock JSON must parse: %v", err)
	}
	if len(batch.Questions) != 5 {
		t.Errorf("got %d mock questions, want 5", len(batch.Questions))
	}
}
