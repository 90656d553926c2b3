package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

type GeneratedBatch struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GeneratedQuestion struct {
	Skill         string   `json:"skill"`
	QuestionText  string   `json:"question_text"`
	CorrectAnswer string   `json:"correct_answer"`
	WrongAnswers  []string `json:"wrong_answers"`
	Explanation   string   `json:"explanation"`
	Hint          string   `json:"hint"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseResponse(responseBody string) (*GeneratedBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch GeneratedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateBatch(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateBatch(batch *GeneratedBatch) error {
	var errs []string

	if len(batch.Questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in batch"}}
	}

	for i, q := range batch.Questions {
		qNum := i + 1

		if strings.TrimSpace(q.Skill) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty skill", qNum))
		}
		if q.QuestionText == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question_text", qNum))
		}
		if q.CorrectAnswer == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty correct_answer", qNum))
		}
		if len(q.WrongAnswers) < 2 || len(q.WrongAnswers) > 4 {
			errs = append(errs, fmt.Sprintf("question %d: expected 2-4 wrong answers, got %d", qNum, len(q.WrongAnswers)))
		}
		for j, w := range q.WrongAnswers {
			if w == "" {
				errs = append(errs, fmt.Sprintf("question %d: wrong answer %d is empty", qNum, j+1))
			}
			if w == q.CorrectAnswer {
				errs = append(errs, fmt.Sprintf("question %d: wrong answer %d duplicates the correct answer", qNum, j+1))
			}
		}
		if q.Explanation == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty explanation", qNum))
		}
		if q.Hint == "" {
			log.Printf("WARNING: question %d has no hint", qNum)
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}
