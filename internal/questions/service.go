package questions

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/skillforge/backend/internal/generator"
	"github.com/skillforge/backend/internal/models"
)

type Service struct {
	store          *Store
	generator      *generator.Generator
	autoGenEnabled bool
}

func NewService(store *Store, gen *generator.Generator) *Service {
	autoGenEnabled := os.Getenv("AUTO_GEN_ENABLED") != "false"

	log.Printf("Service: autoGen=%v", autoGenEnabled)

	return &Service{
		store:          store,
		generator:      gen,
		autoGenEnabled: autoGenEnabled,
	}
}

// ServeQuestions returns up to count questions for a subject and difficulty.
// If the stored pool is too small and auto-generation is enabled, the gap is
// filled by generating fresh questions first. Generation failure is surfaced
// to the caller only when the pool is empty; a partially filled pool is
// served as-is.
func (s *Service) ServeQuestions(ctx context.Context, subject string, difficulty models.Difficulty, count int) ([]models.DrillQuestion, error) {
	stored, err := s.store.GetServingQuestions(subject, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	if len(stored) < count && s.autoGenEnabled {
		needed := count - len(stored)
		fresh, genErr := s.generateAndSave(ctx, subject, difficulty, needed)
		if genErr != nil {
			if len(stored) == 0 {
				return nil, genErr
			}
			log.Printf("WARN: [questions] auto-generation failed, serving %d stored questions: %v", len(stored), genErr)
		} else {
			stored = append(stored, fresh...)
			if len(stored) > count {
				stored = stored[:count]
			}
		}
	}

	served := make([]models.DrillQuestion, 0, len(stored))
	for _, q := range stored {
		if err := s.store.IncrementServed(q.ID); err != nil {
			log.Printf("WARN: [questions] failed to increment served for question %d: %v", q.ID, err)
		}
		served = append(served, q.ToDrillQuestion())
	}
	return served, nil
}

func (s *Service) generateAndSave(ctx context.Context, subject string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	generated, llmResp, err := s.generator.GenerateQuestions(ctx, subject, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	if llmResp != nil {
		log.Printf("[questions] generated %d questions for %s/%s (%d prompt, %d output tokens)",
			len(generated), subject, difficulty, llmResp.PromptTokens, llmResp.OutputTokens)
	}

	qs := make([]models.Question, 0, len(generated))
	for _, g := range generated {
		qs = append(qs, models.Question{
			Skill:         g.Skill,
			QuestionText:  g.QuestionText,
			CorrectAnswer: g.CorrectAnswer,
			WrongAnswers:  g.WrongAnswers,
			Explanation:   g.Explanation,
			Hint:          g.Hint,
		})
	}

	saved, err := s.store.SaveQuestions(subject, difficulty, qs)
	if err != nil {
		return nil, fmt.Errorf("save questions: %w", err)
	}
	return saved, nil
}

// GenerateQuestions explicitly generates and stores a batch, for teachers
// pre-seeding a subject's question pool.
func (s *Service) GenerateQuestions(ctx context.Context, req models.GenerateQuestionsRequest) (*models.GenerateQuestionsResponse, error) {
	if req.Count <= 0 {
		req.Count = 5
	}

	saved, err := s.generateAndSave(ctx, req.Subject, req.Difficulty, req.Count)
	if err != nil {
		return nil, err
	}

	return &models.GenerateQuestionsResponse{
		Generated: len(saved),
		Questions: saved,
	}, nil
}

func (s *Service) ListQuestions(subject string, page, pageSize int) (*models.QuestionListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	qs, total, err := s.store.ListQuestions(subject, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []models.Question{}
	}

	return &models.QuestionListResponse{
		Questions: qs,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}
