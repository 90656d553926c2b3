package dungeon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skillforge/backend/internal/models"
)

var (
	// ErrRunCompleted means the run has already terminated.
	ErrRunCompleted = errors.New("dungeon run already completed")
	// ErrNotRunOwner means the run belongs to a different user.
	ErrNotRunOwner = errors.New("dungeon run belongs to another user")
)

// submitRetries bounds the optimistic-concurrency retry loop. The per-run
// lock already serializes submissions within this process; retries only
// matter when another server instance races on the same run.
const submitRetries = 3

// RunStore is the persistence surface the service needs.
type RunStore interface {
	CreateRun(run *models.DungeonRun) error
	GetRun(runID string) (*models.DungeonRun, error)
	ApplyAttempt(ctx context.Context, run *models.DungeonRun, attempt *models.RoomAttempt) error
	ListRuns(userID int64, limit, offset int) ([]models.DungeonRun, error)
	CountRuns(userID int64) (int, error)
	ListAttempts(runID string) ([]models.RoomAttempt, error)
}

// QuestionSource supplies the ordered question list for a new run.
type QuestionSource interface {
	ServeQuestions(ctx context.Context, subject string, difficulty models.Difficulty, count int) ([]models.DrillQuestion, error)
}

type Service struct {
	store     RunStore
	questions QuestionSource

	mu       sync.Mutex
	runLocks map[string]*runLock
}

// runLock serializes submissions for one run. The refs count tracks
// in-flight submitters so the map entry can be removed once the last
// one releases; nothing lingers for abandoned runs.
type runLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(store RunStore, questions QuestionSource) *Service {
	return &Service{
		store:     store,
		questions: questions,
		runLocks:  make(map[string]*runLock),
	}
}

func (s *Service) acquireRunLock(runID string) *runLock {
	s.mu.Lock()
	l, ok := s.runLocks[runID]
	if !ok {
		l = &runLock{}
		s.runLocks[runID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *Service) releaseRunLock(runID string, l *runLock) {
	l.mu.Unlock()
	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.runLocks, runID)
	}
	s.mu.Unlock()
}

// StartRun creates a new in-progress run and serves its question list.
// The room order is fixed here; totalRooms equals the number of questions
// actually served.
func (s *Service) StartRun(ctx context.Context, userID int64, req models.StartRunRequest) (*models.StartRunResponse, error) {
	count := req.RoomCount
	if count <= 0 {
		count = 5
	}

	questions, err := s.questions.ServeQuestions(ctx, req.Subject, req.Difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("serve questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions available for %s/%s", req.Subject, req.Difficulty)
	}

	run := NewRun(uuid.NewString(), userID, req.Subject, req.Difficulty, len(questions), time.Now().UTC())
	if err := s.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	log.Printf("[dungeon] user %d started run %s (%d rooms, %s/%s)",
		userID, run.ID, run.TotalRooms, run.Subject, run.Difficulty)

	return &models.StartRunResponse{Run: *run, Questions: questions}, nil
}

// SubmitAnswer applies one answer to one room of one run.
//
// The run lookup must succeed before anything is written: a submission
// against a missing run is rejected outright with no side effects. The
// read-modify-write is serialized per run and guarded by the store's
// version check, so concurrent submissions cannot silently overwrite
// each other's HP, score, or rooms-cleared progress.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, req models.SubmitRoomAnswerRequest) (*models.SubmitRoomAnswerResponse, error) {
	lock := s.acquireRunLock(req.RunID)
	defer s.releaseRunLock(req.RunID, lock)

	var lastErr error
	for attempt := 0; attempt < submitRetries; attempt++ {
		run, err := s.store.GetRun(req.RunID)
		if err != nil {
			return nil, err
		}
		if run.UserID != userID {
			return nil, ErrNotRunOwner
		}
		if run.Status != models.RunInProgress {
			return nil, ErrRunCompleted
		}

		outcome := ApplyAnswer(run, Submission{
			RoomNumber:    req.RoomNumber,
			Skill:         req.Skill,
			CorrectAnswer: req.CorrectAnswer,
			StudentAnswer: req.StudentAnswer,
			HintUsed:      req.HintUsed,
		}, time.Now().UTC())

		record := models.RoomAttempt{
			RunID:            run.ID,
			RoomNumber:       req.RoomNumber,
			Skill:            req.Skill,
			Difficulty:       req.Difficulty,
			QuestionText:     req.QuestionText,
			CorrectAnswer:    req.CorrectAnswer,
			WrongAnswers:     req.WrongAnswers,
			Explanation:      req.Explanation,
			StudentAnswer:    req.StudentAnswer,
			Correct:          outcome.Correct,
			HintUsed:         req.HintUsed,
			HintContent:      req.HintContent,
			TimeSpentSeconds: req.TimeSpentSeconds,
		}

		err = s.store.ApplyAttempt(ctx, run, &record)
		if err == ErrVersionConflict {
			lastErr = err
			log.Printf("WARN: [dungeon] version conflict on run %s, retrying", run.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("apply attempt: %w", err)
		}

		if run.Status == models.RunCompleted {
			if outcome.Failed {
				log.Printf("[dungeon] run %s failed: HP depleted after %d rooms", run.ID, run.RoomsCleared)
			} else {
				log.Printf("[dungeon] run %s completed: %d/%d rooms, score %d", run.ID, run.RoomsCleared, run.TotalRooms, run.Score)
			}
		}

		return &models.SubmitRoomAnswerResponse{
			Attempt:      record,
			Correct:      outcome.Correct,
			CurrentHP:    run.CurrentHP,
			Score:        run.Score,
			RoomsCleared: run.RoomsCleared,
			Completed:    outcome.Completed,
			Failed:       outcome.Failed,
			StudyReport:  run.StudyReport,
		}, nil
	}

	return nil, fmt.Errorf("submit answer: %w", lastErr)
}

func (s *Service) GetRun(userID int64, runID string) (*models.DungeonRun, error) {
	run, err := s.store.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, ErrNotRunOwner
	}
	return run, nil
}

func (s *Service) ListRuns(userID int64, limit, offset int) (*models.RunListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.store.ListRuns(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []models.DungeonRun{}
	}
	total, err := s.store.CountRuns(userID)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	return &models.RunListResponse{Runs: runs, Total: total}, nil
}

func (s *Service) ListAttempts(userID int64, runID string) (*models.AttemptListResponse, error) {
	run, err := s.store.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, ErrNotRunOwner
	}

	attempts, err := s.store.ListAttempts(runID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []models.RoomAttempt{}
	}
	return &models.AttemptListResponse{Attempts: attempts, Total: len(attempts)}, nil
}
