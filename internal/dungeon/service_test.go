package dungeon

import (
	"context"
	"sync"
	"testing"

	"github.com/skillforge/backend/internal/models"
)

// fakeStore is an in-memory RunStore for service tests.
type fakeStore struct {
	runs     map[string]*models.DungeonRun
	order    []string
	attempts []models.RoomAttempt

	// conflictsLeft forces ApplyAttempt to report a version conflict
	// this many times before succeeding.
	conflictsLeft int
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[string]*models.DungeonRun)}
}

func (f *fakeStore) CreateRun(run *models.DungeonRun) error {
	copied := *run
	f.runs[run.ID] = &copied
	f.order = append(f.order, run.ID)
	return nil
}

func (f *fakeStore) GetRun(runID string) (*models.DungeonRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	copied := *run
	copied.FailedSkills = make(map[string]int, len(run.FailedSkills))
	for k, v := range run.FailedSkills {
		copied.FailedSkills[k] = v
	}
	copied.MasteredSkills = append([]string(nil), run.MasteredSkills...)
	return &copied, nil
}

func (f *fakeStore) ApplyAttempt(ctx context.Context, run *models.DungeonRun, attempt *models.RoomAttempt) error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return ErrVersionConflict
	}
	stored, ok := f.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}
	if stored.Version != run.Version {
		return ErrVersionConflict
	}
	run.Version++
	copied := *run
	f.runs[run.ID] = &copied
	attempt.ID = int64(len(f.attempts) + 1)
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeStore) ListRuns(userID int64, limit, offset int) ([]models.DungeonRun, error) {
	var runs []models.DungeonRun
	for _, id := range f.order {
		r := f.runs[id]
		if r.UserID == userID {
			runs = append(runs, *r)
		}
	}
	if offset > len(runs) {
		offset = len(runs)
	}
	runs = runs[offset:]
	if limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (f *fakeStore) CountRuns(userID int64) (int, error) {
	total := 0
	for _, r := range f.runs {
		if r.UserID == userID {
			total++
		}
	}
	return total, nil
}

func (f *fakeStore) ListAttempts(runID string) ([]models.RoomAttempt, error) {
	var out []models.RoomAttempt
	for _, a := range f.attempts {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeQuestions struct {
	questions []models.DrillQuestion
	err       error
}

func (f *fakeQuestions) ServeQuestions(ctx context.Context, subject string, difficulty models.Difficulty, count int) ([]models.DrillQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	if count > len(f.questions) {
		count = len(f.questions)
	}
	return f.questions[:count], nil
}

func testQuestions(n int) []models.DrillQuestion {
	qs := make([]models.DrillQuestion, n)
	for i := range qs {
		qs[i] = models.DrillQuestion{
			ID:            int64(i + 1),
			Skill:         "Recursion",
			Difficulty:    models.DifficultyMedium,
			QuestionText:  "What stops a recursive call?",
			CorrectAnswer: "base case",
			WrongAnswers:  []string{"stack", "loop", "return"},
		}
	}
	return qs
}

func submitReq(runID, answer string) models.SubmitRoomAnswerRequest {
	return models.SubmitRoomAnswerRequest{
		RunID:         runID,
		RoomNumber:    1,
		Skill:         "Recursion",
		Difficulty:    models.DifficultyMedium,
		QuestionText:  "What stops a recursive call?",
		CorrectAnswer: "base case",
		WrongAnswers:  []string{"stack", "loop", "return"},
		StudentAnswer: answer,
	}
}

func TestStartRunFixesTotalRooms(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(3)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{
		Subject:    "algorithms",
		Difficulty: models.DifficultyMedium,
		RoomCount:  5,
	})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	// Only 3 questions were available, so the run has 3 rooms.
	if resp.Run.TotalRooms != 3 {
		t.Errorf("TotalRooms = %d, want 3", resp.Run.TotalRooms)
	}
	if len(resp.Questions) != 3 {
		t.Errorf("served %d questions, want 3", len(resp.Questions))
	}
	if resp.Run.Status != models.RunInProgress {
		t.Errorf("Status = %q, want in_progress", resp.Run.Status)
	}
}

func TestSubmitAnswerMissingRunRejected(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{})

	_, err := svc.SubmitAnswer(context.Background(), 1, submitReq("no-such-run", "base case"))
	if err != ErrRunNotFound {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
	// Hard rejection: no attempt record may be written.
	if len(store.attempts) != 0 {
		t.Errorf("attempt was written for a missing run")
	}
}

func TestSubmitAnswerWrongOwnerRejected(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(3)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	_, err = svc.SubmitAnswer(context.Background(), 2, submitReq(resp.Run.ID, "base case"))
	if err != ErrNotRunOwner {
		t.Fatalf("err = %v, want ErrNotRunOwner", err)
	}
	if len(store.attempts) != 0 {
		t.Errorf("attempt was written for another user's run")
	}
}

func TestSubmitAnswerCompletedRunRejected(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(1)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium, RoomCount: 1})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	// Clear the only room: run completes.
	out, err := svc.SubmitAnswer(context.Background(), 1, submitReq(resp.Run.ID, "base case"))
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !out.Completed {
		t.Fatal("run should be completed")
	}

	_, err = svc.SubmitAnswer(context.Background(), 1, submitReq(resp.Run.ID, "base case"))
	if err != ErrRunCompleted {
		t.Fatalf("err = %v, want ErrRunCompleted", err)
	}
	if len(store.attempts) != 1 {
		t.Errorf("got %d attempts, want 1", len(store.attempts))
	}
}

func TestSubmitAnswerVersionConflictRetries(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(3)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	store.conflictsLeft = 2
	out, err := svc.SubmitAnswer(context.Background(), 1, submitReq(resp.Run.ID, "base case"))
	if err != nil {
		t.Fatalf("SubmitAnswer after conflicts: %v", err)
	}
	if out.RoomsCleared != 1 {
		t.Errorf("RoomsCleared = %d, want 1", out.RoomsCleared)
	}
	// Exactly one attempt row despite the retries.
	if len(store.attempts) != 1 {
		t.Errorf("got %d attempts, want 1", len(store.attempts))
	}
}

func TestSubmitAnswerFullRunToFailure(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(10)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium, RoomCount: 10})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	// Five wrong answers drain 100 HP at 20 per miss.
	var last *models.SubmitRoomAnswerResponse
	for i := 0; i < 5; i++ {
		last, err = svc.SubmitAnswer(context.Background(), 1, submitReq(resp.Run.ID, "wrong"))
		if err != nil {
			t.Fatalf("SubmitAnswer %d: %v", i, err)
		}
	}

	if last.CurrentHP != 0 {
		t.Errorf("CurrentHP = %d, want 0", last.CurrentHP)
	}
	if !last.Failed {
		t.Error("expected failed outcome")
	}
	if last.StudyReport == nil {
		t.Fatal("expected study report on failure")
	}
	if last.StudyReport.FailedSkills["Recursion"] != 5 {
		t.Errorf(`report FailedSkills["Recursion"] = %d, want 5`, last.StudyReport.FailedSkills["Recursion"])
	}

	run, err := svc.GetRun(1, resp.Run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != models.RunCompleted {
		t.Errorf("Status = %q, want completed", run.Status)
	}

	attempts, err := svc.ListAttempts(1, resp.Run.ID)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if attempts.Total != 5 {
		t.Errorf("Total attempts = %d, want 5", attempts.Total)
	}
}

func TestListRunsTotalCountsAllRuns(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(3)})

	for i := 0; i < 3; i++ {
		_, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium})
		if err != nil {
			t.Fatalf("StartRun %d: %v", i, err)
		}
	}

	resp, err := svc.ListRuns(1, 2, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}

	// The page holds 2 runs but Total reports all 3.
	if len(resp.Runs) != 2 {
		t.Errorf("page size = %d, want 2", len(resp.Runs))
	}
	if resp.Total != 3 {
		t.Errorf("Total = %d, want 3", resp.Total)
	}
}

func TestSubmitAnswerReleasesRunLock(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(3)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	if _, err := svc.SubmitAnswer(context.Background(), 1, submitReq(resp.Run.ID, "base case")); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	// The lock map must not accumulate entries for idle runs.
	svc.mu.Lock()
	held := len(svc.runLocks)
	svc.mu.Unlock()
	if held != 0 {
		t.Errorf("lock map holds %d entries after submission, want 0", held)
	}
}

func TestSubmitAnswerSerializesSameRun(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeQuestions{questions: testQuestions(10)})

	resp, err := svc.StartRun(context.Background(), 1, models.StartRunRequest{Subject: "algorithms", Difficulty: models.DifficultyMedium, RoomCount: 10})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.SubmitAnswer(context.Background(), 1, submitReq(resp.Run.ID, "base case"))
		}()
	}
	wg.Wait()

	run, err := svc.GetRun(1, resp.Run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.RoomsCleared != 4 {
		t.Errorf("RoomsCleared = %d, want 4", run.RoomsCleared)
	}
	if len(store.attempts) != 4 {
		t.Errorf("got %d attempts, want 4", len(store.attempts))
	}

	svc.mu.Lock()
	held := len(svc.runLocks)
	svc.mu.Unlock()
	if held != 0 {
		t.Errorf("lock map holds %d entries after all submissions, want 0", held)
	}
}
