package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	maildomain "prepmail-backend/internal/mail/domain"
	"prepmail-backend/internal/sync/domain"
	"prepmail-backend/internal/sync/repository"
	taskdomain "prepmail-backend/internal/task/domain"
	taskrepo "prepmail-backend/internal/task/repository"
	taskusecase "prepmail-backend/internal/task/usecase"
	"prepmail-backend/pkg/ai"
	"prepmail-backend/pkg/cache"
)

// fakeFetcher returns canned messages or an error
type fakeFetcher struct {
	messages []*maildomain.Message
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, userID string, opts maildomain.FetchOptions) ([]*maildomain.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.messages) > opts.MaxCount {
		return f.messages[:opts.MaxCount], nil
	}
	return f.messages, nil
}

// fakeExtractor maps email subjects to extraction results
type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]*ai.ExtractionResult
	errors  map[string]error
	calls   int
}

func (f *fakeExtractor) ExtractTasks(ctx context.Context, emailText string) (*ai.ExtractionResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	subject := strings.SplitN(emailText, "\n", 2)[0]
	if err, ok := f.errors[subject]; ok {
		return nil, err
	}
	if res, ok := f.results[subject]; ok {
		return res, nil
	}
	return &ai.ExtractionResult{IsActionable: false}, nil
}

func (f *fakeExtractor) GenerateInterviewQuestions(ctx context.Context, company, role, style string) ([]ai.InterviewQuestion, error) {
	return nil, errors.New("not implemented")
}

// memTaskRepo is an in-memory TaskRepository honoring the duplicate
// constraint the way the database would
type memTaskRepo struct {
	mu            sync.Mutex
	tasks         []*taskdomain.Task
	createManyErr error
}

func (r *memTaskRepo) Create(task *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *memTaskRepo) CreateMany(tasks []*taskdomain.Task) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createManyErr != nil {
		return 0, r.createManyErr
	}
	var created int64
	for _, task := range tasks {
		dup := false
		for _, existing := range r.tasks {
			if existing.UserID == task.UserID &&
				existing.EmailFingerprint == task.EmailFingerprint &&
				existing.Title == task.Title {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		cp := *task
		cp.CreatedAt = time.Now()
		r.tasks = append(r.tasks, &cp)
		created++
	}
	return created, nil
}

func (r *memTaskRepo) FindByID(id string) (*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, nil
}

func (r *memTaskRepo) FindByUserID(userID string, filter taskrepo.TaskFilter) ([]*taskdomain.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*taskdomain.Task
	for _, task := range r.tasks {
		if task.UserID == userID {
			result = append(result, task)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memTaskRepo) Update(task *taskdomain.Task) error { return nil }
func (r *memTaskRepo) Delete(id string) error             { return nil }

func (r *memTaskRepo) HasRecentFingerprint(userID, fingerprint string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.UserID == userID && task.EmailFingerprint == fingerprint && !task.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTaskRepo) FindPendingReminders(now time.Time, window time.Duration) ([]*taskdomain.Task, error) {
	return nil, nil
}
func (r *memTaskRepo) MarkReminderSent(id string) error { return nil }

// recordingStore wraps a StatusStore and records every progress value
type recordingStore struct {
	repository.StatusStore
	mu       sync.Mutex
	progress []int
}

func (s *recordingStore) Merge(ctx context.Context, userID string, update domain.StatusUpdate) (*domain.SyncStatus, error) {
	status, err := s.StatusStore.Merge(ctx, userID, update)
	if err == nil && update.Progress != nil {
		s.mu.Lock()
		s.progress = append(s.progress, *update.Progress)
		s.mu.Unlock()
	}
	return status, err
}

type harness struct {
	uc        *syncUsecase
	store     *recordingStore
	taskRepo  *memTaskRepo
	fetcher   *fakeFetcher
	extractor *fakeExtractor
}

func newHarness(fetcher *fakeFetcher, extractor *fakeExtractor) *harness {
	store := &recordingStore{
		StatusStore: repository.NewStatusStore(cache.NewMemoryCache(), time.Minute),
	}
	taskRepo := &memTaskRepo{}
	taskUC := taskusecase.NewTaskUsecase(taskRepo, cache.NewMemoryCache())
	uc := NewSyncUsecase(store, taskRepo, taskUC, fetcher, extractor, 20, 0).(*syncUsecase)
	return &harness{uc: uc, store: store, taskRepo: taskRepo, fetcher: fetcher, extractor: extractor}
}

func (h *harness) runSync(t *testing.T, userID string, opts SyncOptions) *domain.SyncStatus {
	t.Helper()
	if _, err := h.uc.StartSync(context.Background(), userID, opts); err != nil {
		t.Fatalf("StartSync failed: %v", err)
	}
	h.uc.Wait()
	status, err := h.uc.GetStatus(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	return status
}

func messages(n int) []*maildomain.Message {
	msgs := make([]*maildomain.Message, n)
	for i := range msgs {
		msgs[i] = &maildomain.Message{
			ID:      fmt.Sprintf("msg-%d", i),
			Subject: fmt.Sprintf("subject-%d", i),
			Body:    "body",
		}
	}
	return msgs
}

func actionable(title string, extra ...ai.TaskCandidate) *ai.ExtractionResult {
	tasks := append([]ai.TaskCandidate{{Title: title, Priority: 2, Type: "general"}}, extra...)
	return &ai.ExtractionResult{IsActionable: true, Tasks: tasks}
}

func TestSyncHappyPathMultiBatch(t *testing.T) {
	// 7 messages means 3 batches of 3, 3, 1
	extractor := &fakeExtractor{results: map[string]*ai.ExtractionResult{
		"subject-0": actionable("reply to recruiter"),
		"subject-3": actionable("schedule onsite"),
		"subject-6": actionable("finish take-home"),
	}}
	h := newHarness(&fakeFetcher{messages: messages(7)}, extractor)

	status := h.runSync(t, "user-1", SyncOptions{})

	if status.IsProcessing {
		t.Error("expected run to be finished")
	}
	if status.Progress != 100 {
		t.Errorf("expected progress 100, got %d", status.Progress)
	}
	if status.CurrentStep != domain.StepCompleted {
		t.Errorf("expected step %q, got %q", domain.StepCompleted, status.CurrentStep)
	}
	if status.TotalEmails != 7 || status.ProcessedEmails != 7 {
		t.Errorf("expected 7/7 emails, got %d/%d", status.ProcessedEmails, status.TotalEmails)
	}
	if status.EmailsFailed != 0 {
		t.Errorf("expected no failures, got %d", status.EmailsFailed)
	}
	if status.TasksCreated != 3 {
		t.Errorf("expected 3 tasks created, got %d", status.TasksCreated)
	}
	if status.LastSync == nil {
		t.Error("expected lastSync to be stamped")
	}
	if extractor.calls != 7 {
		t.Errorf("expected every email analyzed once, got %d calls", extractor.calls)
	}
}

func TestSyncProgressIsMonotonic(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ai.ExtractionResult{
		"subject-1": actionable("a task"),
	}}
	h := newHarness(&fakeFetcher{messages: messages(8)}, extractor)

	h.runSync(t, "user-1", SyncOptions{})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if len(h.store.progress) == 0 {
		t.Fatal("expected progress updates")
	}
	prev := -1
	for _, p := range h.store.progress {
		if p < prev {
			t.Fatalf("progress went backwards: %v", h.store.progress)
		}
		prev = p
	}
	if h.store.progress[len(h.store.progress)-1] != 100 {
		t.Errorf("expected final progress 100, got %v", h.store.progress)
	}
}

func TestSyncNoNewEmailsShortCircuits(t *testing.T) {
	extractor := &fakeExtractor{}
	h := newHarness(&fakeFetcher{messages: nil}, extractor)

	status := h.runSync(t, "user-1", SyncOptions{})

	if status.IsProcessing {
		t.Error("expected run to be finished")
	}
	if status.CurrentStep != domain.StepNoMail {
		t.Errorf("expected step %q, got %q", domain.StepNoMail, status.CurrentStep)
	}
	if status.Progress != 100 {
		t.Errorf("expected progress 100, got %d", status.Progress)
	}
	if status.LastSync == nil {
		t.Error("an empty run still counts as a sync")
	}
	if extractor.calls != 0 {
		t.Errorf("expected no extraction calls, got %d", extractor.calls)
	}
}

func TestSyncFetchFailureIsTerminal(t *testing.T) {
	h := newHarness(&fakeFetcher{err: errors.New("mailbox unreachable")}, &fakeExtractor{})

	status := h.runSync(t, "user-1", SyncOptions{})

	if status.IsProcessing {
		t.Error("expected run to be finished")
	}
	if status.CurrentStep != domain.StepFailed {
		t.Errorf("expected step %q, got %q", domain.StepFailed, status.CurrentStep)
	}
	if status.Error == "" {
		t.Error("expected error message to be surfaced")
	}
	// progress stays where the run died
	if status.Progress != 10 {
		t.Errorf("expected progress left at 10, got %d", status.Progress)
	}
}

func TestSyncPerMessageFailureIsCountedNotFatal(t *testing.T) {
	extractor := &fakeExtractor{
		results: map[string]*ai.ExtractionResult{
			"subject-0": actionable("good task"),
		},
		errors: map[string]error{
			"subject-1": errors.New("model timeout"),
			"subject-2": errors.New("model timeout"),
		},
	}
	h := newHarness(&fakeFetcher{messages: messages(4)}, extractor)

	status := h.runSync(t, "user-1", SyncOptions{})

	if status.CurrentStep != domain.StepCompleted {
		t.Errorf("expected completed run despite failures, got %q", status.CurrentStep)
	}
	if status.EmailsFailed != 2 {
		t.Errorf("expected 2 failed emails, got %d", status.EmailsFailed)
	}
	if status.ProcessedEmails != 2 {
		t.Errorf("expected 2 successfully processed emails, got %d", status.ProcessedEmails)
	}
	if status.ProcessedEmails+status.EmailsFailed > status.TotalEmails {
		t.Error("processed plus failed may never exceed total")
	}
	if status.TasksCreated != 1 {
		t.Errorf("expected the healthy email to still produce a task, got %d", status.TasksCreated)
	}
}

func TestSyncAdmissionConflict(t *testing.T) {
	h := newHarness(&fakeFetcher{}, &fakeExtractor{})
	ctx := context.Background()

	// simulate an active run
	if _, err := h.store.Merge(ctx, "user-1", domain.StatusUpdate{IsProcessing: domain.Bool(true)}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if _, err := h.uc.StartSync(ctx, "user-1", SyncOptions{}); err != ErrSyncInProgress {
		t.Errorf("expected ErrSyncInProgress, got %v", err)
	}

	// another user is unaffected
	if _, err := h.uc.StartSync(ctx, "user-2", SyncOptions{}); err != nil {
		t.Errorf("expected independent admission per user, got %v", err)
	}
	h.uc.Wait()
}

func TestSyncMaxEmailsClamped(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero uses default", 0, 20},
		{"negative uses default", -5, 20},
		{"above ceiling clamps", 500, 50},
		{"in range passes through", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{messages: messages(60)}
			h := newHarness(fetcher, &fakeExtractor{})

			status := h.runSync(t, "user-1", SyncOptions{MaxEmails: tt.requested})
			if status.TotalEmails != tt.want {
				t.Errorf("expected %d emails fetched, got %d", tt.want, status.TotalEmails)
			}
		})
	}
}

func TestSyncDedupSkipsRecentlySeenEmails(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ai.ExtractionResult{
		"subject-0": actionable("task from email 0"),
		"subject-1": actionable("task from email 1"),
	}}
	h := newHarness(&fakeFetcher{messages: messages(2)}, extractor)

	first := h.runSync(t, "user-1", SyncOptions{})
	if first.TasksCreated != 2 {
		t.Fatalf("expected 2 tasks on first run, got %d", first.TasksCreated)
	}
	callsAfterFirst := extractor.calls

	// same mailbox again: fingerprints are recent, nothing re-analyzed
	second := h.runSync(t, "user-1", SyncOptions{})
	if second.TasksCreated != 0 {
		t.Errorf("expected rerun to create nothing, got %d", second.TasksCreated)
	}
	if extractor.calls != callsAfterFirst {
		t.Errorf("expected deduped emails to skip extraction, got %d extra calls", extractor.calls-callsAfterFirst)
	}
	if second.CurrentStep != domain.StepCompleted {
		t.Errorf("expected completed rerun, got %q", second.CurrentStep)
	}
}

func TestSyncExtractedCandidatesAreSanitized(t *testing.T) {
	past := time.Now().Add(-72 * time.Hour).Format(time.RFC3339)
	future := time.Now().Add(72 * time.Hour).Format(time.RFC3339)

	extractor := &fakeExtractor{results: map[string]*ai.ExtractionResult{
		"subject-0": {IsActionable: true, Tasks: []ai.TaskCandidate{
			{Title: "interview at Initech", Priority: 9, Type: "interview", Deadline: future},
			{Title: "stale deadline", Priority: 0, Type: "nonsense", Deadline: past},
			{Title: "garbled deadline", Priority: 3, Deadline: "whenever"},
			{Title: "", Priority: 2}, // dropped entirely
		}},
	}}
	h := newHarness(&fakeFetcher{messages: messages(1)}, extractor)

	status := h.runSync(t, "user-1", SyncOptions{})
	if status.TasksCreated != 3 {
		t.Fatalf("expected 3 tasks (untitled dropped), got %d", status.TasksCreated)
	}

	tasks, _, err := h.taskRepo.FindByUserID("user-1", taskrepo.TaskFilter{})
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}

	byTitle := make(map[string]*taskdomain.Task)
	for _, task := range tasks {
		byTitle[task.Title] = task
	}

	if got := byTitle["interview at Initech"]; got.Priority != 4 {
		t.Errorf("expected priority clamped to 4, got %d", got.Priority)
	} else if got.Deadline == nil {
		t.Error("expected future deadline to be kept")
	} else if got.TaskType != taskdomain.TaskTypeInterview {
		t.Errorf("expected interview type, got %s", got.TaskType)
	}

	if got := byTitle["stale deadline"]; got.Deadline != nil {
		t.Error("expected past deadline nulled")
	} else if got.Priority != 1 {
		t.Errorf("expected priority clamped to 1, got %d", got.Priority)
	} else if got.TaskType != taskdomain.TaskTypeGeneral {
		t.Errorf("expected unknown type mapped to general, got %s", got.TaskType)
	}

	if got := byTitle["garbled deadline"]; got.Deadline != nil {
		t.Error("expected unparsable deadline nulled")
	}
}

func TestSyncBulkInsertSkipsDatabaseDuplicates(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ai.ExtractionResult{
		"subject-0": actionable("follow up"),
	}}
	h := newHarness(&fakeFetcher{messages: messages(1)}, extractor)

	// a prior run already stored this exact task, outside the dedup
	// window so the fingerprint check does not catch it
	h.taskRepo.tasks = append(h.taskRepo.tasks, &taskdomain.Task{
		ID:               "existing",
		UserID:           "user-1",
		EmailFingerprint: messageFingerprint("msg-0"),
		Title:            "follow up",
		CreatedAt:        time.Now().Add(-30 * 24 * time.Hour),
	})

	status := h.runSync(t, "user-1", SyncOptions{})
	if status.TasksCreated != 0 {
		t.Errorf("expected unique constraint to swallow the duplicate, got %d created", status.TasksCreated)
	}
	if status.CurrentStep != domain.StepCompleted {
		t.Errorf("expected completed run, got %q", status.CurrentStep)
	}
}

func TestSyncPersistFailureIsTerminalError(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ai.ExtractionResult{
		"subject-0": actionable("never saved"),
	}}
	h := newHarness(&fakeFetcher{messages: messages(1)}, extractor)
	h.taskRepo.createManyErr = errors.New("database unreachable")

	status := h.runSync(t, "user-1", SyncOptions{})

	if status.IsProcessing {
		t.Error("expected run to be finished")
	}
	if status.CurrentStep != domain.StepFailed {
		t.Errorf("expected step %q, got %q", domain.StepFailed, status.CurrentStep)
	}
	if status.Error == "" {
		t.Error("expected error message to be surfaced")
	}
	if status.TasksCreated != 0 {
		t.Errorf("failed persist must not report created tasks, got %d", status.TasksCreated)
	}
	// progress stays at the saving step where the run died
	if status.Progress != 85 {
		t.Errorf("expected progress left at 85, got %d", status.Progress)
	}
}

func TestMessageFingerprintIsStable(t *testing.T) {
	a := messageFingerprint("msg-123")
	b := messageFingerprint("msg-123")
	c := messageFingerprint("msg-124")

	if a != b {
		t.Error("fingerprint must be deterministic")
	}
	if a == c {
		t.Error("distinct message ids must not collide")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(a))
	}
}
