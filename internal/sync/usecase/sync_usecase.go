package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	maildomain "prepmail-backend/internal/mail/domain"
	mailusecase "prepmail-backend/internal/mail/usecase"
	"prepmail-backend/internal/sync/domain"
	"prepmail-backend/internal/sync/repository"
	taskdomain "prepmail-backend/internal/task/domain"
	taskrepo "prepmail-backend/internal/task/repository"
	taskusecase "prepmail-backend/internal/task/usecase"
	"prepmail-backend/pkg/ai"

	"github.com/google/uuid"
)

const (
	syncBatchSize    = 3
	dedupWindow      = 7 * 24 * time.Hour
	maxEmailsCeiling = 50

	progressFetching  = 10
	progressAnalyzing = 20
	progressExtracted = 80
	progressSaving    = 85
	progressDone      = 100
)

// syncUsecase runs the email-to-task pipeline. One run per user at a
// time, admitted through the status store's isProcessing flag.
type syncUsecase struct {
	statusStore repository.StatusStore
	taskRepo    taskrepo.TaskRepository
	taskUC      taskusecase.TaskUsecase
	fetcher     mailusecase.MessageFetcher
	extractor   ai.ExtractorService

	defaultMaxEmails int
	batchPause       time.Duration
	now              func() time.Time

	// wg tracks in-flight background runs so tests can wait on them
	wg sync.WaitGroup
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	statusStore repository.StatusStore,
	taskRepo taskrepo.TaskRepository,
	taskUC taskusecase.TaskUsecase,
	fetcher mailusecase.MessageFetcher,
	extractor ai.ExtractorService,
	defaultMaxEmails int,
	batchPause time.Duration,
) SyncUsecase {
	if defaultMaxEmails <= 0 {
		defaultMaxEmails = 20
	}
	return &syncUsecase{
		statusStore:      statusStore,
		taskRepo:         taskRepo,
		taskUC:           taskUC,
		fetcher:          fetcher,
		extractor:        extractor,
		defaultMaxEmails: defaultMaxEmails,
		batchPause:       batchPause,
		now:              time.Now,
	}
}

func (u *syncUsecase) StartSync(ctx context.Context, userID string, opts SyncOptions) (*domain.SyncStatus, error) {
	status, err := u.statusStore.Read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status.IsProcessing {
		return nil, ErrSyncInProgress
	}

	if opts.MaxEmails <= 0 {
		opts.MaxEmails = u.defaultMaxEmails
	}
	if opts.MaxEmails > maxEmailsCeiling {
		opts.MaxEmails = maxEmailsCeiling
	}

	initial, err := u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
		IsProcessing:    domain.Bool(true),
		Progress:        domain.Int(0),
		CurrentStep:     domain.Str(domain.StepStarting),
		TotalEmails:     domain.Int(0),
		ProcessedEmails: domain.Int(0),
		EmailsFailed:    domain.Int(0),
		TasksCreated:    domain.Int(0),
		Error:           domain.Str(""),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SyncOrchestrator] Starting sync for user %s (maxEmails=%d, onlyUnread=%v)",
		userID, opts.MaxEmails, opts.OnlyUnread)

	// the run outlives the HTTP request that triggered it
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.run(context.Background(), userID, opts)
	}()

	return initial, nil
}

func (u *syncUsecase) GetStatus(ctx context.Context, userID string) (*domain.SyncStatus, error) {
	return u.statusStore.Read(ctx, userID)
}

// Wait blocks until every in-flight run has finished
func (u *syncUsecase) Wait() {
	u.wg.Wait()
}

func (u *syncUsecase) run(ctx context.Context, userID string, opts SyncOptions) {
	u.mergeProgress(ctx, userID, progressFetching, domain.StepFetching)

	messages, err := u.fetcher.Fetch(ctx, userID, maildomain.FetchOptions{
		MaxCount:   opts.MaxEmails,
		OnlyUnread: opts.OnlyUnread,
	})
	if err != nil {
		u.fail(ctx, userID, fmt.Errorf("failed to fetch emails: %w", err))
		return
	}

	if len(messages) == 0 {
		log.Printf("[SyncOrchestrator] No new emails for user %s", userID)
		u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
			IsProcessing: domain.Bool(false),
			Progress:     domain.Int(progressDone),
			CurrentStep:  domain.Str(domain.StepNoMail),
		})
		return
	}

	u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
		Progress:    domain.Int(progressAnalyzing),
		CurrentStep: domain.Str(domain.StepAnalyzing),
		TotalEmails: domain.Int(len(messages)),
	})

	candidates, processed, failed := u.analyzeMessages(ctx, userID, messages)

	u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
		Progress:        domain.Int(progressSaving),
		CurrentStep:     domain.Str(domain.StepSaving),
		ProcessedEmails: domain.Int(processed),
		EmailsFailed:    domain.Int(failed),
	})

	var created int64
	if len(candidates) > 0 {
		created, err = u.taskRepo.CreateMany(candidates)
		if err != nil {
			u.fail(ctx, userID, fmt.Errorf("failed to save tasks: %w", err))
			return
		}
		u.taskUC.InvalidateCache(ctx, userID)
	}

	u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
		IsProcessing: domain.Bool(false),
		Progress:     domain.Int(progressDone),
		CurrentStep:  domain.Str(domain.StepCompleted),
		TasksCreated: domain.Int(int(created)),
	})

	log.Printf("[SyncOrchestrator] Sync completed for user %s: %d emails, %d failed, %d tasks created",
		userID, processed, failed, created)
}

// analyzeMessages walks the messages in batches. Messages inside a
// batch run concurrently; batches themselves run strictly in order so
// progress only moves forward.
func (u *syncUsecase) analyzeMessages(ctx context.Context, userID string, messages []*maildomain.Message) (candidates []*taskdomain.Task, processed, failed int) {
	total := len(messages)
	numBatches := (total + syncBatchSize - 1) / syncBatchSize

	for batch := 0; batch < numBatches; batch++ {
		start := batch * syncBatchSize
		end := start + syncBatchSize
		if end > total {
			end = total
		}

		type result struct {
			tasks []*taskdomain.Task
			err   error
		}
		results := make([]result, end-start)

		var wg sync.WaitGroup
		for i, msg := range messages[start:end] {
			wg.Add(1)
			go func(i int, msg *maildomain.Message) {
				defer wg.Done()
				tasks, err := u.processMessage(ctx, userID, msg)
				results[i] = result{tasks: tasks, err: err}
			}(i, msg)
		}
		wg.Wait()

		for i, res := range results {
			if res.err != nil {
				failed++
				log.Printf("[SyncOrchestrator] Failed to process email %s: %v", messages[start+i].ID, res.err)
				continue
			}
			processed++
			candidates = append(candidates, res.tasks...)
		}

		// progress tracks handled messages, failures included
		progress := progressAnalyzing + (progressExtracted-progressAnalyzing)*(processed+failed)/total
		u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
			Progress:        domain.Int(progress),
			ProcessedEmails: domain.Int(processed),
			EmailsFailed:    domain.Int(failed),
		})

		// breathe between batches so the AI provider is not hammered
		if batch < numBatches-1 && u.batchPause > 0 {
			time.Sleep(u.batchPause)
		}
	}

	return candidates, processed, failed
}

// processMessage turns one email into zero or more task candidates.
// Emails already seen inside the dedup window yield nothing.
func (u *syncUsecase) processMessage(ctx context.Context, userID string, msg *maildomain.Message) ([]*taskdomain.Task, error) {
	fingerprint := messageFingerprint(msg.ID)

	seen, err := u.taskRepo.HasRecentFingerprint(userID, fingerprint, u.now().Add(-dedupWindow))
	if err != nil {
		return nil, fmt.Errorf("dedup lookup failed: %w", err)
	}
	if seen {
		return nil, nil
	}

	emailText := msg.Subject + "\n\n" + msg.Body
	extraction, err := u.extractor.ExtractTasks(ctx, emailText)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	if !extraction.IsActionable {
		return nil, nil
	}

	tasks := make([]*taskdomain.Task, 0, len(extraction.Tasks))
	for _, cand := range extraction.Tasks {
		if cand.Title == "" {
			continue
		}
		task := &taskdomain.Task{
			ID:               uuid.New().String(),
			UserID:           userID,
			EmailFingerprint: fingerprint,
			Title:            cand.Title,
			Details:          cand.Details,
			Priority:         taskdomain.ClampPriority(cand.Priority),
			TaskType:         taskdomain.ValidTaskType(cand.Type),
			Company:          cand.Company,
			Role:             cand.Role,
			Links:            cand.Links,
			Status:           taskdomain.TaskStatusTodo,
		}
		task.Deadline = u.parseCandidateDeadline(cand.Deadline)
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// parseCandidateDeadline drops deadlines the extractor got wrong:
// unparsable strings and dates already in the past become nil
func (u *syncUsecase) parseCandidateDeadline(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil
		}
		t = t.Add(23*time.Hour + 59*time.Minute)
	}
	if t.Before(u.now()) {
		return nil
	}
	return &t
}

func (u *syncUsecase) mergeProgress(ctx context.Context, userID string, progress int, step string) {
	if _, err := u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
		Progress:    domain.Int(progress),
		CurrentStep: domain.Str(step),
	}); err != nil {
		log.Printf("[SyncOrchestrator] Failed to update status for user %s: %v", userID, err)
	}
}

// fail flips the run to a terminal error state. Progress is left where
// it was so the client can show how far the run got.
func (u *syncUsecase) fail(ctx context.Context, userID string, err error) {
	log.Printf("[SyncOrchestrator] Sync failed for user %s: %v", userID, err)
	u.statusStore.Merge(ctx, userID, domain.StatusUpdate{
		IsProcessing: domain.Bool(false),
		CurrentStep:  domain.Str(domain.StepFailed),
		Error:        domain.Str(err.Error()),
	})
}

// messageFingerprint is a stable short hash of the provider message id
func messageFingerprint(messageID string) string {
	sum := sha256.Sum256([]byte(messageID))
	return hex.EncodeToString(sum[:])[:16]
}
