package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prepmail-backend/internal/sync/domain"
	"prepmail-backend/pkg/cache"
)

// StatusStore persists per-user sync status records
type StatusStore interface {
	// Read returns the stored status, or a zeroed idle status when none
	// exists. Never returns nil with a nil error.
	Read(ctx context.Context, userID string) (*domain.SyncStatus, error)

	// Merge applies an update on top of the stored status. When the
	// update flips IsProcessing from true to false, LastSync is stamped
	// with the current time.
	Merge(ctx context.Context, userID string, update domain.StatusUpdate) (*domain.SyncStatus, error)

	// Clear drops the stored status
	Clear(ctx context.Context, userID string) error
}

// cacheStatusStore keeps statuses in the shared cache with a TTL so
// abandoned records age out on their own
type cacheStatusStore struct {
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time

	mu sync.Mutex // serializes read-modify-write merges in this process
}

// NewStatusStore creates a cache-backed StatusStore
func NewStatusStore(c cache.Cache, ttl time.Duration) StatusStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cacheStatusStore{
		cache: c,
		ttl:   ttl,
		now:   time.Now,
	}
}

func statusKey(userID string) string {
	return "sync:status:" + userID
}

func (s *cacheStatusStore) Read(ctx context.Context, userID string) (*domain.SyncStatus, error) {
	var status domain.SyncStatus
	found, err := s.cache.GetJSON(ctx, statusKey(userID), &status)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}
	if !found {
		return &domain.SyncStatus{CurrentStep: domain.StepIdle}, nil
	}
	return &status, nil
}

func (s *cacheStatusStore) Merge(ctx context.Context, userID string, update domain.StatusUpdate) (*domain.SyncStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.Read(ctx, userID)
	if err != nil {
		return nil, err
	}

	wasProcessing := status.IsProcessing

	if update.IsProcessing != nil {
		status.IsProcessing = *update.IsProcessing
	}
	if update.Progress != nil {
		status.Progress = *update.Progress
	}
	if update.CurrentStep != nil {
		status.CurrentStep = *update.CurrentStep
	}
	if update.TotalEmails != nil {
		status.TotalEmails = *update.TotalEmails
	}
	if update.ProcessedEmails != nil {
		status.ProcessedEmails = *update.ProcessedEmails
	}
	if update.EmailsFailed != nil {
		status.EmailsFailed = *update.EmailsFailed
	}
	if update.TasksCreated != nil {
		status.TasksCreated = *update.TasksCreated
	}
	if update.Error != nil {
		status.Error = *update.Error
	}

	if wasProcessing && !status.IsProcessing {
		t := s.now()
		status.LastSync = &t
	}

	if err := s.cache.SetJSON(ctx, statusKey(userID), status, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to write sync status: %w", err)
	}
	return status, nil
}

func (s *cacheStatusStore) Clear(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, statusKey(userID))
}
