package usecase

import (
	"context"
	"errors"

	"prepmail-backend/internal/sync/domain"
)

var ErrSyncInProgress = errors.New("sync already in progress")

// SyncOptions bounds a sync run
type SyncOptions struct {
	MaxEmails  int  `json:"maxEmails"`
	OnlyUnread bool `json:"onlyUnread"`
}

// SyncUsecase defines the interface for the email sync pipeline
type SyncUsecase interface {
	// StartSync admits a sync run for the user and launches it in the
	// background. Returns ErrSyncInProgress when a run is already active.
	StartSync(ctx context.Context, userID string, opts SyncOptions) (*domain.SyncStatus, error)

	// GetStatus returns the current sync status for the user
	GetStatus(ctx context.Context, userID string) (*domain.SyncStatus, error)
}
