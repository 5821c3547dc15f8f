package usecase

import (
	"context"

	"prepmail-backend/internal/interview/domain"
)

// PrepUsecase defines the interface for interview prep business logic
type PrepUsecase interface {
	// GeneratePrep creates (or regenerates) practice questions for an
	// interview task
	GeneratePrep(ctx context.Context, userID, taskID, style string) (*domain.InterviewPrep, error)

	// GetPrep retrieves the prep attached to a task
	GetPrep(userID, taskID string) (*domain.InterviewPrep, error)

	// SetPrepScheduled toggles the prep-session flag on a task's prep
	SetPrepScheduled(userID, taskID string, scheduled bool) (*domain.InterviewPrep, error)
}
