package repository

import "prepmail-backend/internal/interview/domain"

// PrepRepository defines the interface for interview prep data access
type PrepRepository interface {
	// Upsert saves a prep, replacing any existing prep for the same task
	Upsert(prep *domain.InterviewPrep) error

	// FindByTaskID finds a prep by the task it belongs to
	FindByTaskID(taskID string) (*domain.InterviewPrep, error)

	// Update updates an existing prep
	Update(prep *domain.InterviewPrep) error

	// DeleteByTaskID removes the prep attached to a task
	DeleteByTaskID(taskID string) error
}
