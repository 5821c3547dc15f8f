package repository

import (
	"time"

	"prepmail-backend/internal/task/domain"
)

// TaskFilter narrows a dashboard listing
type TaskFilter struct {
	Status   *domain.TaskStatus
	Type     *domain.TaskType
	Priority *int
	Query    string // matches title or details, case-insensitive
	Limit    int
	Offset   int
}

// IsEmpty reports whether the filter selects everything (first page aside)
func (f TaskFilter) IsEmpty() bool {
	return f.Status == nil && f.Type == nil && f.Priority == nil && f.Query == "" && f.Offset == 0
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *domain.Task) error

	// CreateMany bulk-inserts tasks, skipping rows that collide with the
	// unique constraint. Returns the number of rows actually created.
	CreateMany(tasks []*domain.Task) (int64, error)

	// FindByID finds a task by its ID
	FindByID(id string) (*domain.Task, error)

	// FindByUserID finds tasks for a user with optional filters
	FindByUserID(userID string, filter TaskFilter) ([]*domain.Task, int64, error)

	// Update updates an existing task
	Update(task *domain.Task) error

	// Delete deletes a task by ID
	Delete(id string) error

	// HasRecentFingerprint reports whether a task with this email
	// fingerprint was created for the user at or after since
	HasRecentFingerprint(userID, fingerprint string, since time.Time) (bool, error)

	// FindPendingReminders finds tasks whose deadline falls inside the
	// window and that have not been reminded yet
	FindPendingReminders(now time.Time, window time.Duration) ([]*domain.Task, error)

	// MarkReminderSent marks a task's reminder as sent
	MarkReminderSent(id string) error
}
