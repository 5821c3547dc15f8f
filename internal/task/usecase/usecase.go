package usecase

import (
	"context"

	"prepmail-backend/internal/task/domain"
	"prepmail-backend/internal/task/repository"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// CreateTask creates a new task manually
	CreateTask(ctx context.Context, userID string, req TaskCreateRequest) (*domain.Task, error)

	// GetTaskByID retrieves a task by ID (with ownership check)
	GetTaskByID(userID, taskID string) (*domain.Task, error)

	// GetUserTasks retrieves tasks for a user with optional filters
	GetUserTasks(ctx context.Context, userID string, filter repository.TaskFilter) ([]*domain.Task, int64, error)

	// UpdateTask updates an existing task
	UpdateTask(ctx context.Context, userID, taskID string, updates TaskUpdateRequest) (*domain.Task, error)

	// UpdateTaskStatus moves a task between dashboard columns
	UpdateTaskStatus(ctx context.Context, userID, taskID, status string) (*domain.Task, error)

	// DeleteTask deletes a task
	DeleteTask(ctx context.Context, userID, taskID string) error

	// InvalidateCache drops the cached task list for a user
	InvalidateCache(ctx context.Context, userID string)
}

// TaskCreateRequest carries the fields accepted when creating a task by hand
type TaskCreateRequest struct {
	Title    string   `json:"title" binding:"required"`
	Details  string   `json:"details"`
	Priority int      `json:"priority"`
	Deadline *string  `json:"deadline,omitempty"`
	TaskType string   `json:"task_type"`
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Links    []string `json:"links"`
}

// TaskUpdateRequest represents the fields that can be updated
type TaskUpdateRequest struct {
	Title    *string   `json:"title,omitempty"`
	Details  *string   `json:"details,omitempty"`
	Priority *int      `json:"priority,omitempty"`
	Deadline *string   `json:"deadline,omitempty"`
	TaskType *string   `json:"task_type,omitempty"`
	Company  *string   `json:"company,omitempty"`
	Role     *string   `json:"role,omitempty"`
	Links    *[]string `json:"links,omitempty"`
	Status   *string   `json:"status,omitempty"`
}
