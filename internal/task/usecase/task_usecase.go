package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"prepmail-backend/internal/task/domain"
	"prepmail-backend/internal/task/repository"
	"prepmail-backend/pkg/cache"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)

const taskListCacheTTL = 2 * time.Minute

// ListCacheKey is the cache key for a user's unfiltered first-page task list
func ListCacheKey(userID string) string {
	return "tasks:" + userID
}

type cachedTaskList struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int64          `json:"total"`
}

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo repository.TaskRepository
	cache    cache.Cache
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository, c cache.Cache) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
		cache:    c,
	}
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, req TaskCreateRequest) (*domain.Task, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	priority := req.Priority
	if priority == 0 {
		priority = 2
	}

	task := &domain.Task{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    req.Title,
		Details:  req.Details,
		Priority: domain.ClampPriority(priority),
		TaskType: domain.ValidTaskType(req.TaskType),
		Company:  req.Company,
		Role:     req.Role,
		Links:    req.Links,
		Status:   domain.TaskStatusTodo,
	}
	task.Deadline = parseDeadline(req.Deadline)

	if err := u.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	u.InvalidateCache(ctx, userID)
	return task, nil
}

func (u *taskUsecase) GetTaskByID(userID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (u *taskUsecase) GetUserTasks(ctx context.Context, userID string, filter repository.TaskFilter) ([]*domain.Task, int64, error) {
	cacheable := filter.IsEmpty() && u.cache != nil
	if cacheable {
		var cached cachedTaskList
		hit, err := u.cache.GetJSON(ctx, ListCacheKey(userID), &cached)
		if err != nil {
			log.Printf("[TaskUsecase] cache read failed: %v", err)
		} else if hit {
			return cached.Tasks, cached.Total, nil
		}
	}

	tasks, total, err := u.taskRepo.FindByUserID(userID, filter)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if err := u.cache.SetJSON(ctx, ListCacheKey(userID), cachedTaskList{Tasks: tasks, Total: total}, taskListCacheTTL); err != nil {
			log.Printf("[TaskUsecase] cache write failed: %v", err)
		}
	}

	return tasks, total, nil
}

func (u *taskUsecase) UpdateTask(ctx context.Context, userID, taskID string, updates TaskUpdateRequest) (*domain.Task, error) {
	task, err := u.GetTaskByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	if updates.Title != nil && *updates.Title != "" {
		task.Title = *updates.Title
	}
	if updates.Details != nil {
		task.Details = *updates.Details
	}
	if updates.Priority != nil {
		task.Priority = domain.ClampPriority(*updates.Priority)
	}
	if updates.Deadline != nil {
		task.Deadline = parseDeadline(updates.Deadline)
	}
	if updates.TaskType != nil {
		task.TaskType = domain.ValidTaskType(*updates.TaskType)
	}
	if updates.Company != nil {
		task.Company = *updates.Company
	}
	if updates.Role != nil {
		task.Role = *updates.Role
	}
	if updates.Links != nil {
		task.Links = *updates.Links
	}
	if updates.Status != nil {
		if !domain.ValidStatus(*updates.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = domain.TaskStatus(*updates.Status)
	}

	if err := u.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	u.InvalidateCache(ctx, userID)
	return task, nil
}

func (u *taskUsecase) UpdateTaskStatus(ctx context.Context, userID, taskID, status string) (*domain.Task, error) {
	if !domain.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return u.UpdateTask(ctx, userID, taskID, TaskUpdateRequest{Status: &status})
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := u.GetTaskByID(userID, taskID); err != nil {
		return err
	}
	if err := u.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	u.InvalidateCache(ctx, userID)
	return nil
}

func (u *taskUsecase) InvalidateCache(ctx context.Context, userID string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Delete(ctx, ListCacheKey(userID)); err != nil {
		log.Printf("[TaskUsecase] cache invalidation failed: %v", err)
	}
}

// parseDeadline accepts RFC3339 or a bare date; past or unparsable values
// become nil so the extractor cannot create already-overdue reminders.
func parseDeadline(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", *raw)
		if err != nil {
			return nil
		}
		// bare dates mean end of that day
		t = t.Add(23*time.Hour + 59*time.Minute)
	}
	if t.Before(time.Now()) {
		return nil
	}
	return &t
}
