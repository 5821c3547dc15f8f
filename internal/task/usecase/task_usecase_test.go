package usecase

import (
	"context"
	"testing"
	"time"

	"prepmail-backend/internal/task/domain"
	"prepmail-backend/internal/task/repository"
	"prepmail-backend/pkg/cache"
)

// fakeTaskRepo is an in-memory TaskRepository for tests
type fakeTaskRepo struct {
	tasks map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (f *fakeTaskRepo) Create(task *domain.Task) error {
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTaskRepo) CreateMany(tasks []*domain.Task) (int64, error) {
	var created int64
	for _, task := range tasks {
		if f.hasDuplicate(task) {
			continue
		}
		cp := *task
		f.tasks[task.ID] = &cp
		created++
	}
	return created, nil
}

func (f *fakeTaskRepo) hasDuplicate(task *domain.Task) bool {
	for _, existing := range f.tasks {
		if existing.UserID == task.UserID &&
			existing.EmailFingerprint == task.EmailFingerprint &&
			existing.Title == task.Title {
			return true
		}
	}
	return false
}

func (f *fakeTaskRepo) FindByID(id string) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *task
	return &cp, nil
}

func (f *fakeTaskRepo) FindByUserID(userID string, filter repository.TaskFilter) ([]*domain.Task, int64, error) {
	var result []*domain.Task
	for _, task := range f.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && task.TaskType != *filter.Type {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		cp := *task
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

func (f *fakeTaskRepo) Update(task *domain.Task) error {
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTaskRepo) Delete(id string) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) HasRecentFingerprint(userID, fingerprint string, since time.Time) (bool, error) {
	for _, task := range f.tasks {
		if task.UserID == userID && task.EmailFingerprint == fingerprint && !task.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskRepo) FindPendingReminders(now time.Time, window time.Duration) ([]*domain.Task, error) {
	var result []*domain.Task
	for _, task := range f.tasks {
		if task.Deadline == nil || task.ReminderSent || task.Status == domain.TaskStatusDone {
			continue
		}
		if task.Deadline.After(now) && task.Deadline.Before(now.Add(window)) {
			cp := *task
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeTaskRepo) MarkReminderSent(id string) error {
	if task, ok := f.tasks[id]; ok {
		task.ReminderSent = true
	}
	return nil
}

func TestCreateTaskClampsPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		want     int
	}{
		{"below range", -3, 1},
		{"above range", 99, 4},
		{"in range", 3, 3},
		{"zero defaults to medium", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewTaskUsecase(newFakeTaskRepo(), cache.NewMemoryCache())
			task, err := u.CreateTask(context.Background(), "user-1", TaskCreateRequest{
				Title:    "prepare slides",
				Priority: tt.priority,
			})
			if err != nil {
				t.Fatalf("CreateTask failed: %v", err)
			}
			if task.Priority != tt.want {
				t.Errorf("expected priority %d, got %d", tt.want, task.Priority)
			}
		})
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	u := NewTaskUsecase(newFakeTaskRepo(), cache.NewMemoryCache())
	_, err := u.CreateTask(context.Background(), "user-1", TaskCreateRequest{})
	if err == nil {
		t.Error("expected error for empty title")
	}
}

func TestCreateTaskDropsPastDeadline(t *testing.T) {
	u := NewTaskUsecase(newFakeTaskRepo(), cache.NewMemoryCache())

	past := time.Now().Add(-48 * time.Hour).Format(time.RFC3339)
	task, err := u.CreateTask(context.Background(), "user-1", TaskCreateRequest{
		Title:    "reply to recruiter",
		Deadline: &past,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Deadline != nil {
		t.Errorf("expected past deadline to be dropped, got %v", task.Deadline)
	}

	garbage := "next tuesday-ish"
	task, err = u.CreateTask(context.Background(), "user-1", TaskCreateRequest{
		Title:    "another task",
		Deadline: &garbage,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Deadline != nil {
		t.Errorf("expected unparsable deadline to be dropped, got %v", task.Deadline)
	}
}

func TestGetTaskByIDOwnership(t *testing.T) {
	repo := newFakeTaskRepo()
	u := NewTaskUsecase(repo, cache.NewMemoryCache())

	task, err := u.CreateTask(context.Background(), "user-1", TaskCreateRequest{Title: "mine"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := u.GetTaskByID("user-2", task.ID); err != ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound for foreign task, got %v", err)
	}
	if _, err := u.GetTaskByID("user-1", task.ID); err != nil {
		t.Errorf("expected owner to read task, got %v", err)
	}
}

func TestUpdateTaskStatusRejectsUnknown(t *testing.T) {
	repo := newFakeTaskRepo()
	u := NewTaskUsecase(repo, cache.NewMemoryCache())

	task, err := u.CreateTask(context.Background(), "user-1", TaskCreateRequest{Title: "kanban card"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := u.UpdateTaskStatus(context.Background(), "user-1", task.ID, "archived"); err != ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	updated, err := u.UpdateTaskStatus(context.Background(), "user-1", task.ID, "done")
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if updated.Status != domain.TaskStatusDone {
		t.Errorf("expected status done, got %s", updated.Status)
	}
}

func TestGetUserTasksCacheInvalidation(t *testing.T) {
	repo := newFakeTaskRepo()
	u := NewTaskUsecase(repo, cache.NewMemoryCache())
	ctx := context.Background()

	if _, err := u.CreateTask(ctx, "user-1", TaskCreateRequest{Title: "first"}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tasks, total, err := u.GetUserTasks(ctx, "user-1", repository.TaskFilter{})
	if err != nil {
		t.Fatalf("GetUserTasks failed: %v", err)
	}
	if total != 1 || len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d (total %d)", len(tasks), total)
	}

	// second create must invalidate the cached list
	if _, err := u.CreateTask(ctx, "user-1", TaskCreateRequest{Title: "second"}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tasks, total, err = u.GetUserTasks(ctx, "user-1", repository.TaskFilter{})
	if err != nil {
		t.Fatalf("GetUserTasks failed: %v", err)
	}
	if total != 2 || len(tasks) != 2 {
		t.Errorf("expected 2 tasks after invalidation, got %d (total %d)", len(tasks), total)
	}
}

func TestDeleteTaskOwnership(t *testing.T) {
	repo := newFakeTaskRepo()
	u := NewTaskUsecase(repo, cache.NewMemoryCache())
	ctx := context.Background()

	task, err := u.CreateTask(ctx, "user-1", TaskCreateRequest{Title: "to be deleted"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := u.DeleteTask(ctx, "user-2", task.ID); err != ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound for foreign delete, got %v", err)
	}
	if err := u.DeleteTask(ctx, "user-1", task.ID); err != nil {
		t.Errorf("expected owner delete to succeed, got %v", err)
	}
	if _, err := u.GetTaskByID("user-1", task.ID); err != ErrTaskNotFound {
		t.Errorf("expected task gone after delete, got %v", err)
	}
}
