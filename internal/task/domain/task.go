package domain

import "time"

// TaskType categorizes where a task came from
type TaskType string

const (
	TaskTypeInterview  TaskType = "interview"
	TaskTypeMeeting    TaskType = "meeting"
	TaskTypeAssignment TaskType = "assignment"
	TaskTypeGeneral    TaskType = "general"
)

// TaskStatus represents the dashboard column a task sits in
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Priority bounds; 4 is most urgent
const (
	PriorityMin = 1
	PriorityMax = 4
)

// Task represents an actionable item extracted from email or created manually.
// The (user_id, email_fingerprint, title) unique index is the real duplicate
// guard for the sync pipeline's bulk insert.
type Task struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"index;not null;uniqueIndex:idx_tasks_user_fp_title"`
	EmailFingerprint string     `json:"email_fingerprint,omitempty" gorm:"index;uniqueIndex:idx_tasks_user_fp_title"`
	Title            string     `json:"title" gorm:"not null;uniqueIndex:idx_tasks_user_fp_title"`
	Details          string     `json:"details,omitempty"`
	Priority         int        `json:"priority" gorm:"default:2"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	TaskType         TaskType   `json:"task_type" gorm:"default:general"`
	Company          string     `json:"company,omitempty"`
	Role             string     `json:"role,omitempty"`
	Links            []string   `json:"links,omitempty" gorm:"serializer:json"`
	Status           TaskStatus `json:"status" gorm:"default:todo"`
	ReminderSent     bool       `json:"reminder_sent" gorm:"default:false"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ClampPriority forces a priority into [PriorityMin, PriorityMax]
func ClampPriority(p int) int {
	if p < PriorityMin {
		return PriorityMin
	}
	if p > PriorityMax {
		return PriorityMax
	}
	return p
}

// ValidTaskType maps unknown extractor output to the general bucket
func ValidTaskType(t string) TaskType {
	switch TaskType(t) {
	case TaskTypeInterview, TaskTypeMeeting, TaskTypeAssignment, TaskTypeGeneral:
		return TaskType(t)
	default:
		return TaskTypeGeneral
	}
}

// ValidStatus reports whether s is a known dashboard status
func ValidStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}
