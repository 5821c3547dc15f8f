package domain

import (
	"time"

	"prepmail-backend/pkg/ai"
)

// InterviewPrep holds generated practice questions for an interview task
type InterviewPrep struct {
	ID            string                 `json:"id" gorm:"primaryKey"`
	TaskID        string                 `json:"task_id" gorm:"uniqueIndex;not null"`
	UserID        string                 `json:"user_id" gorm:"index;not null"`
	Company       string                 `json:"company,omitempty"`
	Role          string                 `json:"role,omitempty"`
	Style         string                 `json:"style,omitempty"`
	Questions     []ai.InterviewQuestion `json:"questions" gorm:"serializer:json"`
	PrepScheduled bool                   `json:"prep_scheduled" gorm:"default:false"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}
