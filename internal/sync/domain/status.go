package domain

import "time"

// Step names surfaced to the client while a sync run progresses
const (
	StepIdle      = "idle"
	StepStarting  = "starting"
	StepFetching  = "fetching emails"
	StepAnalyzing = "analyzing emails"
	StepSaving    = "saving tasks"
	StepCompleted = "completed"
	StepFailed    = "failed"
	StepNoMail    = "no new emails"
)

// SyncStatus is the blackboard record a client polls while a sync run
// is in flight. JSON field names are part of the API contract.
type SyncStatus struct {
	IsProcessing    bool       `json:"isProcessing"`
	Progress        int        `json:"progress"`
	CurrentStep     string     `json:"currentStep"`
	TotalEmails     int        `json:"totalEmails"`
	ProcessedEmails int        `json:"processedEmails"`
	EmailsFailed    int        `json:"emailsFailed"`
	TasksCreated    int        `json:"tasksCreated"`
	LastSync        *time.Time `json:"lastSync,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// Terminal reports whether the status describes a finished run
func (s *SyncStatus) Terminal() bool {
	return !s.IsProcessing
}

// StatusUpdate carries the fields a merge should overwrite. Nil fields
// leave the stored value untouched.
type StatusUpdate struct {
	IsProcessing    *bool
	Progress        *int
	CurrentStep     *string
	TotalEmails     *int
	ProcessedEmails *int
	EmailsFailed    *int
	TasksCreated    *int
	Error           *string
}

// Bool returns a pointer to b for building updates inline
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i for building updates inline
func Int(i int) *int { return &i }

// Str returns a pointer to s for building updates inline
func Str(s string) *string { return &s }
