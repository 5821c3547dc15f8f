package ai

import "context"

// TaskCandidate is one task extracted from an email. Deadline is the
// raw model output (RFC3339 expected); validation happens in the sync
// pipeline, not here.
type TaskCandidate struct {
	Title    string   `json:"title"`
	Details  string   `json:"details,omitempty"`
	Priority int      `json:"priority"`
	Deadline string   `json:"deadline,omitempty"`
	Type     string   `json:"type"`
	Company  string   `json:"company,omitempty"`
	Role     string   `json:"role,omitempty"`
	Links    []string `json:"links,omitempty"`
}

// ExtractionResult is the structured answer for one email
type ExtractionResult struct {
	IsActionable bool            `json:"is_actionable"`
	Tasks        []TaskCandidate `json:"tasks"`
}

// InterviewQuestion is one generated prep question
type InterviewQuestion struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

// ExtractorService is the interface for LLM-backed extraction and
// interview question generation. Implement it to add new providers.
type ExtractorService interface {
	ExtractTasks(ctx context.Context, emailText string) (*ExtractionResult, error)
	GenerateInterviewQuestions(ctx context.Context, company, role, style string) ([]InterviewQuestion, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOpenAI ProviderType = "openai"
	ProviderAuto   ProviderType = "auto"
)
