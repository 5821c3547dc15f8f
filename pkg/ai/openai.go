package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIService implements ExtractorService using the OpenAI chat API
type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService creates a new OpenAI service
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// ExtractTasks implements ExtractorService
func (s *OpenAIService) ExtractTasks(ctx context.Context, emailText string) (*ExtractionResult, error) {
	text, err := s.complete(ctx, extractionPrompt(emailText))
	if err != nil {
		return nil, err
	}
	return decodeExtraction(text)
}

// GenerateInterviewQuestions implements ExtractorService
func (s *OpenAIService) GenerateInterviewQuestions(ctx context.Context, company, role, style string) ([]InterviewQuestion, error) {
	text, err := s.complete(ctx, interviewPrompt(company, role, style))
	if err != nil {
		return nil, err
	}
	return decodeQuestions(text)
}

func (s *OpenAIService) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
