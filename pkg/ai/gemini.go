package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GeminiService implements ExtractorService using the Gemini REST API
type GeminiService struct {
	ApiKey string
}

// NewGeminiService creates a new Gemini service
func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey}
}

// ExtractTasks implements ExtractorService
func (g *GeminiService) ExtractTasks(ctx context.Context, emailText string) (*ExtractionResult, error) {
	text, err := g.generate(ctx, extractionPrompt(emailText))
	if err != nil {
		return nil, err
	}
	return decodeExtraction(text)
}

// GenerateInterviewQuestions implements ExtractorService
func (g *GeminiService) GenerateInterviewQuestions(ctx context.Context, company, role, style string) ([]InterviewQuestion, error) {
	text, err := g.generate(ctx, interviewPrompt(company, role, style))
	if err != nil {
		return nil, err
	}
	return decodeQuestions(text)
}

// generate calls gemini-2.5-flash and returns the first candidate text
func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
