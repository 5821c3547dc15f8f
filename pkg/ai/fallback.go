package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes between two providers with failover:
// Gemini first (cheaper for bulk extraction), OpenAI on quota or
// connection errors.
type FallbackService struct {
	primary   ExtractorService
	secondary ExtractorService
}

// NewFallbackService creates a fallback service with both providers
func NewFallbackService(primary, secondary ExtractorService) *FallbackService {
	return &FallbackService{
		primary:   primary,
		secondary: secondary,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// ExtractTasks tries the primary provider first, falls back on quota
// or connection errors
func (f *FallbackService) ExtractTasks(ctx context.Context, emailText string) (*ExtractionResult, error) {
	if f.primary != nil {
		result, err := f.primary.ExtractTasks(ctx, emailText)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) || isConnectionError(err) {
			log.Printf("[AI] Primary provider unavailable: %v, falling back", err)
		} else {
			log.Printf("[AI] Primary provider error: %v, falling back", err)
		}
	}

	if f.secondary != nil {
		result, err := f.secondary.ExtractTasks(ctx, emailText)
		if err != nil {
			return nil, fmt.Errorf("fallback task extraction failed: %w", err)
		}
		return result, nil
	}

	return nil, fmt.Errorf("no AI provider available for task extraction")
}

// GenerateInterviewQuestions mirrors the ExtractTasks routing
func (f *FallbackService) GenerateInterviewQuestions(ctx context.Context, company, role, style string) ([]InterviewQuestion, error) {
	if f.primary != nil {
		result, err := f.primary.GenerateInterviewQuestions(ctx, company, role, style)
		if err == nil {
			return result, nil
		}
		log.Printf("[AI] Primary provider error: %v, falling back", err)
	}

	if f.secondary != nil {
		result, err := f.secondary.GenerateInterviewQuestions(ctx, company, role, style)
		if err != nil {
			return nil, fmt.Errorf("fallback question generation failed: %w", err)
		}
		return result, nil
	}

	return nil, fmt.Errorf("no AI provider available for question generation")
}
