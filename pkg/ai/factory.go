package ai

import "fmt"

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "openai" or "auto"

	GeminiAPIKey string

	OpenAIAPIKey string
	OpenAIModel  string
}

// NewExtractorService creates an ExtractorService based on the config.
// This is the factory function - switch AI provider by changing
// config.Provider.
func NewExtractorService(cfg Config) (ExtractorService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiService(cfg.GeminiAPIKey), nil

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil

	default:
		// Auto: both keys -> fallback routing, otherwise whichever is set
		if cfg.GeminiAPIKey != "" && cfg.OpenAIAPIKey != "" {
			return NewFallbackService(
				NewGeminiService(cfg.GeminiAPIKey),
				NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel),
			), nil
		}
		if cfg.GeminiAPIKey != "" {
			return NewGeminiService(cfg.GeminiAPIKey), nil
		}
		if cfg.OpenAIAPIKey != "" {
			return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
		}
		return nil, fmt.Errorf("no AI provider configured")
	}
}
