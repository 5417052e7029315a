package llm

import (
	"context"
	"fmt"
	"log"

	"loanpicks.com/loan-picks/internal/config"
)

// MockClient stands in when no provider credential is configured. It never
// touches the network; this is a documented fallback, not an error path.
type MockClient struct{}

func (MockClient) Generate(_ context.Context, _ string, _ []Turn, message string) (string, error) {
	return fmt.Sprintf("[MOCK AI] I clearly see you are asking about %q. However, the API key is missing. Please check your .env file.", message), nil
}

func (MockClient) Close() {}

// FromConfig selects the provider: OpenRouter when its key is present,
// Gemini as the alternate, the mock otherwise.
func FromConfig(cfg config.Config) (Generator, error) {
	switch {
	case cfg.OpenRouterAPIKey != "":
		log.Println("Assistant provider: OpenRouter")
		return NewOpenRouterClient(cfg.OpenRouterAPIKey), nil
	case cfg.GeminiAPIKey != "":
		log.Println("Assistant provider: Gemini")
		return NewGeminiClient(cfg.GeminiAPIKey)
	default:
		log.Println("Assistant provider: mock (no API key configured)")
		return MockClient{}, nil
	}
}
