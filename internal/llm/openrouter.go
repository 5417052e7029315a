package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel    = "meta-llama/llama-3.3-70b-instruct:free"
)

// OpenRouterClient talks to OpenRouter's OpenAI-compatible chat completions
// endpoint. This is the primary provider.
type OpenRouterClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func NewOpenRouterClient(apiKey string) *OpenRouterClient {
	return &OpenRouterClient{
		endpoint: openRouterEndpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // Free-tier completions can be slow
		},
	}
}

// NewOpenRouterClientWithEndpoint is used by tests to point the client at a
// local server.
func NewOpenRouterClientWithEndpoint(apiKey, endpoint string) *OpenRouterClient {
	c := NewOpenRouterClient(apiKey)
	c.endpoint = endpoint
	return c
}

func (c *OpenRouterClient) Generate(ctx context.Context, systemContext string, history []Turn, message string) (string, error) {
	messages := []chatMessage{{Role: "system", Content: systemContext}}
	for _, turn := range history {
		if turn.Role != "user" && turn.Role != "assistant" {
			continue // Drop anything that isn't a conversation turn
		}
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	reqBody := chatCompletionRequest{
		Model:       openRouterModel,
		Messages:    messages,
		MaxTokens:   MaxOutputTokens,
		Temperature: Temperature,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", "https://loanpicks.com")
	req.Header.Set("X-Title", "Loan Picks Dashboard")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter returned status: %s", resp.Status)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	// OpenRouter sometimes reports errors inside a 200 body
	if completion.Error != nil {
		if completion.Error.Code == http.StatusTooManyRequests || strings.Contains(completion.Error.Message, "429") {
			return "", ErrRateLimited
		}
		return "", fmt.Errorf("openrouter error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	answer := completion.Choices[0].Message.Content
	if answer == "" {
		return "I couldn't generate a response. Please try again.", nil
	}
	return answer, nil
}

func (c *OpenRouterClient) Close() {}
