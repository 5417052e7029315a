package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterClient_Generate(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "Yes, you qualify."}}},
		})
	}))
	defer server.Close()

	client := NewOpenRouterClientWithEndpoint("test-key", server.URL)
	history := []Turn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
		{Role: "system", Content: "should be dropped"},
	}

	answer, err := client.Generate(context.Background(), "you are a loan assistant", history, "am I eligible?")
	require.NoError(t, err)
	assert.Equal(t, "Yes, you qualify.", answer)

	assert.Equal(t, openRouterModel, captured.Model)
	assert.Equal(t, MaxOutputTokens, captured.MaxTokens)
	assert.InDelta(t, Temperature, captured.Temperature, 0.001)

	require.Len(t, captured.Messages, 4, "system + two history turns + new message; foreign roles dropped")
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "you are a loan assistant", captured.Messages[0].Content)
	assert.Equal(t, chatMessage{Role: "user", Content: "earlier question"}, captured.Messages[1])
	assert.Equal(t, chatMessage{Role: "assistant", Content: "earlier answer"}, captured.Messages[2])
	assert.Equal(t, chatMessage{Role: "user", Content: "am I eligible?"}, captured.Messages[3])
}

func TestOpenRouterClient_RateLimitStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenRouterClientWithEndpoint("test-key", server.URL)
	_, err := client.Generate(context.Background(), "ctx", nil, "question")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestOpenRouterClient_RateLimitInBody(t *testing.T) {
	// OpenRouter reports free-tier throttling inside a 200 body.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "code": 429}}`))
	}))
	defer server.Close()

	client := NewOpenRouterClientWithEndpoint("test-key", server.URL)
	_, err := client.Generate(context.Background(), "ctx", nil, "question")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestOpenRouterClient_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewOpenRouterClientWithEndpoint("test-key", server.URL)
	_, err := client.Generate(context.Background(), "ctx", nil, "question")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited, "non-429 failures are generic errors")
}

func TestOpenRouterClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewOpenRouterClientWithEndpoint("test-key", server.URL)
	_, err := client.Generate(context.Background(), "ctx", nil, "question")
	assert.Error(t, err)
}
