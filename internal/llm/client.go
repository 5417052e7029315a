// Package llm abstracts the hosted text-generation providers behind one
// capability interface so the assistant does not care which vendor answers.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited signals an upstream 429. Callers surface it as a retryable
// condition instead of a generic failure.
var ErrRateLimited = errors.New("llm provider rate limit reached")

// Turn is one prior message in the conversation being continued.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Generator produces an assistant reply given the fixed system context, the
// prior turns and the new user message.
type Generator interface {
	Generate(ctx context.Context, systemContext string, history []Turn, message string) (string, error)
	Close()
}

// Generation settings shared by all providers.
const (
	MaxOutputTokens = 300
	Temperature     = 0.7
)
