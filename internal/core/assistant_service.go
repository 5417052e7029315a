package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"loanpicks.com/loan-picks/internal/catalog"
	"loanpicks.com/loan-picks/internal/llm"
	"loanpicks.com/loan-picks/internal/store"
)

// AssistantService answers questions about a single product, grounding the
// provider call in that product's record plus the asking user's profile, and
// keeps the per-(user, product) conversation log.
type AssistantService struct {
	dbStore   *store.SQLiteStore
	generator llm.Generator
}

func NewAssistantService(db *store.SQLiteStore, generator llm.Generator) *AssistantService {
	return &AssistantService{dbStore: db, generator: generator}
}

// Ask runs one conversation turn. userID is empty for anonymous visitors,
// who get answers against the zero profile and no saved history. Persistence
// is best-effort: a failed save is logged and the answer still returned.
func (s *AssistantService) Ask(ctx context.Context, userID, productID, message string, history []llm.Turn) (string, error) {
	product, err := s.dbStore.GetProductByID(productID)
	if err != nil {
		return "", fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return "", ErrProductNotFound
	}

	var user *store.User
	if userID != "" {
		user, err = s.dbStore.GetUserByID(userID)
		if err != nil {
			log.Printf("Failed to load user %s for assistant context, using empty profile: %v", userID, err)
			user = nil
		}
	}

	profile := catalog.Profile{EmploymentType: "Not specified"}
	if p := profileOf(user); p != nil {
		profile = *p
	}

	answer, err := s.generator.Generate(ctx, buildSystemContext(product, profile), history, message)
	if err != nil {
		return "", err
	}

	if user != nil {
		now := time.Now()
		turns := []store.Turn{
			{Role: "user", Content: message, CreatedAt: now},
			{Role: "assistant", Content: answer, CreatedAt: now},
		}
		if _, err := s.dbStore.AppendChatTurns(user.ID, productID, turns); err != nil {
			// The user still gets their answer; it just isn't saved.
			log.Printf("Failed to save chat session for user %s, product %s: %v", user.ID, productID, err)
		}
	}

	return answer, nil
}

// History returns the saved conversation for the (user, product) pair in
// order. Anonymous callers, missing sessions and store failures all yield an
// empty history.
func (s *AssistantService) History(userID, productID string) []store.Turn {
	if userID == "" {
		return nil
	}
	session, err := s.dbStore.GetChatSession(userID, productID)
	if err != nil {
		log.Printf("Failed to fetch chat history for user %s, product %s: %v", userID, productID, err)
		return nil
	}
	if session == nil {
		return nil
	}
	return session.Turns
}
