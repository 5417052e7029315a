// Package chatstate models the chat panel's UI state as an explicit value
// with reducer-style transitions. Front ends apply actions through Apply
// instead of mutating a shared singleton, which keeps every transition
// testable in isolation.
package chatstate

import (
	"time"

	"loanpicks.com/loan-picks/internal/store"
)

// Message is one rendered chat bubble.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the full chat panel state. The zero value is a closed panel.
type State struct {
	Open          bool
	ActiveProduct *store.Product
	Messages      []Message
	Loading       bool
}

// Action is a state transition. Apply is pure: it returns the next state and
// never mutates the previous one.
type Action interface {
	apply(State) State
}

// Apply runs one transition.
func Apply(s State, a Action) State {
	return a.apply(s)
}

// OpenChat opens the panel for a product. Switching to a different product
// clears the message list; reopening for the same product keeps it.
type OpenChat struct {
	Product *store.Product
}

func (a OpenChat) apply(s State) State {
	next := s
	next.Open = true
	if s.ActiveProduct == nil || a.Product == nil || s.ActiveProduct.ID != a.Product.ID {
		next.Messages = nil
	}
	next.ActiveProduct = a.Product
	return next
}

// CloseChat hides the panel but keeps the conversation.
type CloseChat struct{}

func (CloseChat) apply(s State) State {
	next := s
	next.Open = false
	return next
}

// AddMessage appends one message.
type AddMessage struct {
	Message Message
}

func (a AddMessage) apply(s State) State {
	next := s
	next.Messages = make([]Message, len(s.Messages), len(s.Messages)+1)
	copy(next.Messages, s.Messages)
	next.Messages = append(next.Messages, a.Message)
	return next
}

// SetLoading toggles the waiting-for-assistant indicator.
type SetLoading struct {
	Loading bool
}

func (a SetLoading) apply(s State) State {
	next := s
	next.Loading = a.Loading
	return next
}
