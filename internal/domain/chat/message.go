// Package chat holds the per-recipe conversation model used by the
// assistant. Messages are append-only and scoped to one recipe.
package chat

import (
	"errors"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate validates the role
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	}
	return errors.New("invalid chat role")
}

// Message is one turn in a recipe's conversation. Assistant turns may
// carry a structured recipe proposal alongside the display text; the
// raw proposal JSON is kept so a proposal can be applied later.
type Message struct {
	ID           int64
	RecipeID     int64
	Role         Role
	Content      string
	ProposalJSON string
	CreatedAt    time.Time
}

// NewMessage creates a validated conversation turn
func NewMessage(recipeID int64, role Role, content string) (*Message, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, errors.New("message content is required")
	}
	return &Message{
		RecipeID:  recipeID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}
