// Package store persists the backend's prompt table, user-context documents
// and conversation log.
package store

import (
	"context"
	"time"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
)

// PromptRepository holds the server-side system prompt per recipe.
type PromptRepository interface {
	// GetPrompt returns the prompt for recipeID; ok is false when none is stored.
	GetPrompt(ctx context.Context, recipeID string) (prompt string, ok bool, err error)
	PutPrompt(ctx context.Context, recipeID, prompt string) error
}

// UserContextRepository holds one context document per user.
type UserContextRepository interface {
	// GetUserContext returns the stored record; ok is false when none exists.
	GetUserContext(ctx context.Context, userID string) (rec usercontext.Record, ok bool, err error)
	// SaveUserContext overwrites the user's record (last write wins).
	SaveUserContext(ctx context.Context, userID string, uc usercontext.UserContext) error
}

// ConversationRepository appends conversation log records.
type ConversationRepository interface {
	AddConversation(ctx context.Context, conv Conversation) error
}

// Repository is the full backend persistence surface.
type Repository interface {
	PromptRepository
	UserContextRepository
	ConversationRepository
	Close() error
}

// Conversation is one logged exchange: the history sent plus the reply.
type Conversation struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	RecipeID  string      `json:"recipeId"`
	Messages  []chat.Wire `json:"messages"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SeedPrompts stores every prompt that is not present yet.
func SeedPrompts(ctx context.Context, repo PromptRepository, prompts map[string]string) (int, error) {
	seeded := 0
	for id, prompt := range prompts {
		_, ok, err := repo.GetPrompt(ctx, id)
		if err != nil {
			return seeded, err
		}
		if ok {
			continue
		}
		if err := repo.PutPrompt(ctx, id, prompt); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
