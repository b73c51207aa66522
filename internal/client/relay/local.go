package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/internal/service/ai"
	"github.com/guidr-app/guidr/backend/internal/service/history"
)

// ErrNoModel is returned by the direct tier when no model is configured.
var ErrNoModel = errors.New("no model configured for the direct tier")

// ContextSource exposes the locally stored context blob.
type ContextSource interface {
	Raw(ctx context.Context) (string, bool, error)
}

// DirectCoach calls the model from the device with the local prompt table.
type DirectCoach struct {
	recipes   recipe.Store
	contexts  ContextSource
	generator ai.Generator
}

// NewDirectCoach creates the direct tier. contexts may be nil.
func NewDirectCoach(recipes recipe.Store, contexts ContextSource, generator ai.Generator) *DirectCoach {
	return &DirectCoach{recipes: recipes, contexts: contexts, generator: generator}
}

// Reply implements LocalCoach.
func (c *DirectCoach) Reply(ctx context.Context, recipeID string, messages []chat.Message) (string, error) {
	if c.generator == nil {
		return "", ErrNoModel
	}

	prompt := recipe.DefaultSystemPrompt
	if rec, ok := c.recipes.FindByID(recipeID); ok {
		prompt = rec.Prompt()
	}
	if c.contexts != nil {
		// an unreadable blob only costs personalisation
		if raw, ok, err := c.contexts.Raw(ctx); err == nil && ok {
			prompt += usercontext.LocalPromptSuffix(raw)
		}
	}

	turns, current, err := history.ToProviderHistory(messages)
	if err != nil {
		return "", fmt.Errorf("prepare history: %w", err)
	}
	return c.generator.Generate(ctx, ai.Request{
		SystemInstruction: prompt,
		History:           turns,
		NewMessage:        current.Content,
	})
}
