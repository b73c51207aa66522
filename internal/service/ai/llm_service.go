package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/guidr-app/guidr/backend/internal/config"
	"github.com/guidr-app/guidr/backend/internal/service/history"
)

// ArkGenerator runs a system/history/query prompt chain against an eino chat model.
type ArkGenerator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkGenerator creates an Ark model from cfg and wraps it in a chain.
func NewArkGenerator(ctx context.Context, cfg config.AIConfig) (*ArkGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewChainGenerator(ctx, chatModel)
}

// NewChainGenerator compiles the prompt chain around any eino chat model.
func NewChainGenerator(ctx context.Context, chatModel model.ChatModel) (*ArkGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkGenerator{chain: runnable}, nil
}

// Generate invokes the chain once.
func (g *ArkGenerator) Generate(ctx context.Context, req Request) (string, error) {
	response, err := g.chain.Invoke(ctx, buildChainInput(req))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildChainInput(req Request) map[string]any {
	return map[string]any{
		"system":  req.SystemInstruction,
		"history": buildHistoryMessages(req.History),
		"query":   req.NewMessage,
	}
}

func buildHistoryMessages(turns []history.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case history.ProviderUser:
			messages = append(messages, schema.UserMessage(turn.Text))
		case history.ProviderModel:
			messages = append(messages, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return messages
}
