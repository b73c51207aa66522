package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/guidr-app/guidr/backend/internal/config"
	"github.com/guidr-app/guidr/backend/internal/service/history"
)

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	models      *genai.Models
	model       string
	temperature *float32
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*GeminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	var temperature *float32
	if cfg.Temperature != nil {
		temperature = genai.Ptr(float32(*cfg.Temperature))
	}

	return &GeminiGenerator{
		models:      client.Models,
		model:       cfg.GeminiModel,
		temperature: temperature,
	}, nil
}

// Generate sends the history plus the new user turn in one request.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	result, err := g.models.GenerateContent(ctx, g.model, BuildContents(req), g.contentConfig(req))
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiGenerator) contentConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{Temperature: g.temperature}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

// BuildContents converts a request into genai contents ending with the new user turn.
func BuildContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, genai.NewContentFromText(turn.Text, genaiRole(turn.Role)))
	}
	return append(contents, genai.NewContentFromText(req.NewMessage, genai.RoleUser))
}

func genaiRole(role history.ProviderRole) genai.Role {
	if role == history.ProviderModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
