package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/config"
	"github.com/guidr-app/guidr/backend/internal/service/history"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Request is one model invocation.
type Request struct {
	SystemInstruction string
	History           []history.Turn
	NewMessage        string
}

// Generator produces the next assistant reply.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// NewGenerator builds the generator selected by cfg.Provider. It returns
// (nil, nil) when the provider has no credentials so callers can report the
// missing key on use.
func NewGenerator(ctx context.Context, cfg config.AIConfig, log zerolog.Logger) (Generator, error) {
	if !cfg.Enabled() {
		log.Warn().Str("provider", cfg.Provider).Msg("model credentials not configured")
		return nil, nil
	}

	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case config.ProviderArk:
		gen, err = NewArkGenerator(ctx, cfg)
	default:
		gen, err = NewGeminiGenerator(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.Provider, err)
	}

	return WithHistoryLimit(gen, cfg.HistoryLimit), nil
}

// WithHistoryLimit trims request history to the newest limit turns.
func WithHistoryLimit(gen Generator, limit int) Generator {
	if limit <= 0 {
		return gen
	}
	return GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		req.History = history.Trim(req.History, limit)
		return gen.Generate(ctx, req)
	})
}
