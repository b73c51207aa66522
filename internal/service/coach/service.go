// Package coach implements the server side of the coachChat and
// saveUserContext callables.
package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/metrics"
	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/internal/service/ai"
	"github.com/guidr-app/guidr/backend/internal/service/entitlement"
	"github.com/guidr-app/guidr/backend/internal/service/history"
	"github.com/guidr-app/guidr/backend/internal/store"
	"github.com/guidr-app/guidr/backend/pkg/callable"
)

const logWriteTimeout = 10 * time.Second

// Options tunes a Service.
type Options struct {
	// EnforceEntitlements rejects premium recipes for users without premium.
	EnforceEntitlements bool
}

// Service answers coachChat and saveUserContext for an authenticated user.
type Service struct {
	recipes      recipe.Store
	repo         store.Repository
	generator    ai.Generator
	entitlements *entitlement.Checker
	opts         Options
	log          zerolog.Logger

	pending sync.WaitGroup
}

// NewService wires a coach service. generator may be nil, in which case
// coachChat fails with FAILED_PRECONDITION. entitlements may be nil when
// enforcement is off.
func NewService(recipes recipe.Store, repo store.Repository, generator ai.Generator, entitlements *entitlement.Checker, opts Options, log zerolog.Logger) *Service {
	return &Service{
		recipes:      recipes,
		repo:         repo,
		generator:    generator,
		entitlements: entitlements,
		opts:         opts,
		log:          log.With().Str("component", "coach").Logger(),
	}
}

// CoachChat produces the next coach reply for req.MessageHistory.
func (s *Service) CoachChat(ctx context.Context, userID string, req callable.CoachChatRequest) (string, error) {
	if userID == "" {
		return "", callable.Errorf(callable.Unauthenticated, "Authentication required.")
	}

	if req.LegacyGuidrID != "" {
		return "", callable.Errorf(callable.InvalidArgument, "guidrId is no longer accepted; send recipeId.")
	}
	recipeID := strings.TrimSpace(req.RecipeID)
	if recipeID == "" {
		return "", callable.Errorf(callable.InvalidArgument, "Missing recipeId.")
	}
	rec, ok := s.recipes.FindByID(recipeID)
	if !ok {
		return "", callable.Errorf(callable.InvalidArgument, "Unknown recipeId %q.", recipeID)
	}

	prompt, found, err := s.repo.GetPrompt(ctx, recipeID)
	if err != nil {
		s.log.Error().Err(err).Str("recipe_id", recipeID).Msg("prompt lookup failed")
		return "", callable.Errorf(callable.Internal, "AI Service currently unavailable.")
	}
	if !found || strings.TrimSpace(prompt) == "" {
		return "", callable.Errorf(callable.NotFound, "Recipe prompt not found.")
	}

	if s.opts.EnforceEntitlements && s.entitlements != nil {
		if err := s.entitlements.Authorize(ctx, userID, rec); errors.Is(err, entitlement.ErrPaywall) {
			return "", callable.Errorf(callable.PermissionDenied, "Premium subscription required.")
		}
	}

	systemInstruction := prompt
	if uc, ok, err := s.repo.GetUserContext(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("user context fetch failed, continuing without it")
	} else if ok {
		systemInstruction += uc.Context.PromptSuffix()
	}

	if s.generator == nil {
		return "", callable.Errorf(callable.FailedPrecondition, "AI API key not configured on server.")
	}

	messages := chat.FromWire(req.MessageHistory)
	turns, current, err := history.ToProviderHistory(messages)
	if err != nil {
		return "", callable.Errorf(callable.InvalidArgument, "Invalid messageHistory: %v", err)
	}

	reply, err := s.generator.Generate(ctx, ai.Request{
		SystemInstruction: systemInstruction,
		History:           turns,
		NewMessage:        current.Content,
	})
	if err != nil {
		s.log.Error().Err(err).Str("recipe_id", recipeID).Msg("model call failed")
		return "", callable.Errorf(callable.Internal, "AI Service currently unavailable.")
	}

	s.logConversation(userID, recipeID, req.MessageHistory, reply)
	return reply, nil
}

// logConversation stores history plus reply without delaying the response.
func (s *Service) logConversation(userID, recipeID string, hist []chat.Wire, reply string) {
	conv := store.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		RecipeID:  recipeID,
		Messages:  append(append([]chat.Wire(nil), hist...), chat.Wire{Role: chat.Assistant, Content: reply}),
		CreatedAt: time.Now().UTC(),
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
		defer cancel()
		if err := s.repo.AddConversation(ctx, conv); err != nil {
			metrics.ConversationLogFailures.Inc()
			s.log.Error().Err(err).Str("conversation_id", conv.ID).Msg("failed to log conversation")
		}
	}()
}

// SaveUserContext overwrites the caller's context document.
func (s *Service) SaveUserContext(ctx context.Context, userID string, uc usercontext.UserContext) error {
	if userID == "" {
		return callable.Errorf(callable.Unauthenticated, "Authentication required.")
	}
	if err := s.repo.SaveUserContext(ctx, userID, uc); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to save user context")
		return callable.Errorf(callable.Internal, "Failed to save context.")
	}
	return nil
}

// Close waits for in-flight conversation log writes.
func (s *Service) Close() {
	s.pending.Wait()
}
