// Package session holds one chat with a coach recipe on the client.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
)

var (
	// ErrUnknownRecipe is returned by Open for ids outside the catalog.
	ErrUnknownRecipe = errors.New("unknown recipe")
	// ErrBusy is returned when a send is already in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrCleared is returned when the session was cleared while a reply was pending.
	ErrCleared = errors.New("session was cleared")
)

// Gate decides whether the user may enter a recipe.
type Gate interface {
	Authorize(ctx context.Context, userID string, r recipe.Recipe) error
}

// Sender relays a transcript to the coach.
type Sender interface {
	Send(ctx context.Context, recipeID string, history []chat.Message, isNewSession bool) (string, error)
}

// Session is an open chat. It is safe for concurrent use; at most one Send
// runs at a time.
type Session struct {
	recipe recipe.Recipe
	relay  Sender

	mu         sync.Mutex
	transcript *chat.Transcript
	started    bool
	sending    bool
	generation int
}

// Open resolves recipeID, runs the entitlement gate and seeds the greeting.
// The relay is not touched when the gate refuses.
func Open(ctx context.Context, recipes recipe.Store, gate Gate, relay Sender, userID, recipeID string) (*Session, error) {
	rec, ok := recipes.FindByID(recipeID)
	if !ok {
		return nil, ErrUnknownRecipe
	}
	if gate != nil {
		if err := gate.Authorize(ctx, userID, rec); err != nil {
			return nil, err
		}
	}
	return &Session{
		recipe:     rec,
		relay:      relay,
		transcript: chat.NewTranscript(rec.ID, rec.OpeningLine()),
	}, nil
}

// Recipe returns the recipe the session runs.
func (s *Session) Recipe() recipe.Recipe {
	return s.recipe
}

// Send appends text as a user message and asks the coach for a reply. On
// failure the user message stays in the transcript and no reply is added.
func (s *Session) Send(ctx context.Context, text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	s.sending = true
	s.transcript.Append(chat.User, text)
	history := s.transcript.Messages()
	isNewSession := !s.started
	generation := s.generation
	s.mu.Unlock()

	reply, err := s.relay.Send(ctx, s.recipe.ID, history, isNewSession)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false
	if err != nil {
		return chat.Message{}, err
	}
	if generation != s.generation {
		return chat.Message{}, ErrCleared
	}
	msg := s.transcript.Append(chat.Assistant, reply)
	s.started = true
	return msg, nil
}

// Clear resets the transcript to the greeting and starts a new session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Reset(s.recipe.OpeningLine())
	s.started = false
	s.generation++
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Started reports whether the coach has replied since open or the last Clear.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
