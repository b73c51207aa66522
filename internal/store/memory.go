package store

import (
	"context"
	"sync"
	"time"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
)

// MemoryStore implements Repository in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	prompts       map[string]string
	contexts      map[string]usercontext.Record
	conversations []Conversation
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		prompts:  make(map[string]string),
		contexts: make(map[string]usercontext.Record),
	}
}

// GetPrompt implements PromptRepository.
func (s *MemoryStore) GetPrompt(_ context.Context, recipeID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.prompts[recipeID]
	return prompt, ok, nil
}

// PutPrompt implements PromptRepository.
func (s *MemoryStore) PutPrompt(_ context.Context, recipeID, prompt string) error {
	s.mu.Lock()
	s.prompts[recipeID] = prompt
	s.mu.Unlock()
	return nil
}

// GetUserContext implements UserContextRepository.
func (s *MemoryStore) GetUserContext(_ context.Context, userID string) (usercontext.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.contexts[userID]
	return rec, ok, nil
}

// SaveUserContext implements UserContextRepository.
func (s *MemoryStore) SaveUserContext(_ context.Context, userID string, uc usercontext.UserContext) error {
	s.mu.Lock()
	s.contexts[userID] = usercontext.Record{UserID: userID, Context: uc, UpdatedAt: time.Now().UTC()}
	s.mu.Unlock()
	return nil
}

// AddConversation implements ConversationRepository.
func (s *MemoryStore) AddConversation(_ context.Context, conv Conversation) error {
	conv.Messages = append([]chat.Wire(nil), conv.Messages...)
	s.mu.Lock()
	s.conversations = append(s.conversations, conv)
	s.mu.Unlock()
	return nil
}

// Conversations returns a copy of the log.
func (s *MemoryStore) Conversations() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Conversation(nil), s.conversations...)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
