// Package history reshapes an application transcript into the strict
// user/model alternation that generative model APIs expect.
package history

import (
	"errors"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
)

var (
	ErrEmptyHistory = errors.New("message history is empty")
	ErrNoUserTurn   = errors.New("message history must end with a user message")
	ErrUnknownRole  = errors.New("message history contains an unknown role")
)

// ProviderRole is the role vocabulary of the model provider.
type ProviderRole string

const (
	ProviderUser  ProviderRole = "user"
	ProviderModel ProviderRole = "model"
)

// ProviderRoleOf maps the application role set onto the provider's. ok is
// false for roles outside the closed set.
func ProviderRoleOf(r chat.Role) (role ProviderRole, ok bool) {
	switch r {
	case chat.User:
		return ProviderUser, true
	case chat.Assistant:
		return ProviderModel, true
	default:
		return "", false
	}
}

// Turn is one provider-ready history entry.
type Turn struct {
	Role ProviderRole
	Text string
}

// ToProviderHistory splits messages into the prior history and the newest user
// turn. The returned history starts with a user turn, alternates strictly and
// ends on a model turn (or is empty).
func ToProviderHistory(messages []chat.Message) ([]Turn, chat.Message, error) {
	if len(messages) == 0 {
		return nil, chat.Message{}, ErrEmptyHistory
	}

	for _, msg := range messages {
		if !msg.Role.Valid() {
			return nil, chat.Message{}, ErrUnknownRole
		}
	}

	current := messages[len(messages)-1]
	if current.Role != chat.User {
		return nil, chat.Message{}, ErrNoUserTurn
	}

	prior := messages[:len(messages)-1]
	first := -1
	for i, msg := range prior {
		if msg.Role == chat.User {
			first = i
			break
		}
	}
	if first == -1 {
		return []Turn{}, current, nil
	}

	turns := make([]Turn, 0, len(prior)-first)
	expected := chat.User
	for _, msg := range prior[first:] {
		if msg.Role != expected {
			continue
		}
		role, _ := ProviderRoleOf(msg.Role)
		turns = append(turns, Turn{Role: role, Text: msg.Content})
		if expected == chat.User {
			expected = chat.Assistant
		} else {
			expected = chat.User
		}
	}

	if len(turns) > 0 && turns[len(turns)-1].Role == ProviderUser {
		turns = turns[:len(turns)-1]
	}

	return turns, current, nil
}

// Trim keeps at most limit of the newest turns while preserving a user-first
// start. A non-positive limit leaves turns untouched.
func Trim(turns []Turn, limit int) []Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	trimmed := turns[len(turns)-limit:]
	if len(trimmed) > 0 && trimmed[0].Role == ProviderModel {
		trimmed = trimmed[1:]
	}
	return trimmed
}
