package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Role identifies the author of a transcript entry.
type Role int

const (
	User Role = iota + 1
	Assistant
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case User:
		return "user"
	case Assistant:
		return "assistant"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a wire name onto the closed role set.
func ParseRole(raw string) (Role, error) {
	switch raw {
	case "user":
		return User, nil
	case "assistant":
		return Assistant, nil
	default:
		return 0, fmt.Errorf("unknown message role %q", raw)
	}
}

// MarshalJSON encodes the role as its wire name.
func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot encode %s", r)
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON rejects anything outside {user, assistant}.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("message role must be a string: %w", err)
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is one immutable transcript entry.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ErrMissingRole is returned when a wire entry carries no role.
var ErrMissingRole = errors.New("message role is required")

// Wire is the {role, content} shape exchanged with the backend.
type Wire struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UnmarshalJSON requires a role; an absent or null role is an error.
func (w *Wire) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    *Role  `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Role == nil {
		return ErrMissingRole
	}
	w.Role, w.Content = *raw.Role, raw.Content
	return nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == User || r == Assistant
}

// ToWire strips local-only fields from a transcript.
func ToWire(messages []Message) []Wire {
	out := make([]Wire, len(messages))
	for i, m := range messages {
		out[i] = Wire{Role: m.Role, Content: m.Content}
	}
	return out
}

// FromWire lifts wire entries back into messages.
func FromWire(entries []Wire) []Message {
	out := make([]Message, len(entries))
	for i, e := range entries {
		out[i] = Message{Role: e.Role, Content: e.Content}
	}
	return out
}
