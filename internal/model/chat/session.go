package chat

import (
	"time"

	"github.com/google/uuid"
)

// Transcript is the ordered message sequence of one chat session.
type Transcript struct {
	RecipeID string
	messages []Message
}

// NewTranscript starts a transcript with the synthetic assistant greeting.
func NewTranscript(recipeID, greeting string) *Transcript {
	t := &Transcript{RecipeID: recipeID}
	t.Reset(greeting)
	return t
}

// Append records a new message and returns it.
func (t *Transcript) Append(role Role, content string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Reset discards the transcript and re-seeds the greeting.
func (t *Transcript) Reset(greeting string) {
	t.messages = make([]Message, 0, 16)
	t.Append(Assistant, greeting)
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	copied := make([]Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// Len reports the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}
