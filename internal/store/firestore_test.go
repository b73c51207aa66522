package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
)

func TestUserContextFieldsAreTopLevel(t *testing.T) {
	fields := userContextFields(usercontext.UserContext{QuarterlyGoal: "Ship", WeeklySentiment: "ok"})
	assert.Equal(t, "Ship", fields["quarterlyGoal"])
	assert.Equal(t, "ok", fields["weeklySentiment"])
	assert.Equal(t, firestore.ServerTimestamp, fields["updatedAt"])
	assert.NotContains(t, fields, "context")
}

func TestConversationFromRecord(t *testing.T) {
	doc := conversationFromRecord(Conversation{
		UserID:   "u1",
		RecipeID: "weekly_review_v1",
		Messages: []chat.Wire{{Role: chat.User, Content: "Hi"}, {Role: chat.Assistant, Content: "Hello"}},
	})
	assert.Equal(t, []messageEntry{{Role: "user", Content: "Hi"}, {Role: "assistant", Content: "Hello"}}, doc.Messages)
	assert.True(t, doc.Timestamp.IsZero())
}

// newEmulatorStore connects to a running Firestore emulator.
func newEmulatorStore(t *testing.T) *FirestoreStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	s, err := NewFirestore(context.Background(), "guidr-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFirestoreReadsExistingDocuments(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	recipeID := "recipe-" + uuid.NewString()
	userID := "user-" + uuid.NewString()

	_, err := s.client.Collection(promptsCollection).Doc(recipeID).Set(ctx, map[string]any{"content": "You are a coach."})
	require.NoError(t, err)
	_, err = s.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]any{
		"quarterlyGoal":   "Launch v2",
		"weeklySentiment": "stretched",
		"displayName":     "Sam",
	})
	require.NoError(t, err)

	prompt, ok, err := s.GetPrompt(ctx, recipeID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "You are a coach.", prompt)

	rec, ok, err := s.GetUserContext(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, usercontext.UserContext{QuarterlyGoal: "Launch v2", WeeklySentiment: "stretched"}, rec.Context)
}

func TestFirestoreRoundTrip(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	recipeID := "recipe-" + uuid.NewString()
	userID := "user-" + uuid.NewString()

	_, ok, err := s.GetPrompt(ctx, recipeID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutPrompt(ctx, recipeID, "prompt"))
	prompt, ok, err := s.GetPrompt(ctx, recipeID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "prompt", prompt)

	_, ok, err = s.GetUserContext(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]any{"displayName": "Sam"})
	require.NoError(t, err)
	uc := usercontext.UserContext{QuarterlyGoal: "g", WeeklySentiment: "s"}
	require.NoError(t, s.SaveUserContext(ctx, userID, uc))

	snap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	require.NoError(t, err)
	data := snap.Data()
	assert.Equal(t, "g", data["quarterlyGoal"])
	assert.Equal(t, "Sam", data["displayName"])
	assert.Contains(t, data, "updatedAt")

	rec, ok, err := s.GetUserContext(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uc, rec.Context)
	assert.False(t, rec.UpdatedAt.IsZero())

	convID := uuid.NewString()
	require.NoError(t, s.AddConversation(ctx, Conversation{
		ID:       convID,
		UserID:   userID,
		RecipeID: recipeID,
		Messages: []chat.Wire{{Role: chat.User, Content: "Hi"}, {Role: chat.Assistant, Content: "Hello"}},
	}))
	snap, err = s.client.Collection(conversationsCollection).Doc(convID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, snap.Data()["userId"])
	assert.Contains(t, snap.Data(), "timestamp")
}
