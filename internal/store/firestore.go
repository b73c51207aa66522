package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
)

// Firestore collection names.
const (
	promptsCollection       = "prompts"
	usersCollection         = "users"
	conversationsCollection = "conversations"
)

// promptDoc is prompts/{recipeId}.
type promptDoc struct {
	Content string `firestore:"content"`
}

// userDoc is users/{uid}. The context fields sit at the top level next to
// whatever else the app keeps on the user.
type userDoc struct {
	QuarterlyGoal   string    `firestore:"quarterlyGoal"`
	WeeklySentiment string    `firestore:"weeklySentiment"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

type conversationDoc struct {
	UserID    string         `firestore:"userId"`
	RecipeID  string         `firestore:"recipeId"`
	Messages  []messageEntry `firestore:"messages"`
	Timestamp time.Time      `firestore:"timestamp,serverTimestamp"`
}

type messageEntry struct {
	Role    string `firestore:"role"`
	Content string `firestore:"content"`
}

// FirestoreStore implements Repository on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to the project's default database. The client honours
// FIRESTORE_EMULATOR_HOST.
func NewFirestore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// GetPrompt implements PromptRepository.
func (s *FirestoreStore) GetPrompt(ctx context.Context, recipeID string) (string, bool, error) {
	snap, err := s.client.Collection(promptsCollection).Doc(recipeID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get prompt %s: %w", recipeID, err)
	}
	var doc promptDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", false, fmt.Errorf("decode prompt %s: %w", recipeID, err)
	}
	return doc.Content, true, nil
}

// PutPrompt implements PromptRepository.
func (s *FirestoreStore) PutPrompt(ctx context.Context, recipeID, prompt string) error {
	_, err := s.client.Collection(promptsCollection).Doc(recipeID).Set(ctx, promptDoc{Content: prompt})
	if err != nil {
		return fmt.Errorf("put prompt %s: %w", recipeID, err)
	}
	return nil
}

// GetUserContext implements UserContextRepository. Any existing user document
// counts as a stored context.
func (s *FirestoreStore) GetUserContext(ctx context.Context, userID string) (usercontext.Record, bool, error) {
	snap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return usercontext.Record{}, false, nil
	}
	if err != nil {
		return usercontext.Record{}, false, fmt.Errorf("get user %s: %w", userID, err)
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return usercontext.Record{}, false, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return recordFromDoc(userID, doc), true, nil
}

// SaveUserContext implements UserContextRepository. Other fields on the user
// document are left untouched.
func (s *FirestoreStore) SaveUserContext(ctx context.Context, userID string, uc usercontext.UserContext) error {
	_, err := s.client.Collection(usersCollection).Doc(userID).Set(ctx, userContextFields(uc), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("save user context %s: %w", userID, err)
	}
	return nil
}

// AddConversation implements ConversationRepository.
func (s *FirestoreStore) AddConversation(ctx context.Context, conv Conversation) error {
	ref := s.client.Collection(conversationsCollection).NewDoc()
	if conv.ID != "" {
		ref = s.client.Collection(conversationsCollection).Doc(conv.ID)
	}
	if _, err := ref.Create(ctx, conversationFromRecord(conv)); err != nil {
		return fmt.Errorf("add conversation: %w", err)
	}
	return nil
}

func recordFromDoc(userID string, doc userDoc) usercontext.Record {
	return usercontext.Record{
		UserID: userID,
		Context: usercontext.UserContext{
			QuarterlyGoal:   doc.QuarterlyGoal,
			WeeklySentiment: doc.WeeklySentiment,
		},
		UpdatedAt: doc.UpdatedAt,
	}
}

func userContextFields(uc usercontext.UserContext) map[string]any {
	return map[string]any{
		"quarterlyGoal":   uc.QuarterlyGoal,
		"weeklySentiment": uc.WeeklySentiment,
		"updatedAt":       firestore.ServerTimestamp,
	}
}

func conversationFromRecord(conv Conversation) conversationDoc {
	return conversationDoc{
		UserID:   conv.UserID,
		RecipeID: conv.RecipeID,
		Messages: toEntries(conv.Messages),
	}
}

func toEntries(msgs []chat.Wire) []messageEntry {
	out := make([]messageEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageEntry{Role: m.Role.String(), Content: m.Content})
	}
	return out
}

// Close releases the client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
