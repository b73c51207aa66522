package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer keeps SQLITE_BUSY away from concurrent log writes
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS prompts (
		recipe_id TEXT PRIMARY KEY,
		system_prompt TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_contexts (
		user_id TEXT PRIMARY KEY,
		quarterly_goal TEXT NOT NULL,
		weekly_sentiment TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetPrompt implements PromptRepository.
func (s *SQLiteStore) GetPrompt(ctx context.Context, recipeID string) (string, bool, error) {
	var prompt string
	err := s.db.QueryRowContext(ctx,
		`SELECT system_prompt FROM prompts WHERE recipe_id = ?`, recipeID).Scan(&prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get prompt %s: %w", recipeID, err)
	}
	return prompt, true, nil
}

// PutPrompt implements PromptRepository.
func (s *SQLiteStore) PutPrompt(ctx context.Context, recipeID, prompt string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (recipe_id, system_prompt) VALUES (?, ?)
		ON CONFLICT(recipe_id) DO UPDATE SET system_prompt = excluded.system_prompt`,
		recipeID, prompt)
	if err != nil {
		return fmt.Errorf("put prompt %s: %w", recipeID, err)
	}
	return nil
}

// GetUserContext implements UserContextRepository.
func (s *SQLiteStore) GetUserContext(ctx context.Context, userID string) (usercontext.Record, bool, error) {
	var (
		rec       = usercontext.Record{UserID: userID}
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT quarterly_goal, weekly_sentiment, updated_at
		FROM user_contexts WHERE user_id = ?`, userID).
		Scan(&rec.Context.QuarterlyGoal, &rec.Context.WeeklySentiment, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return usercontext.Record{}, false, nil
	}
	if err != nil {
		return usercontext.Record{}, false, fmt.Errorf("get user context %s: %w", userID, err)
	}
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, true, nil
}

// SaveUserContext implements UserContextRepository.
func (s *SQLiteStore) SaveUserContext(ctx context.Context, userID string, uc usercontext.UserContext) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_contexts (user_id, quarterly_goal, weekly_sentiment, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			quarterly_goal = excluded.quarterly_goal,
			weekly_sentiment = excluded.weekly_sentiment,
			updated_at = excluded.updated_at`,
		userID, uc.QuarterlyGoal, uc.WeeklySentiment, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save user context %s: %w", userID, err)
	}
	return nil
}

// AddConversation implements ConversationRepository.
func (s *SQLiteStore) AddConversation(ctx context.Context, conv Conversation) error {
	payload, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	createdAt := conv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, recipe_id, messages_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.UserID, conv.RecipeID, string(payload), createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("add conversation %s: %w", conv.ID, err)
	}
	return nil
}

// ConversationsFor returns the user's logged conversations, oldest first.
func (s *SQLiteStore) ConversationsFor(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, recipe_id, messages_json, created_at
		FROM conversations WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var (
			conv      Conversation
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.RecipeID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &conv.Messages); err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", conv.ID, err)
		}
		conv.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, conv)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
