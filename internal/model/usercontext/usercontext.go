// Package usercontext holds the per-user coaching context used to personalise prompts.
package usercontext

import (
	"fmt"
	"strings"
	"time"
)

// UserContext is the single context record kept per user.
type UserContext struct {
	QuarterlyGoal   string `json:"quarterlyGoal" firestore:"quarterlyGoal"`
	WeeklySentiment string `json:"weeklySentiment" firestore:"weeklySentiment"`
}

// Record is a stored UserContext together with its owner and write time.
type Record struct {
	UserID    string
	Context   UserContext
	UpdatedAt time.Time
}

// Complete reports whether both fields carry text.
func (c UserContext) Complete() bool {
	return strings.TrimSpace(c.QuarterlyGoal) != "" && strings.TrimSpace(c.WeeklySentiment) != ""
}

// PromptSuffix renders the server-side system prompt suffix.
func (c UserContext) PromptSuffix() string {
	return fmt.Sprintf("\n\nContext: The user's quarterly goal is %q and they've been feeling %q.",
		c.QuarterlyGoal, c.WeeklySentiment)
}

// LocalPromptSuffix renders the suffix the local tier appends from the raw stored blob.
func LocalPromptSuffix(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return "\n\nAbout the user: " + raw
}
