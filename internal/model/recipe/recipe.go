package recipe

const (
	// DefaultGreeting opens a session when a recipe has no greeting of its own.
	DefaultGreeting = "Hi! I'm your coach."
	// DefaultSystemPrompt is used by the local tier for ids it does not know.
	DefaultSystemPrompt = "You are a helpful and warm coach."
)

// Recipe is a pre-authored coaching program exposed to the app.
type Recipe struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Category     string `json:"category,omitempty"`
	IsPremium    bool   `json:"isPremium"`
	Greeting     string `json:"greeting"`
	SystemPrompt string `json:"-"`
}

// OpeningLine returns the synthetic assistant message that starts a session.
func (r Recipe) OpeningLine() string {
	if r.Greeting == "" {
		return DefaultGreeting
	}
	return r.Greeting
}

// Prompt returns the system prompt, falling back to the generic coach persona.
func (r Recipe) Prompt() string {
	if r.SystemPrompt == "" {
		return DefaultSystemPrompt
	}
	return r.SystemPrompt
}

// Seed provides the built-in recipe catalog.
func Seed() []Recipe {
	return []Recipe{
		{
			ID:          "weekly_review_v1",
			Name:        "The Weekly Review System",
			Description: "A structured 5-step chat to reflect on your week and plan the next with clarity.",
			Icon:        "📋",
			Category:    "Productivity",
			IsPremium:   false,
			Greeting:    "Ready to look back at your week? Let's start with a win. What's one thing from your past week, big or small, that you feel good about?",
			SystemPrompt: `You are "Review," a focused, systems-oriented productivity coach.
Guide the user through a 5-step review: Celebration, Friction, Priority, Scheduling, and Intention.
Ask ONLY ONE question at a time. Be concise and empathetic. Do not list all steps at once.`,
		},
		{
			ID:           "decision_matrix_v1",
			Name:         "The Decision Matrix",
			Description:  "Make tough choices using a weighted criteria system and your core values.",
			Icon:         "⚖️",
			Category:     "Decisions",
			IsPremium:    true,
			Greeting:     "Facing a tough choice? Tell me what options you're deciding between, and we'll break them down.",
			SystemPrompt: `You are "Decide," a logical decision-making coach using weighted matrices.`,
		},
		{
			ID:           "energy_audit_v1",
			Name:         "The Energy Audit",
			Description:  "Audit your activities to boost your daily energy and reduce mental drain.",
			Icon:         "⚡",
			Category:     "Mindset",
			IsPremium:    true,
			Greeting:     "Let's check your battery. List 5-7 main activities you did last week, and we'll see which ones gave you energy.",
			SystemPrompt: `You are "Energy," a mindful sustainability coach.`,
		},
	}
}
