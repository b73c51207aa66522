package coach

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/internal/service/ai"
	"github.com/guidr-app/guidr/backend/internal/service/entitlement"
	"github.com/guidr-app/guidr/backend/internal/store"
	"github.com/guidr-app/guidr/backend/pkg/callable"
)

type flakyRepo struct {
	*store.MemoryStore
	contextErr error
	logErr     error
	saveErr    error
}

func (r *flakyRepo) GetUserContext(ctx context.Context, userID string) (usercontext.Record, bool, error) {
	if r.contextErr != nil {
		return usercontext.Record{}, false, r.contextErr
	}
	return r.MemoryStore.GetUserContext(ctx, userID)
}

func (r *flakyRepo) AddConversation(ctx context.Context, conv store.Conversation) error {
	if r.logErr != nil {
		return r.logErr
	}
	return r.MemoryStore.AddConversation(ctx, conv)
}

func (r *flakyRepo) SaveUserContext(ctx context.Context, userID string, uc usercontext.UserContext) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.MemoryStore.SaveUserContext(ctx, userID, uc)
}

type recordingGenerator struct {
	mu    sync.Mutex
	calls []ai.Request
	reply string
	err   error
}

func (g *recordingGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	return g.reply, g.err
}

func newRepo(t *testing.T) *flakyRepo {
	t.Helper()
	mem := store.NewMemory()
	_, err := store.SeedPrompts(context.Background(), mem, recipe.NewMemoryStore(recipe.Seed()).Prompts())
	require.NoError(t, err)
	return &flakyRepo{MemoryStore: mem}
}

func newService(repo store.Repository, gen ai.Generator, checker *entitlement.Checker, opts Options) *Service {
	return NewService(recipe.NewMemoryStore(recipe.Seed()), repo, gen, checker, opts, zerolog.Nop())
}

func chatRequest(recipeID string, texts ...string) callable.CoachChatRequest {
	hist := make([]chat.Wire, 0, len(texts))
	role := chat.User
	for _, text := range texts {
		hist = append(hist, chat.Wire{Role: role, Content: text})
		if role == chat.User {
			role = chat.Assistant
		} else {
			role = chat.User
		}
	}
	return callable.CoachChatRequest{RecipeID: recipeID, MessageHistory: hist}
}

func TestCoachChatSuccess(t *testing.T) {
	repo := newRepo(t)
	gen := &recordingGenerator{reply: "Let's look at your week."}
	svc := newService(repo, gen, nil, Options{})

	reply, err := svc.CoachChat(context.Background(), "u1",
		chatRequest("weekly_review_v1", "Hello", "Hi there", "How was my week?"))
	require.NoError(t, err)
	assert.Equal(t, "Let's look at your week.", reply)

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	prompt, _, _ := repo.GetPrompt(context.Background(), "weekly_review_v1")
	assert.Equal(t, prompt, call.SystemInstruction)
	assert.Equal(t, "How was my week?", call.NewMessage)
	require.Len(t, call.History, 2)
	assert.Equal(t, "Hello", call.History[0].Text)

	svc.Close()
	convs := repo.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "u1", convs[0].UserID)
	require.Len(t, convs[0].Messages, 4)
	assert.Equal(t, chat.Wire{Role: chat.Assistant, Content: "Let's look at your week."}, convs[0].Messages[3])
}

func TestCoachChatAppendsUserContext(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.SaveUserContext(context.Background(), "u1",
		usercontext.UserContext{QuarterlyGoal: "Launch v2", WeeklySentiment: "stretched"}))
	gen := &recordingGenerator{reply: "ok"}
	svc := newService(repo, gen, nil, Options{})
	defer svc.Close()

	_, err := svc.CoachChat(context.Background(), "u1", chatRequest("weekly_review_v1", "Hi"))
	require.NoError(t, err)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].SystemInstruction,
		"\n\nContext: The user's quarterly goal is \"Launch v2\" and they've been feeling \"stretched\".")
}

func TestCoachChatIgnoresContextFetchFailure(t *testing.T) {
	repo := newRepo(t)
	repo.contextErr = errors.New("firestore down")
	gen := &recordingGenerator{reply: "ok"}
	svc := newService(repo, gen, nil, Options{})
	defer svc.Close()

	reply, err := svc.CoachChat(context.Background(), "u1", chatRequest("weekly_review_v1", "Hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.NotContains(t, gen.calls[0].SystemInstruction, "Context:")
}

func TestCoachChatLogFailureDoesNotFailCall(t *testing.T) {
	repo := newRepo(t)
	repo.logErr = errors.New("write failed")
	svc := newService(repo, &recordingGenerator{reply: "ok"}, nil, Options{})

	reply, err := svc.CoachChat(context.Background(), "u1", chatRequest("weekly_review_v1", "Hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	svc.Close()
	assert.Empty(t, repo.Conversations())
}

func TestCoachChatErrorKinds(t *testing.T) {
	premiumChecker := entitlement.NewChecker(entitlement.PremiumUsers("pro-user"), zerolog.Nop())

	tests := []struct {
		name    string
		userID  string
		req     callable.CoachChatRequest
		gen     ai.Generator
		opts    Options
		mutate  func(*flakyRepo)
		want    callable.Kind
		wantMsg string
	}{
		{name: "no identity", userID: "", req: chatRequest("weekly_review_v1", "Hi"), gen: &recordingGenerator{}, want: callable.Unauthenticated, wantMsg: "Authentication required."},
		{name: "no identity beats missing id", userID: "", req: callable.CoachChatRequest{}, want: callable.Unauthenticated},
		{name: "missing recipe id", userID: "u1", req: chatRequest("", "Hi"), gen: &recordingGenerator{}, want: callable.InvalidArgument, wantMsg: "Missing recipeId."},
		{name: "unknown recipe id", userID: "u1", req: chatRequest("nope_v1", "Hi"), gen: &recordingGenerator{}, want: callable.InvalidArgument},
		{name: "legacy guidrId", userID: "u1", req: callable.CoachChatRequest{LegacyGuidrID: "weekly_review_v1"}, gen: &recordingGenerator{}, want: callable.InvalidArgument},
		{
			name: "prompt missing", userID: "u1", req: chatRequest("energy_audit_v1", "Hi"), gen: &recordingGenerator{},
			mutate: func(r *flakyRepo) {
				r.MemoryStore = store.NewMemory()
			},
			want: callable.NotFound,
		},
		{
			name: "prompt blank", userID: "u1", req: chatRequest("weekly_review_v1", "Hi"), gen: &recordingGenerator{},
			mutate: func(r *flakyRepo) {
				_ = r.PutPrompt(context.Background(), "weekly_review_v1", "  ")
			},
			want: callable.NotFound, wantMsg: "Recipe prompt not found.",
		},
		{name: "unknown role in history", userID: "u1", req: callable.CoachChatRequest{RecipeID: "weekly_review_v1", MessageHistory: []chat.Wire{{Content: "stray"}, {Role: chat.User, Content: "A"}}}, gen: &recordingGenerator{}, want: callable.InvalidArgument},
		{name: "prompt missing beats missing key", userID: "u1", req: chatRequest("energy_audit_v1", "Hi"), mutate: func(r *flakyRepo) { r.MemoryStore = store.NewMemory() }, want: callable.NotFound},
		{name: "no generator", userID: "u1", req: chatRequest("weekly_review_v1", "Hi"), want: callable.FailedPrecondition, wantMsg: "AI API key not configured on server."},
		{name: "history ends with assistant", userID: "u1", req: chatRequest("weekly_review_v1", "Hi", "Hello"), gen: &recordingGenerator{}, want: callable.InvalidArgument},
		{name: "empty history", userID: "u1", req: callable.CoachChatRequest{RecipeID: "weekly_review_v1"}, gen: &recordingGenerator{}, want: callable.InvalidArgument},
		{name: "model failure", userID: "u1", req: chatRequest("weekly_review_v1", "Hi"), gen: &recordingGenerator{err: errors.New("quota")}, want: callable.Internal, wantMsg: "AI Service currently unavailable."},
		{name: "premium without entitlement", userID: "free-user", req: chatRequest("decision_matrix_v1", "Hi"), gen: &recordingGenerator{}, opts: Options{EnforceEntitlements: true}, want: callable.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t)
			if tt.mutate != nil {
				tt.mutate(repo)
			}
			svc := newService(repo, tt.gen, premiumChecker, tt.opts)
			defer svc.Close()

			_, err := svc.CoachChat(context.Background(), tt.userID, tt.req)
			require.Error(t, err)

			var ce *callable.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, ce.Message)
			}
		})
	}
}

func TestCoachChatEnforcementAllowsPro(t *testing.T) {
	checker := entitlement.NewChecker(entitlement.PremiumUsers("pro-user"), zerolog.Nop())
	svc := newService(newRepo(t), &recordingGenerator{reply: "ok"}, checker, Options{EnforceEntitlements: true})
	defer svc.Close()

	reply, err := svc.CoachChat(context.Background(), "pro-user", chatRequest("decision_matrix_v1", "Hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestCoachChatWithoutEnforcementServesPremium(t *testing.T) {
	svc := newService(newRepo(t), &recordingGenerator{reply: "ok"}, nil, Options{})
	defer svc.Close()

	_, err := svc.CoachChat(context.Background(), "free-user", chatRequest("decision_matrix_v1", "Hi"))
	require.NoError(t, err)
}

func TestSaveUserContext(t *testing.T) {
	repo := newRepo(t)
	svc := newService(repo, nil, nil, Options{})

	err := svc.SaveUserContext(context.Background(), "", usercontext.UserContext{})
	assert.True(t, callable.IsKind(err, callable.Unauthenticated))

	uc := usercontext.UserContext{QuarterlyGoal: "g", WeeklySentiment: "s"}
	require.NoError(t, svc.SaveUserContext(context.Background(), "u1", uc))
	rec, ok, err := repo.GetUserContext(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uc, rec.Context)

	repo.saveErr = errors.New("disk full")
	err = svc.SaveUserContext(context.Background(), "u1", uc)
	var ce *callable.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, callable.Internal, ce.Kind)
	assert.Equal(t, "Failed to save context.", ce.Message)
}

func TestCoachChatBlankPromptNeverReachesModel(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.PutPrompt(context.Background(), "weekly_review_v1", ""))
	gen := &recordingGenerator{reply: "ok"}
	svc := newService(repo, gen, nil, Options{})
	defer svc.Close()

	_, err := svc.CoachChat(context.Background(), "u1", chatRequest("weekly_review_v1", "Hi"))
	assert.True(t, callable.IsKind(err, callable.NotFound))
	assert.Empty(t, gen.calls)
}
