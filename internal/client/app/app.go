// Package app assembles the client core from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/client/localstate"
	"github.com/guidr-app/guidr/backend/internal/client/relay"
	"github.com/guidr-app/guidr/backend/internal/client/remote"
	"github.com/guidr-app/guidr/backend/internal/client/session"
	"github.com/guidr-app/guidr/backend/internal/client/usercontext"
	"github.com/guidr-app/guidr/backend/internal/config"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
	model "github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/internal/service/ai"
	"github.com/guidr-app/guidr/backend/internal/service/entitlement"
)

// Deps are the collaborators of an App.
type Deps struct {
	UserID       string
	Recipes      recipe.Store
	Entitlements *entitlement.Checker
	Contexts     *usercontext.Store
	Relay        session.Sender
	// Closers run in order on Close.
	Closers []func() error
}

// App is the client core: catalog, gate, context store and coach relay for
// one signed-in user.
type App struct {
	deps Deps
}

// NewWithDeps creates an App from explicit collaborators. A nil Entitlements
// checker treats every user as free.
func NewWithDeps(deps Deps) *App {
	if deps.Entitlements == nil {
		deps.Entitlements = entitlement.NewChecker(nil, zerolog.Nop())
	}
	return &App{deps: deps}
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.ClientConfig, log zerolog.Logger) (*App, error) {
	state, err := localstate.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	var client *remote.Client
	if cfg.RemoteEnabled() {
		client = remote.New(cfg.RemoteURL, cfg.IDToken, cfg.RemoteTimeout)
	}

	var contextRemote usercontext.Remote
	var coachRemote relay.RemoteCaller
	if client != nil {
		contextRemote = client
		coachRemote = client
	}
	contexts := usercontext.New(state, contextRemote, log)

	recipes := recipe.NewMemoryStore(recipe.Seed())

	var local relay.LocalCoach
	if cfg.LocalFallbackAllowed() {
		gen, err := ai.NewGenerator(ctx, cfg.AI, log)
		if err != nil {
			state.Close()
			return nil, fmt.Errorf("create direct tier: %w", err)
		}
		local = relay.NewDirectCoach(recipes, contexts, gen)
	} else if cfg.LocalFallback {
		log.Warn().Str("env", cfg.Env).Msg("direct model tier is disabled in production")
	}

	return NewWithDeps(Deps{
		UserID:       cfg.UserID,
		Recipes:      recipes,
		Entitlements: entitlement.NewChecker(entitlement.NewProvider(cfg.Billing), log),
		Contexts:     contexts,
		Relay:        relay.New(coachRemote, local, log),
		Closers:      []func() error{state.Close},
	}), nil
}

// Recipes lists the catalog.
func (a *App) Recipes() []recipe.Recipe {
	return a.deps.Recipes.List()
}

// Status reports the user's subscription status.
func (a *App) Status(ctx context.Context) entitlement.Status {
	return a.deps.Entitlements.GetStatus(ctx, a.deps.UserID)
}

// OpenSession enters recipeID, subject to the entitlement gate.
func (a *App) OpenSession(ctx context.Context, recipeID string) (*session.Session, error) {
	return session.Open(ctx, a.deps.Recipes, a.deps.Entitlements, a.deps.Relay, a.deps.UserID, recipeID)
}

// SaveContext stores the user's coaching context.
func (a *App) SaveContext(ctx context.Context, uc model.UserContext) (bool, error) {
	return a.deps.Contexts.Save(ctx, uc)
}

// LoadContext reads the locally stored context.
func (a *App) LoadContext(ctx context.Context) (model.UserContext, error) {
	return a.deps.Contexts.Load(ctx)
}

// Close releases local resources.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.deps.Closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
