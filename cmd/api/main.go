package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/auth"
	"github.com/guidr-app/guidr/backend/internal/config"
	"github.com/guidr-app/guidr/backend/internal/handler"
	"github.com/guidr-app/guidr/backend/internal/logger"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
	"github.com/guidr-app/guidr/backend/internal/service/ai"
	"github.com/guidr-app/guidr/backend/internal/service/coach"
	"github.com/guidr-app/guidr/backend/internal/service/entitlement"
	"github.com/guidr-app/guidr/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("guidr-api")

	if err := godotenv.Load(); err != nil {
		log.Info().Err(err).Msg("no .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.SetLevel(cfg.Server.LogLevel)

	recipes := recipe.NewMemoryStore(recipe.Seed())

	repo, err := store.New(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer repo.Close()

	seeded, err := store.SeedPrompts(ctx, repo, recipes.Prompts())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed recipe prompts")
	}
	log.Info().Int("seeded", seeded).Str("driver", cfg.Store.Driver).Msg("store ready")

	generator, err := ai.NewGenerator(ctx, cfg.AI, log)
	if err != nil {
		log.Warn().Err(err).Msg("continuing without AI functionality")
		generator = nil
	}

	checker := entitlement.NewChecker(entitlement.NewProvider(cfg.Billing), log)

	coachSvc := coach.NewService(recipes, repo, generator, checker,
		coach.Options{EnforceEntitlements: cfg.Coach.EnforceEntitlements}, log)
	defer coachSvc.Close()

	if len(cfg.Auth.Tokens) == 0 {
		log.Warn().Msg("AUTH_TOKENS is empty, every callable request will be unauthenticated")
	}

	router := handler.NewRouter(handler.Deps{
		Recipes:     recipes,
		Coach:       coachSvc,
		Verifier:    auth.NewStaticVerifier(cfg.Auth.Tokens),
		CORSOrigins: cfg.Server.CORSOrigins,
		Log:         log,
	})

	startServer(ctx, cfg.Server, router, log)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log zerolog.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Str("env", serverCfg.Env).Msg("Guidr backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Error().Stack().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
