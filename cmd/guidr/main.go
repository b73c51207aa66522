package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/guidr-app/guidr/backend/internal/client/app"
	"github.com/guidr-app/guidr/backend/internal/config"
	"github.com/guidr-app/guidr/backend/internal/logger"
)

var (
	remoteFlag string
	userFlag   string
	rootCmd    = &cobra.Command{
		Use:           "guidr",
		Short:         "Terminal driver for the Guidr coaching client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// withApp builds the client core for one command run.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if remoteFlag != "" {
		cfg.RemoteURL = remoteFlag
	}
	if userFlag != "" {
		cfg.UserID = userFlag
	}

	logger.SetLevel(cfg.LogLevel)
	log := logger.NewWithWriter("guidr-client", zerolog.ConsoleWriter{Out: os.Stderr})

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close client state")
		}
	}()
	return fn(cmd.Context(), a)
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&remoteFlag, "remote", "r", "", "Backend base URL (overrides GUIDR_REMOTE_URL)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User id for entitlement checks (overrides GUIDR_USER_ID)")

	rootCmd.AddCommand(recipesCmd(), statusCmd(), contextCmd(), chatCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
