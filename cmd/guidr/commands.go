package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidr-app/guidr/backend/internal/client/app"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
)

func recipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List coaching recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				isPro := a.Status(ctx).IsPro
				for _, r := range a.Recipes() {
					lock := ""
					if r.IsPremium && !isPro {
						lock = " [premium]"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %s%s\n", r.Icon, r.ID, r.Name, lock)
				}
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show subscription status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return printJSON(cmd, a.Status(ctx))
			})
		},
	}
}

func contextCmd() *cobra.Command {
	contextCmd := &cobra.Command{Use: "context", Short: "Manage your coaching context"}

	var goal, sentiment string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Save quarterly goal and weekly sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				ok, err := a.SaveContext(ctx, usercontext.UserContext{QuarterlyGoal: goal, WeeklySentiment: sentiment})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved: %t\n", ok)
				return nil
			})
		},
	}
	setCmd.Flags().StringVarP(&goal, "goal", "g", "", "Quarterly goal")
	setCmd.Flags().StringVarP(&sentiment, "sentiment", "s", "", "How the week has felt")
	contextCmd.AddCommand(setCmd)

	contextCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the locally stored context",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				uc, err := a.LoadContext(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, uc)
			})
		},
	})
	return contextCmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat RECIPE_ID",
		Short: "Chat with a coaching recipe (/clear resets, /quit exits)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.OpenSession(ctx, args[0])
				if err != nil {
					return err
				}
				return runChat(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
