// Package cli implements the entrydesk organizer command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/entrydesk/internal/app"
	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// organizer is the actor for every CLI operation: whoever runs the tool
// has the database in hand.
var organizer = core.Actor{Admin: true}

// RootCmd builds the entrydesk command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "entrydesk",
		Short: "EntryDesk - karate tournament roster tool",
		Long: `entrydesk manages tournament registrations from the command line.
Configuration is read from the environment and an optional .env file;
DATABASE_URL selects the roster database.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("database", "", "database URL (overrides DATABASE_URL)")

	root.AddCommand(ImportCmd())
	root.AddCommand(ExportCmd())
	root.AddCommand(TemplateCmd())
	root.AddCommand(StatsCmd())
	root.AddCommand(MigrateCmd())
	root.AddCommand(CoachCmd())
	return root
}

// loadConfig reads the environment, honoring the --database flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.LoadOffline()
	if err != nil {
		return nil, err
	}
	if url, _ := cmd.Flags().GetString("database"); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}

func logger(cfg *config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}

// withApp opens the roster database for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The CLI always writes; the registration lock guards the web surface.
	cfg.Registration.WritesEnabled = true

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, nil, logger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// coachByEmail finds a coach, creating it when create is set.
func coachByEmail(ctx context.Context, svc *core.Service, email string, create bool) (core.Coach, error) {
	if create {
		return svc.SignIn(ctx, email, "", "")
	}
	c, err := svc.CoachByEmail(ctx, email)
	if err != nil {
		return core.Coach{}, fmt.Errorf("coach %s: %w", email, err)
	}
	return c, nil
}
