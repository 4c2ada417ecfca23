// Package cli defines the bistro command tree.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bistro-hq/bistro/internal/app"
)

// NewRootCommand builds the bistro command with its subcommands.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "bistro",
		Short:         "Bistro access-control service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(
		newServeCommand(),
		newSeedCommand(),
		newMigrateCommand(),
		newPermissionsCommand(),
	)
	return root
}

// env is the configuration and logger shared by commands that touch
// external services.
type env struct {
	cfg    *app.Config
	logger *slog.Logger
}

func loadEnv() (env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return env{}, err
	}
	return env{cfg: cfg, logger: app.NewLogger(cfg)}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
