package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/bistro-hq/bistro/internal/auth"
	"github.com/bistro-hq/bistro/internal/platform/db"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/seed"
	"github.com/bistro-hq/bistro/migrations"
)

// ErrSeedFailed is returned when at least one bootstrap phase failed.
var ErrSeedFailed = errors.New("seed failed")

func newSeedCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision baseline roles, role claims and default accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			pool, err := db.New(ctx, db.Options{DSN: e.cfg.PGDSN, MaxConns: e.cfg.PGMaxConns})
			if err != nil {
				return err
			}
			defer pool.Close()
			if migrate {
				if err := applyMigrations(ctx, e.logger, pool); err != nil {
					return err
				}
			}
			return runSeed(ctx, cmd.OutOrStdout(), seed.NewSeeder(rbac.NewPGStore(pool), auth.BcryptHasher{}, e.logger))
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations first")
	return cmd
}

// runSeed prints the phase report and fails when any phase failed.
func runSeed(ctx context.Context, out io.Writer, seeder *seed.Seeder) error {
	report := seeder.Run(ctx)
	fmt.Fprint(out, report.String())
	if err := report.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSeedFailed, err)
	}
	fmt.Fprintf(out, "seed complete: %d rows created\n", report.Created())
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			pool, err := db.New(ctx, db.Options{DSN: e.cfg.PGDSN, MaxConns: e.cfg.PGMaxConns})
			if err != nil {
				return err
			}
			defer pool.Close()
			return applyMigrations(ctx, e.logger, pool)
		},
	}
}

func applyMigrations(ctx context.Context, logger *slog.Logger, pool *pgxpool.Pool) error {
	applied, err := db.Migrate(ctx, pool, migrations.FS)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("names", applied))
	return nil
}
