package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-srs/internal/platform/database"
	"github.com/phrazzld/scry-srs/internal/redact"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), cfg.Database, log)
			if err != nil {
				return fmt.Errorf("failed to open database: %s", redact.Error(err))
			}
			defer func() { _ = db.Close() }()

			return runMigration(cmd.Context(), db, log, args[0], cmd.OutOrStdout())
		},
	}
}

// runMigration executes one migrate subcommand, printing status output to out.
func runMigration(ctx context.Context, db *sqlx.DB, log *slog.Logger, command string, out io.Writer) error {
	migrator, err := database.NewMigrator(db, log)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "version %d\n", version)
		return err
	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			if _, err := fmt.Fprintf(out, "%-8s %05d %s\n", state, s.Version, s.Path); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// migrateUp applies pending migrations before serving.
func migrateUp(ctx context.Context, db *sqlx.DB, log *slog.Logger) error {
	log.Info("applying database migrations")
	if err := runMigration(ctx, db, log, "up", io.Discard); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
