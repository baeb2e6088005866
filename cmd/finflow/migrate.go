package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; this one lets you do it explicitly
or check where the database stands.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	slog.Debug("Starting database migration", "database", cfg.DatabasePath, "status_only", status)

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if status {
		fmt.Fprintln(out, cli.TableHeaderStyle.Render(cli.ChartIcon+" Database migration status"))
		fmt.Fprintln(out, cli.RenderKeyValues([][2]string{
			{"Database", cfg.DatabasePath},
			{"Current version", fmt.Sprintf("%d", current)},
			{"Latest version", fmt.Sprintf("%d", storage.ExpectedSchemaVersion)},
		}))
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d migrations pending; run 'finflow migrate'",
				storage.ExpectedSchemaVersion-current)))
		}
		return nil
	}

	if current >= storage.ExpectedSchemaVersion {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Database is up to date (version %d)", current)))
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated database from version %d to %d",
		current, storage.ExpectedSchemaVersion)))
	return nil
}
