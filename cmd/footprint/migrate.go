package main

import (
	"fmt"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/Veraticus/carbon-footprint/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long: `Apply pending schema migrations. Other commands migrate automatically;
use this to check the schema version or to take a backup first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statusOnly, _ := cmd.Flags().GetBool("status")
			backup, _ := cmd.Flags().GetBool("backup")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			current, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if statusOnly {
				msg := fmt.Sprintf("Schema version %d of %d (%s)", current, storage.ExpectedSchemaVersion, store.Path())
				if current < storage.ExpectedSchemaVersion {
					_, err = fmt.Fprintln(out, cli.FormatWarning(msg+", run footprint migrate"))
				} else {
					_, err = fmt.Fprintln(out, cli.FormatSuccess(msg))
				}
				return err
			}

			if current >= storage.ExpectedSchemaVersion {
				_, err = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Schema is up to date (version %d)", current)))
				return err
			}

			if backup && current > 0 {
				path, err := store.Backup(cmd.Context(), cfg.BackupDir)
				if err != nil {
					return fmt.Errorf("backup before migration failed: %w", err)
				}
				_, _ = fmt.Fprintln(out, cli.FormatInfo("Backed up to "+path))
			}

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated schema from version %d to %d", current, storage.ExpectedSchemaVersion)))
			return err
		},
	}

	cmd.Flags().Bool("status", false, "Only show the schema version")
	cmd.Flags().Bool("backup", true, "Back up the database before migrating")

	return cmd
}
