package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database as JSON",
		Long:  `Dump every table (news, challenges, users, participation and trips) as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dump, err := store.ExportAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to export database: %w", err)
			}

			if output == "" {
				return writeJSON(cmd.OutOrStdout(), dump)
			}

			f, err := os.Create(output) // #nosec G304 - user supplied output path
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := writeJSON(f, dump); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s Exported %d tables to %s", cli.FolderIcon, len(dump), output)))
			return err
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	return cmd
}
