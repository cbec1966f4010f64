package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func migrateStep(short string, step func(ctx context.Context, db *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		if err := step(cmd.Context(), e.db.DB); err != nil {
			return err
		}
		e.sugar.Infow("migrate " + short + " done")
		return nil
	}
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: migrateStep("up", database.Migrate)},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", RunE: migrateStep("down", database.Rollback)},
		&cobra.Command{Use: "status", Short: "Display status of each migration", RunE: migrateStep("status", database.Status)},
	)
	rootCmd.AddCommand(migrateCmd)
}
