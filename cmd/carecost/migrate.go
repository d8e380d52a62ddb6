package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/db"
	"github.com/gyeh/carecost/internal/exitcode"
	"github.com/gyeh/carecost/internal/logging"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the reference and staging tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
			ctx := cmd.Context()

			if cfg.DSN == "" {
				log.Error().Msg("--dsn or CARECOST_DB_URL is required")
				os.Exit(exitcode.UsageError)
			}

			pool, err := db.NewPool(ctx, cfg.DSN)
			if err != nil {
				log.Error().Err(err).Msg("database connection failed")
				os.Exit(exitcode.DBConnError)
			}
			defer pool.Close()

			if err := db.ApplyMigrations(ctx, pool, log); err != nil {
				log.Error().Err(err).Msg("migration failed")
				pool.Close()
				os.Exit(exitcode.UpsertError)
			}
			return nil
		},
	}
}
