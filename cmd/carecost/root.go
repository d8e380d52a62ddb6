package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/carecost/internal/config"
)

func newRootCmd() *cobra.Command {
	cfg := config.New()
	var configFile string

	root := &cobra.Command{
		Use:          "carecost",
		Short:        "Care plan line item cost engine",
		Long:         "Estimates care plan line item costs from fee schedules and geographic factors held in Postgres.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return nil
			}
			return cfg.LoadFromFile(configFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("CARECOST_DB_URL"), "Postgres connection string (or set CARECOST_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&configFile, "config", os.Getenv("CARECOST_CONFIG"), "YAML file with engine settings")

	root.AddCommand(
		newEstimateCmd(cfg),
		newLoadCmd(cfg),
		newInspectCmd(cfg),
		newMigrateCmd(cfg),
	)
	return root
}
