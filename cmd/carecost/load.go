package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/db"
	"github.com/gyeh/carecost/internal/exitcode"
	"github.com/gyeh/carecost/internal/logging"
	"github.com/gyeh/carecost/internal/refload"
)

func newLoadCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a fee schedule or geographic factor Parquet file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to Parquet file (required)")
	f.StringVar(&cfg.Kind, "kind", cfg.Kind, "Reference kind: fee_schedule or geo_factors")
	f.BoolVar(&cfg.Force, "force", false, "Reload even if the file SHA was already loaded")
	f.BoolVar(&cfg.KeepStaging, "keep-staging", false, "Keep staging rows after the upsert")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runLoad(cmd *cobra.Command, cfg *config.Config) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := cmd.Context()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := refload.Run(ctx, pool, log, cfg)
	if err != nil {
		var pe *refload.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("load failed")
		} else {
			log.Error().Err(err).Msg("load failed")
		}
		pool.Close()
		os.Exit(exitcode.ForError(err))
	}

	if summary.AlreadyLoaded {
		fmt.Fprintf(cmd.OutOrStdout(), "Already loaded: %s (file_id %d)\n", summary.FilePath, summary.FileID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Load complete: %d rows staged, %d rejected, %d upserted into ref (%.1fs)\n",
		summary.RowsStaged, summary.RowsRejected, summary.RowsUpserted, summary.DurationTotal.Seconds())
	return nil
}
