package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/exitcode"
	"github.com/gyeh/carecost/internal/logging"
	"github.com/gyeh/carecost/internal/refload"
)

func newInspectCmd(cfg *config.Config) *cobra.Command {
	var sampleSize int64
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dry-run validation and stats for a reference file (no writes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

			if err := cfg.Validate(); err != nil {
				log.Error().Err(err).Msg("config validation failed")
				os.Exit(exitcode.UsageError)
			}

			res, err := refload.Inspect(cfg.FilePath, cfg.Kind, sampleSize)
			if err != nil {
				log.Error().Err(err).Msg("inspection failed")
				os.Exit(exitcode.ValidationError)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== carecost inspect ===")
			fmt.Fprintf(out, "File:       %s\n", res.FilePath)
			fmt.Fprintf(out, "Kind:       %s\n", res.Kind)
			fmt.Fprintf(out, "SHA-256:    %s\n", res.FileSHA256)
			fmt.Fprintf(out, "Size:       %d bytes\n", res.FileSize)
			fmt.Fprintf(out, "Total rows: %d\n", res.NumRows)
			fmt.Fprintf(out, "Sampled:    %d rows, %d rejected\n", res.Sampled, res.Rejected)
			fmt.Fprintln(out)

			labels := make([]string, 0, len(res.Labels))
			for l := range res.Labels {
				labels = append(labels, l)
			}
			sort.Strings(labels)
			for _, l := range labels {
				n := res.Labels[l]
				projected := n
				if res.Sampled > 0 {
					projected = n * res.NumRows / res.Sampled
				}
				fmt.Fprintf(out, "  %-10s %6d sampled → ~%d projected rows\n", l, n, projected)
			}
			fmt.Fprintln(out, "Schema validation: OK")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to Parquet file (required)")
	f.StringVar(&cfg.Kind, "kind", cfg.Kind, "Reference kind: fee_schedule or geo_factors")
	f.Int64Var(&sampleSize, "sample", 1000, "Rows to sample")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
