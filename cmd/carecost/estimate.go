package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/costcalc"
	"github.com/gyeh/carecost/internal/exitcode"
	"github.com/gyeh/carecost/internal/logging"
	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/model"
)

// estimateReport is the JSON document estimate writes.
type estimateReport struct {
	Items  []model.CareItemCostOutput `json:"items"`
	Totals costcalc.PlanTotals        `json:"totals"`
}

func newEstimateCmd(cfg *config.Config) *cobra.Command {
	var inputPath, metricsPath string
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate line item costs from a JSON file (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
			ctx := cmd.Context()

			inputs, err := readInputs(inputPath, cmd.InOrStdin())
			if err != nil {
				log.Error().Err(err).Msg("invalid input")
				os.Exit(exitcode.InputError)
			}

			reg := prometheus.NewRegistry()
			deps, err := buildEngine(ctx, cfg, log, metrics.New(reg))
			if err != nil {
				log.Error().Err(err).Msg("engine setup failed")
				var dbErr errDBConn
				if errors.As(err, &dbErr) {
					os.Exit(exitcode.DBConnError)
				}
				os.Exit(exitcode.UsageError)
			}
			defer deps.Close()

			outs := deps.engine.CalculatePlan(ctx, inputs)
			if err := writeReport(cmd.OutOrStdout(), outs); err != nil {
				return err
			}

			if metricsPath != "" {
				if err := prometheus.WriteToTextfile(metricsPath, reg); err != nil {
					log.Warn().Err(err).Str("path", metricsPath).Msg("write metrics failed")
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&inputPath, "input", "-", "JSON file with one item or an array of items; - reads stdin")
	f.StringVar(&metricsPath, "metrics-out", "", "Write Prometheus metrics in text format to this file")
	return cmd
}

// readInputs decodes a single CareItemCostInput object or an array of them.
func readInputs(path string, stdin io.Reader) ([]model.CareItemCostInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("read input: empty document")
	}
	if data[0] == '[' {
		var items []model.CareItemCostInput
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		return items, nil
	}
	var item model.CareItemCostInput
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return []model.CareItemCostInput{item}, nil
}

func writeReport(w io.Writer, outs []model.CareItemCostOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(estimateReport{Items: outs, Totals: costcalc.Totals(outs)}); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
