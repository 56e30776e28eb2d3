package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spanline/makeready"
	"github.com/spanline/makeready/internal/export"
	"github.com/spanline/makeready/internal/ingest"
	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/logging"
)

type runFlags struct {
	nodes       string
	connections string
	sections    string
	attachments string
	qc          []string
	routes      string
	output      string
	tolerance   float64
}

func newRunCommand() *cobra.Command {
	flags := &runFlags{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile survey data into make-ready output rows",
		RunE: func(c *cobra.Command, _ []string) error {
			return runPipeline(c, flags)
		},
	}

	runCmd.Flags().StringVar(&flags.nodes, "nodes", "", "node sheet CSV (required)")
	runCmd.Flags().StringVar(&flags.connections, "connections", "", "connection sheet CSV (required)")
	runCmd.Flags().StringVar(&flags.sections, "sections", "", "midspan section sheet CSV")
	runCmd.Flags().StringVar(&flags.attachments, "attachments", "", "combined attachment survey CSV")
	runCmd.Flags().StringSliceVar(&flags.qc, "qc", nil, "QC correction sheet CSV (repeatable)")
	runCmd.Flags().StringVar(&flags.routes, "routes", "", "manual route text file")
	runCmd.Flags().StringVarP(&flags.output, "output", "o", "", "output CSV path (required)")
	runCmd.Flags().Float64Var(&flags.tolerance, "tolerance", -1, "QC span length tolerance in feet")

	_ = runCmd.MarkFlagRequired("nodes")
	_ = runCmd.MarkFlagRequired("connections")
	_ = runCmd.MarkFlagRequired("output")

	return runCmd
}

func runPipeline(c *cobra.Command, flags *runFlags) error {
	cfg, err := loadEngineConfig(c)
	if err != nil {
		return err
	}
	if flags.tolerance >= 0 {
		cfg.SpanTolerance = flags.tolerance
	}

	data, err := ingest.LoadSurvey(cfg, ingest.Paths{
		Nodes:       flags.nodes,
		Connections: flags.connections,
		Sections:    flags.sections,
		Attachments: flags.attachments,
	})
	if err != nil {
		return err
	}

	opts := []makeready.Option{
		withProgressLogging(),
	}
	if len(flags.qc) > 0 {
		sheet, err := ingest.LoadQC(flags.qc, cfg.IgnoreSCIDKeywords)
		if err != nil {
			return err
		}
		opts = append(opts, makeready.WithQC(sheet))
	}
	if flags.routes != "" {
		routes, err := ingest.LoadRoutes(flags.routes, cfg.IgnoreSCIDKeywords)
		if err != nil {
			return err
		}
		opts = append(opts, makeready.WithManualRoutes(routes))
	}

	pipeline, err := makeready.New(cfg, opts...)
	if err != nil {
		return err
	}
	result, err := pipeline.Run(c.Context(), data)
	if err != nil {
		return err
	}

	f, err := os.Create(flags.output)
	if err != nil {
		return errors.WrapIO("create", flags.output, err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, cfg, result.Rows); err != nil {
		return errors.WrapIO("write", flags.output, err)
	}

	logging.Info().Str("run_id", result.RunID).Int("rows", result.Stats.RowsEmitted).
		Str("output", flags.output).Msg("output written")
	return nil
}

// withProgressLogging reports stage progress through the default logger.
func withProgressLogging() makeready.Option {
	return makeready.WithProgress(func(stage makeready.Stage, percent int, msg string) bool {
		logging.Info().Str("stage", string(stage)).Int("percent", percent).Msg(msg)
		return true
	})
}

// loadEngineConfig resolves the engine configuration: the --config flag when
// given, otherwise makeready.yaml in the working directory when present,
// otherwise defaults.
func loadEngineConfig(c *cobra.Command) (*config.Config, error) {
	path, _ := c.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default(), nil
}

const defaultConfigPath = "makeready.yaml"
