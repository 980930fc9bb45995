package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/benchsweep/pkg/config"
	"github.com/Sumatoshi-tech/benchsweep/pkg/observability"
	"github.com/Sumatoshi-tech/benchsweep/pkg/render"
	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
	"github.com/Sumatoshi-tech/benchsweep/pkg/version"
)

// ReportCommand holds the flag values of the report command.
type ReportCommand struct {
	format   string
	output   string
	logLevel string
}

// NewReportCommand creates the root benchreport command.
func NewReportCommand() *cobra.Command {
	rc := &ReportCommand{}

	cmd := &cobra.Command{
		Use:   "benchreport [flags] <file>",
		Short: "Filter and total one benchmark CSV report",
		Long: `Benchreport reads a benchmark CSV file, keeps the name, iterations,
real_time and cpu_time columns, appends a total row and prints the result.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", config.DefaultOutputFormat, "Output format: csv, text, json, yaml, plot")
	cmd.Flags().StringVarP(&rc.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&rc.logLevel, "log-level", config.DefaultLoggingLevel, "Log level: debug, info, warn, error")

	return cmd
}

func (rc *ReportCommand) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_, err := fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())

		return err
	}

	format, err := render.ParseFormat(rc.format)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Logging.Level = rc.logLevel

	providers, err := initObservability(cfg, observability.ModeReport, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	table, err := Transform(args[0])
	if err == nil {
		providers.Logger.DebugContext(cmd.Context(), "report totaled",
			"file", args[0], "benchmarks", len(table.Rows())-1)

		err = render.WriteOutput(cmd.OutOrStdout(), rc.output, format, table)
	}

	return errors.Join(err, providers.Shutdown(context.Background()))
}

// Transform reads the benchmark CSV file at path, keeps the recognized
// columns and appends the totals row.
func Transform(path string) (report.Table, error) {
	raw, err := report.ReadFile(path)
	if err != nil {
		return nil, err
	}

	filtered, err := report.FilterColumns(raw)
	if err != nil {
		return nil, err
	}

	return report.AppendTotals(filtered)
}
