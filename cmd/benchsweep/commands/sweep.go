// Package commands implements the benchsweep and benchreport command lines.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/benchsweep/pkg/bench"
	"github.com/Sumatoshi-tech/benchsweep/pkg/command"
	"github.com/Sumatoshi-tech/benchsweep/pkg/config"
	"github.com/Sumatoshi-tech/benchsweep/pkg/gitlib"
	"github.com/Sumatoshi-tech/benchsweep/pkg/observability"
	"github.com/Sumatoshi-tech/benchsweep/pkg/render"
	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
	"github.com/Sumatoshi-tech/benchsweep/pkg/sweep"
	"github.com/Sumatoshi-tech/benchsweep/pkg/version"
)

// SweepJob is everything a sweep needs once flags and config are merged.
type SweepJob struct {
	Config    *config.Config
	RepoPath  string
	BuildDir  string
	Providers observability.Providers
	Progress  *sweep.Progress
}

// sweepExecutor runs a sweep and returns its collated table.
type sweepExecutor func(ctx context.Context, job SweepJob) (report.Table, error)

// SweepCommand holds the flag values of the sweep command.
type SweepCommand struct {
	configPath  string
	buildDir    string
	rangeSpec   string
	filter      string
	merges      bool
	noMerges    bool
	maxCommits  int
	jobs        int
	format      string
	output      string
	quiet       bool
	restore     bool
	metricsFile string
	logLevel    string
	logJSON     bool

	exec sweepExecutor
}

// NewSweepCommand creates the root benchsweep command.
func NewSweepCommand() *cobra.Command {
	return newSweepCommandWithDeps(runSweep)
}

func newSweepCommandWithDeps(exec sweepExecutor) *cobra.Command {
	sc := &SweepCommand{exec: exec}

	cmd := &cobra.Command{
		Use:   "benchsweep [flags] <repo>",
		Short: "Benchmark every commit that touched the library",
		Long: `Benchsweep checks out each commit of a repository that touched the library
headers, the benchmark sources or the build scripts, rebuilds the benchmark
binary, runs it and prints one table of cpu_time per benchmark and commit.

Commits whose configure, build or run fails are skipped.`,
		Args:          cobra.ExactArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          sc.run,
	}

	cmd.Flags().StringVar(&sc.configPath, "config", "", "Config file (default: .benchsweep.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&sc.buildDir, "build", config.DefaultBuildDirectory, "Build directory")
	cmd.Flags().StringVar(&sc.rangeSpec, "range", "", "Revision range to sweep (default: entire history)")
	cmd.Flags().StringVar(&sc.filter, "filter", config.DefaultBenchmarkFilter, "Benchmark filter regex")
	cmd.Flags().BoolVar(&sc.merges, "merges", false, "Only sweep merge commits")
	cmd.Flags().BoolVar(&sc.noMerges, "no-merges", false, "Skip merge commits")
	cmd.Flags().IntVar(&sc.maxCommits, "max_commits", 0, "Sweep at most the N most recent matching commits (0 = no limit)")
	cmd.Flags().IntVarP(&sc.jobs, "jobs", "j", config.DefaultBuildJobs, "Parallel build jobs")
	cmd.Flags().StringVar(&sc.format, "format", config.DefaultOutputFormat, "Output format: csv, text, json, yaml, plot")
	cmd.Flags().StringVarP(&sc.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVarP(&sc.quiet, "quiet", "q", false, "Disable progress output")
	cmd.Flags().BoolVar(&sc.restore, "restore", config.DefaultGitRestore, "Check the original ref out again after the sweep")
	cmd.Flags().StringVar(&sc.metricsFile, "metrics-file", "", "Write sweep metrics to a Prometheus textfile")
	cmd.Flags().StringVar(&sc.logLevel, "log-level", config.DefaultLoggingLevel, "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&sc.logJSON, "log-json", false, "Emit logs as JSON")

	return cmd
}

func (sc *SweepCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(sc.configPath)
	if err != nil {
		return err
	}

	sc.applyFlags(cmd.Flags(), cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	repoPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve repository path: %w", err)
	}

	buildDir, err := filepath.Abs(cfg.Build.Directory)
	if err != nil {
		return fmt.Errorf("resolve build directory: %w", err)
	}

	providers, err := initObservability(cfg, observability.ModeSweep, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := SweepJob{
		Config:    cfg,
		RepoPath:  repoPath,
		BuildDir:  buildDir,
		Providers: providers,
	}

	if !sc.quiet {
		job.Progress = sweep.NewProgress(cmd.ErrOrStderr(), !color.NoColor)
	}

	table, err := sc.exec(ctx, job)

	err = errors.Join(err, providers.WriteMetrics(), providers.Shutdown(context.WithoutCancel(ctx)))
	if err != nil {
		return err
	}

	return render.WriteOutput(cmd.OutOrStdout(), cfg.Output.Path, format, table)
}

// applyFlags overrides config values with the flags given on the command line.
func (sc *SweepCommand) applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("build") {
		cfg.Build.Directory = sc.buildDir
	}

	if flags.Changed("range") {
		cfg.Git.Range = sc.rangeSpec
	}

	if flags.Changed("filter") {
		cfg.Benchmark.Filter = sc.filter
	}

	if flags.Changed("merges") {
		cfg.Git.Merges = sc.merges
	}

	if flags.Changed("no-merges") {
		cfg.Git.NoMerges = sc.noMerges
	}

	if flags.Changed("max_commits") {
		cfg.Git.MaxCommits = sc.maxCommits
	}

	if flags.Changed("jobs") {
		cfg.Build.Jobs = sc.jobs
	}

	if flags.Changed("format") {
		cfg.Output.Format = sc.format
	}

	if flags.Changed("output") {
		cfg.Output.Path = sc.output
	}

	if flags.Changed("restore") {
		cfg.Git.Restore = sc.restore
	}

	if flags.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = sc.metricsFile
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level = sc.logLevel
	}

	if flags.Changed("log-json") {
		cfg.Logging.JSON = sc.logJSON
	}
}

// BenchConfig maps the configuration onto the per-commit runner settings.
func BenchConfig(cfg *config.Config, repoPath, buildDir string) bench.Config {
	return bench.Config{
		RepoPath:         repoPath,
		BuildDir:         buildDir,
		ConfigureCommand: cfg.Build.ConfigureCommand,
		ConfigureArgs:    cfg.Build.ConfigureArgs,
		BuildCommand:     cfg.Build.BuildCommand,
		Target:           cfg.Build.Target,
		CleanTarget:      cfg.Build.CleanTarget,
		Jobs:             cfg.Build.Jobs,
		Binary:           cfg.Benchmark.Binary,
		FormatFlag:       cfg.Benchmark.FormatFlag,
		Filter:           cfg.Benchmark.Filter,
	}
}

// SweepOptions maps the configuration onto the commit selection.
func SweepOptions(cfg *config.Config, repoPath string) sweep.Options {
	return sweep.Options{
		EnumerateOptions: gitlib.EnumerateOptions{
			RepoPath: repoPath,
			Range:    cfg.Git.Range,
			Merges:   cfg.Git.Merges,
			NoMerges: cfg.Git.NoMerges,
			Paths:    cfg.Git.WatchPaths,
			MaxCount: cfg.Git.MaxCommits,
		},
		Restore: cfg.Git.Restore,
	}
}

func runSweep(ctx context.Context, job SweepJob) (report.Table, error) {
	err := os.MkdirAll(job.BuildDir, 0o750)
	if err != nil {
		return nil, fmt.Errorf("create build directory: %w", err)
	}

	metrics, err := observability.NewSweepMetrics(job.Providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create sweep metrics: %w", err)
	}

	commander := command.NewExecCommander()

	runner := bench.NewRunner(BenchConfig(job.Config, job.RepoPath, job.BuildDir), commander,
		bench.WithLogger(job.Providers.Logger),
		bench.WithTracer(job.Providers.Tracer),
	)

	sweeper := sweep.New(runner, commander,
		sweep.WithLogger(job.Providers.Logger),
		sweep.WithTracer(job.Providers.Tracer),
		sweep.WithMetrics(metrics),
		sweep.WithProgress(job.Progress),
	)

	res, err := sweeper.Run(ctx, SweepOptions(job.Config, job.RepoPath))
	if err != nil {
		return nil, err
	}

	return res.Table, nil
}

func initObservability(cfg *config.Config, mode observability.AppMode, logOutput io.Writer) (observability.Providers, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = logOutput
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
		obsCfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}
