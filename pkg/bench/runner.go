// Package bench rebuilds and runs the benchmark binary for one commit at a
// time and extracts per-benchmark timings from its CSV output.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/benchsweep/pkg/command"
	"github.com/Sumatoshi-tech/benchsweep/pkg/gitlib"
	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
	"github.com/Sumatoshi-tech/benchsweep/pkg/results"
)

// ErrExternalTool indicates that configure, build or run of the benchmark
// binary failed for one commit. It is recovered from at sweep level.
var ErrExternalTool = errors.New("external tool failed")

const (
	attrCommit = "commit"
	attrStage  = "stage"
	attrStatus = "status"
)

// Config describes how to build and run the benchmark binary.
type Config struct {
	// RepoPath is the checkout that is swept.
	RepoPath string
	// BuildDir is where configure, build, run and clean execute.
	BuildDir string

	ConfigureCommand string
	ConfigureArgs    []string

	BuildCommand string
	Target       string
	CleanTarget  string
	Jobs         int

	Binary     string
	FormatFlag string
	Filter     string
}

// DefaultConfig returns the CMake/make defaults for a Google Benchmark suite.
func DefaultConfig() Config {
	return Config{
		BuildDir:         ".",
		ConfigureCommand: "cmake",
		ConfigureArgs:    []string{"-DCMAKE_BUILD_TYPE=Release", "-DCNL_DEV=ON"},
		BuildCommand:     "make",
		Target:           "Benchmark",
		CleanTarget:      "clean",
		Jobs:             1,
		Binary:           "./Benchmark",
		FormatFlag:       "--benchmark_format=csv",
		Filter:           ".*",
	}
}

// ConfigureArgv returns the configure command line.
func (c Config) ConfigureArgv() []string {
	argv := []string{c.ConfigureCommand, c.RepoPath}

	return append(argv, c.ConfigureArgs...)
}

// BuildArgv returns the build command line.
func (c Config) BuildArgv() []string {
	return []string{c.BuildCommand, c.Target, "-j", strconv.Itoa(max(c.Jobs, 1))}
}

// RunArgv returns the benchmark command line.
func (c Config) RunArgv() []string {
	filter := c.Filter
	if filter == "" {
		filter = ".*"
	}

	return []string{c.Binary, c.FormatFlag, "--benchmark_filter=" + filter}
}

// CleanArgv returns the clean command line, or nil when cleaning is disabled.
func (c Config) CleanArgv() []string {
	if c.CleanTarget == "" {
		return nil
	}

	return []string{c.BuildCommand, c.CleanTarget}
}

// Outcome is the tagged result of processing one commit.
type Outcome struct {
	Commit  gitlib.CommitID
	Status  Status
	Results *results.Map
	// FailedStage is the stage that failed when Status is StatusFailed.
	FailedStage Stage
	// Err explains a StatusFailed outcome.
	Err      error
	Duration time.Duration
}

// Record converts the outcome into a collatable record.
func (o Outcome) Record() results.CommitRecord {
	return results.CommitRecord{Commit: o.Commit, Results: o.Results}
}

// Runner drives the per-commit state machine.
type Runner struct {
	cfg       Config
	commander command.Commander
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer sets the tracer used for commit and stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, commander command.Commander, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		commander: commander,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    nooptrace.NewTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Config returns the runner configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run checks out commit, builds and runs the benchmark, and cleans up.
//
// A failed checkout or malformed benchmark output is returned as an error and
// must abort the sweep. A failed configure, build or run yields a
// StatusFailed outcome with empty results and a nil error.
func (r *Runner) Run(ctx context.Context, commit gitlib.CommitID) (Outcome, error) {
	started := time.Now()

	ctx, span := r.tracer.Start(ctx, "benchsweep.commit",
		trace.WithAttributes(attribute.String(attrCommit, commit.String())))
	defer span.End()

	outcome := Outcome{Commit: commit, Results: &results.Map{}}

	err := r.checkout(ctx, commit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")

		return r.finish(outcome, started), err
	}

	stdout, stage, err := r.buildAndRun(ctx)
	if err != nil {
		if !errors.Is(err, ErrExternalTool) {
			span.RecordError(err)
			span.SetStatus(codes.Error, stage.String()+" aborted")

			return r.finish(outcome, started), err
		}

		outcome.Status = StatusFailed
		outcome.FailedStage = stage
		outcome.Err = err

		span.SetAttributes(attribute.String(attrStatus, outcome.Status.String()))
		r.logger.DebugContext(ctx, "commit has no benchmark results",
			attrCommit, commit.Short(), attrStage, stage.String(), "error", err)

		return r.finish(outcome, started), nil
	}

	r.clean(ctx)

	res, err := ExtractResults(stdout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed benchmark output")

		return r.finish(outcome, started), fmt.Errorf("commit %s: %w", commit, err)
	}

	outcome.Results = res

	span.SetAttributes(
		attribute.String(attrStatus, outcome.Status.String()),
		attribute.Int("benchmarks", res.Len()),
	)

	return r.finish(outcome, started), nil
}

func (r *Runner) finish(outcome Outcome, started time.Time) Outcome {
	outcome.Duration = time.Since(started)

	return outcome
}

func (r *Runner) checkout(ctx context.Context, commit gitlib.CommitID) error {
	ctx, span := r.tracer.Start(ctx, "benchsweep.stage."+StageCheckout.String())
	defer span.End()

	r.logger.DebugContext(ctx, "stage", attrCommit, commit.Short(), attrStage, StageCheckout.String())

	err := gitlib.Checkout(ctx, r.commander, r.cfg.RepoPath, commit.String())
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("commit %s: %w", commit, err)
	}

	return nil
}

// buildAndRun runs configure, build and the benchmark binary, returning the
// benchmark's stdout. On failure it reports the stage that failed.
func (r *Runner) buildAndRun(ctx context.Context) (string, Stage, error) {
	steps := []struct {
		stage Stage
		argv  []string
	}{
		{StageConfigure, r.cfg.ConfigureArgv()},
		{StageBuild, r.cfg.BuildArgv()},
		{StageRun, r.cfg.RunArgv()},
	}

	var stdout string

	for _, step := range steps {
		res, err := r.exec(ctx, step.stage, step.argv)
		if err != nil {
			return "", step.stage, err
		}

		stdout = res.Stdout
	}

	return stdout, StageRun, nil
}

func (r *Runner) clean(ctx context.Context) {
	argv := r.cfg.CleanArgv()
	if argv == nil {
		return
	}

	_, err := r.exec(ctx, StageClean, argv)
	if err != nil {
		r.logger.WarnContext(ctx, "clean failed", attrStage, StageClean.String(), "error", err)
	}
}

// exec runs one stage command in the build directory. A failure to start or
// a non-zero exit is reported as ErrExternalTool; context cancellation is
// passed through unchanged.
func (r *Runner) exec(ctx context.Context, stage Stage, argv []string) (command.Result, error) {
	ctx, span := r.tracer.Start(ctx, "benchsweep.stage."+stage.String())
	defer span.End()

	r.logger.DebugContext(ctx, "stage", attrStage, stage.String(), "command", command.Line(argv))

	res, err := r.commander.Run(ctx, r.cfg.BuildDir, argv)
	if err != nil {
		span.RecordError(err)

		if ctx.Err() != nil {
			return res, fmt.Errorf("%s: %w", stage, ctx.Err())
		}

		return res, fmt.Errorf("%w: %s: %w", ErrExternalTool, stage, err)
	}

	if !res.Success() {
		span.SetAttributes(attribute.Int("exit_code", res.ExitCode))
		span.SetStatus(codes.Error, "exit status "+strconv.Itoa(res.ExitCode))

		return res, fmt.Errorf("%w: %s: %s exited with status %d: %s",
			ErrExternalTool, stage, command.Line(argv), res.ExitCode, lastLine(res.Stderr))
	}

	return res, nil
}

// ExtractResults maps benchmark names to cpu_time values from the benchmark
// binary's CSV output. Empty output yields an empty map.
func ExtractResults(output string) (*results.Map, error) {
	m := &results.Map{}

	if strings.TrimSpace(output) == "" {
		return m, nil
	}

	raw, err := report.Parse(output)
	if err != nil {
		return nil, fmt.Errorf("parse benchmark output: %w", err)
	}

	table, err := report.FilterColumns(raw)
	if err != nil {
		return nil, fmt.Errorf("filter benchmark output: %w", err)
	}

	nameIdx := table.ColumnIndex(report.ColumnName)
	cpuIdx := table.ColumnIndex(report.ColumnCPUTime)

	if nameIdx < 0 || cpuIdx < 0 {
		return nil, fmt.Errorf("%w: benchmark output lacks %q or %q column",
			report.ErrFormat, report.ColumnName, report.ColumnCPUTime)
	}

	for _, row := range table.Rows() {
		m.Set(row[nameIdx], row[cpuIdx])
	}

	return m, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}

	return s
}
