// Package sweep walks the selected commit history, runs the benchmark for
// each commit in turn and collates the per-commit timings into one table.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/benchsweep/pkg/bench"
	"github.com/Sumatoshi-tech/benchsweep/pkg/command"
	"github.com/Sumatoshi-tech/benchsweep/pkg/gitlib"
	"github.com/Sumatoshi-tech/benchsweep/pkg/observability"
	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
	"github.com/Sumatoshi-tech/benchsweep/pkg/results"
)

// Options selects the commits of a sweep.
type Options struct {
	gitlib.EnumerateOptions

	// Restore checks the originally checked-out ref out again after a
	// completed sweep.
	Restore bool
}

// Result is the outcome of a completed sweep.
type Result struct {
	// Outcomes holds one entry per visited commit, oldest first.
	Outcomes []bench.Outcome
	// Table is the collated report: one row per commit with results.
	Table report.Table

	Visited     int
	WithResults int
	Failed      int
	Elapsed     time.Duration
}

// Records returns the collatable records of every visited commit.
func (r Result) Records() []results.CommitRecord {
	records := make([]results.CommitRecord, len(r.Outcomes))
	for i, o := range r.Outcomes {
		records[i] = o.Record()
	}

	return records
}

// Sweeper drives a benchmark sweep. Commits are processed strictly one after
// the other; the runner's build directory is reused for every commit.
type Sweeper struct {
	runner    *bench.Runner
	commander command.Commander
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *observability.SweepMetrics
	progress  *Progress
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

// WithTracer sets the tracer used for the sweep span.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Sweeper) { s.tracer = tracer }
}

// WithMetrics records per-commit metrics.
func WithMetrics(metrics *observability.SweepMetrics) Option {
	return func(s *Sweeper) { s.metrics = metrics }
}

// WithProgress prints a progress line after every commit.
func WithProgress(progress *Progress) Option {
	return func(s *Sweeper) { s.progress = progress }
}

// New creates a Sweeper. The commander runs git for enumeration and HEAD
// restoration; runner owns the per-commit work.
func New(runner *bench.Runner, commander command.Commander, opts ...Option) *Sweeper {
	s := &Sweeper{
		runner:    runner,
		commander: commander,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    nooptrace.NewTracerProvider().Tracer("benchsweep"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run sweeps the selected commits and returns the collated table.
//
// An invalid repository, a failed enumeration, a failed checkout, malformed
// benchmark output, or cancellation aborts the sweep and no result is
// returned. Commits whose configure, build or run fails are counted and
// left out of the table.
func (s *Sweeper) Run(ctx context.Context, opts Options) (Result, error) {
	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "benchsweep.sweep",
		trace.WithAttributes(attribute.String(observability.AttrRepo, opts.RepoPath)))
	defer span.End()

	res, err := s.run(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sweep aborted")

		return Result{}, err
	}

	res.Elapsed = time.Since(started)

	span.SetAttributes(
		attribute.Int(observability.AttrVisited, res.Visited),
		attribute.Int(observability.AttrFailed, res.Failed),
	)

	s.logger.InfoContext(ctx, "sweep complete",
		"visited", humanize.Comma(int64(res.Visited)),
		"with_results", humanize.Comma(int64(res.WithResults)),
		"failed", humanize.Comma(int64(res.Failed)),
		"benchmarks", humanize.Comma(int64(len(res.Table.Header())-1)),
		"elapsed", res.Elapsed.Round(time.Millisecond).String(),
	)

	return res, nil
}

func (s *Sweeper) run(ctx context.Context, opts Options) (Result, error) {
	repo, err := gitlib.OpenRepository(opts.RepoPath)
	if err != nil {
		return Result{}, err
	}
	defer repo.Free()

	var origin string

	if opts.Restore {
		origin, err = repo.HeadName()
		if err != nil {
			s.logger.WarnContext(ctx, "HEAD will not be restored", "error", err)
		}
	}

	if opts.Merges && opts.NoMerges {
		s.logger.WarnContext(ctx, "--merges and --no-merges together select no commits")
	}

	commits, err := gitlib.Enumerate(ctx, s.commander, opts.EnumerateOptions)
	if err != nil {
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "sweeping commits",
		"commits", humanize.Comma(int64(len(commits))), "repo", opts.RepoPath)

	res := Result{Outcomes: make([]bench.Outcome, 0, len(commits))}

	err = s.visit(ctx, commits, &res)

	s.progress.Done()

	if err != nil {
		return Result{}, err
	}

	if origin != "" && len(commits) > 0 {
		s.restore(ctx, opts.RepoPath, origin)
	}

	res.Table = results.Collate(res.Records())

	return res, nil
}

func (s *Sweeper) visit(ctx context.Context, commits []gitlib.CommitID, res *Result) error {
	for i, commit := range commits {
		err := ctx.Err()
		if err != nil {
			return fmt.Errorf("sweep interrupted before %s: %w", commit.Short(), err)
		}

		commitCtx := observability.WithCommit(ctx, commit.Short())

		outcome, err := s.runner.Run(commitCtx, commit)
		if err != nil {
			return err
		}

		res.Outcomes = append(res.Outcomes, outcome)
		res.Visited++

		stage := ""

		switch {
		case outcome.Status == bench.StatusFailed:
			res.Failed++
			stage = outcome.FailedStage.String()

			s.logger.InfoContext(commitCtx, "commit failed",
				"commit", commit.Short(), "stage", stage, "error", outcome.Err,
				"duration", outcome.Duration.Round(time.Millisecond).String())
		case outcome.Results.Empty():
			s.logger.InfoContext(commitCtx, "commit produced no benchmarks",
				"commit", commit.Short(), "duration", outcome.Duration.Round(time.Millisecond).String())
		default:
			res.WithResults++

			s.logger.InfoContext(commitCtx, "commit benchmarked",
				"commit", commit.Short(), "benchmarks", outcome.Results.Len(),
				"duration", outcome.Duration.Round(time.Millisecond).String())
		}

		s.metrics.RecordCommit(commitCtx, outcome.Status.String(), stage, outcome.Duration, outcome.Results.Len())
		s.progress.Step(i+1, len(commits), commit, outcome.Status)
	}

	return nil
}

func (s *Sweeper) restore(ctx context.Context, repoPath, ref string) {
	err := gitlib.Checkout(ctx, s.commander, repoPath, ref)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to restore HEAD", "ref", ref, "error", err)

		return
	}

	s.logger.DebugContext(ctx, "restored HEAD", "ref", ref)
}
