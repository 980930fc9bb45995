package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal   = "benchsweep.commits"
	metricCommitDuration = "benchsweep.commit.duration"
	metricStageFailures  = "benchsweep.stage.failures"
	metricBenchmarks     = "benchsweep.benchmarks"
)

// durationBucketBoundaries spans 1s to 2h per commit.
var durationBucketBoundaries = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800, 3600, 7200}

// SweepMetrics holds the OTel instruments recorded while sweeping history.
// A nil *SweepMetrics records nothing.
type SweepMetrics struct {
	commits       metric.Int64Counter
	duration      metric.Float64Histogram
	stageFailures metric.Int64Counter
	benchmarks    metric.Int64Counter
}

// NewSweepMetrics creates the sweep instruments from the given meter.
func NewSweepMetrics(mt metric.Meter) (*SweepMetrics, error) {
	b := metricBuilder{meter: mt}

	sm := &SweepMetrics{
		commits: b.counter(metricCommitsTotal,
			"Commits visited, by outcome status", "{commit}"),
		duration: b.histogram(metricCommitDuration,
			"Wall time spent on one commit", "s", durationBucketBoundaries...),
		stageFailures: b.counter(metricStageFailures,
			"Commits whose build or benchmark stage failed, by stage", "{commit}"),
		benchmarks: b.counter(metricBenchmarks,
			"Benchmark timings collected", "{benchmark}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return sm, nil
}

// RecordCommit records one visited commit.
// Stage is empty for commits that produced results.
func (sm *SweepMetrics) RecordCommit(ctx context.Context, status, stage string, duration time.Duration, benchmarks int) {
	if sm == nil {
		return
	}

	statusAttr := metric.WithAttributes(attribute.String(AttrStatus, status))

	sm.commits.Add(ctx, 1, statusAttr)
	sm.duration.Record(ctx, duration.Seconds(), statusAttr)

	if stage != "" {
		sm.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
	}

	if benchmarks > 0 {
		sm.benchmarks.Add(ctx, int64(benchmarks))
	}
}

// metricBuilder accumulates instrument creation errors so a set of
// instruments can be built with a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := b.meter.Float64Histogram(name, opts...)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("create %s: %w", name, err))
	}
}
