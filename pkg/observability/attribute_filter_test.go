package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/benchsweep/pkg/observability"
)

func exportOne(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	_, span := tp.Tracer("test").Start(context.Background(), "commit")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	got := make(map[string]any, len(spans[0].Attributes))
	for _, kv := range spans[0].Attributes {
		got[string(kv.Key)] = kv.Value.AsInterface()
	}

	return got
}

func TestAttributeFilter_KeepsSweepKeys(t *testing.T) {
	t.Parallel()

	got := exportOne(t, nil,
		attribute.String(observability.AttrCommit, "0123abcd"),
		attribute.String(observability.AttrStatus, "failed"),
		attribute.String(observability.AttrStage, "build"),
		attribute.Int(observability.AttrExitCode, 2),
		attribute.Int(observability.AttrBenchmarks, 7),
		attribute.Int(observability.AttrVisited, 3),
		attribute.String("error.type", "exit"),
	)

	assert.Equal(t, map[string]any{
		"commit":             "0123abcd",
		"status":             "failed",
		"stage":              "build",
		"exit_code":          int64(2),
		"benchmarks":         int64(7),
		"benchsweep.visited": int64(3),
		"error.type":         "exit",
	}, got)
}

func TestAttributeFilter_DropsForeignKeys(t *testing.T) {
	t.Parallel()

	got := exportOne(t, nil,
		attribute.String("user.name", "alice"),
		attribute.String("env.HOME", "/home/alice"),
		attribute.String("argv", "make -j8"),
		attribute.String(observability.AttrStatus, "ok"),
	)

	assert.Equal(t, map[string]any{"status": "ok"}, got)
}

func TestAttributeFilter_ReducesRepoPath(t *testing.T) {
	t.Parallel()

	got := exportOne(t, nil, attribute.String(observability.AttrRepo, "/home/alice/src/engine"))

	assert.Equal(t, "engine", got[observability.AttrRepo])
}

func TestAttributeFilter_LogsDroppedKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	exportOne(t, logger, attribute.String("build.env", "CC=clang"))

	assert.Contains(t, buf.String(), "span attribute dropped")
	assert.Contains(t, buf.String(), "build.env")
}
