package observability

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute keys emitted by the sweep.
const (
	AttrCommit     = "commit"
	AttrStage      = "stage"
	AttrStatus     = "status"
	AttrBenchmarks = "benchmarks"
	AttrExitCode   = "exit_code"
	AttrRepo       = "benchsweep.repo"
	AttrVisited    = "benchsweep.visited"
	AttrFailed     = "benchsweep.failed"
)

// exportedKeys may leave the host unchanged.
var exportedKeys = map[string]bool{
	AttrCommit:     true,
	AttrStage:      true,
	AttrStatus:     true,
	AttrBenchmarks: true,
	AttrExitCode:   true,
	AttrVisited:    true,
	AttrFailed:     true,
	"error":        true,
}

// exportedPrefixes cover semantic-convention families kept as-is.
var exportedPrefixes = []string{"error.", "exception."}

// pathKeys hold local filesystem paths. Only the base name is exported.
var pathKeys = map[string]bool{
	AttrRepo: true,
}

// spanScrubber sits in front of the exporting processor and rewrites each
// finished span so that only sweep attributes reach the collector.
type spanScrubber struct {
	next   sdktrace.SpanProcessor
	logger *slog.Logger
}

// NewAttributeFilter wraps next with a processor that drops attributes
// outside the sweep vocabulary and reduces path attributes to their base
// name. Dropped keys are logged at debug level when logger is non-nil.
func NewAttributeFilter(next sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &spanScrubber{next: next, logger: logger}
}

func (s *spanScrubber) OnStart(parent context.Context, span sdktrace.ReadWriteSpan) {
	s.next.OnStart(parent, span)
}

func (s *spanScrubber) OnEnd(span sdktrace.ReadOnlySpan) {
	s.next.OnEnd(&scrubbedSpan{ReadOnlySpan: span, attrs: s.scrub(span.Attributes())})
}

func (s *spanScrubber) Shutdown(ctx context.Context) error {
	if err := s.next.Shutdown(ctx); err != nil {
		return fmt.Errorf("span scrubber shutdown: %w", err)
	}

	return nil
}

func (s *spanScrubber) ForceFlush(ctx context.Context) error {
	if err := s.next.ForceFlush(ctx); err != nil {
		return fmt.Errorf("span scrubber flush: %w", err)
	}

	return nil
}

func (s *spanScrubber) scrub(attrs []attribute.KeyValue) []attribute.KeyValue {
	kept := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		key := string(kv.Key)

		switch {
		case pathKeys[key]:
			kept = append(kept, kv.Key.String(filepath.Base(kv.Value.Emit())))
		case exported(key):
			kept = append(kept, kv)
		default:
			if s.logger != nil {
				s.logger.Debug("span attribute dropped", "key", key)
			}
		}
	}

	return kept
}

func exported(key string) bool {
	if exportedKeys[key] {
		return true
	}

	for _, prefix := range exportedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

type scrubbedSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *scrubbedSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
