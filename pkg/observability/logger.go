package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type commitKey struct{}

// WithCommit tags ctx with the commit being visited so that every record
// logged under it carries a commit attribute.
func WithCommit(ctx context.Context, commit string) context.Context {
	return context.WithValue(ctx, commitKey{}, commit)
}

// CommitFromContext returns the commit set by [WithCommit].
func CommitFromContext(ctx context.Context) (string, bool) {
	commit, ok := ctx.Value(commitKey{}).(string)

	return commit, ok && commit != ""
}

// TracingHandler decorates records with the sweep context: service and mode
// at construction, then trace_id, span_id and the current commit per record.
type TracingHandler struct {
	slog.Handler
}

// NewTracingHandler wraps inner.
func NewTracingHandler(inner slog.Handler, service string, appMode AppMode) *TracingHandler {
	return &TracingHandler{Handler: inner.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("mode", string(appMode)),
	})}
}

func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if commit, ok := CommitFromContext(ctx); ok && !hasAttr(record, AttrCommit) {
		record.AddAttrs(slog.String(AttrCommit, commit))
	}

	if err := h.Handler.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{Handler: h.Handler.WithGroup(name)}
}

func hasAttr(record slog.Record, key string) bool {
	found := false

	record.Attrs(func(a slog.Attr) bool {
		found = a.Key == key

		return !found
	})

	return found
}
