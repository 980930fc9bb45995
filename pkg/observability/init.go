package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "benchsweep"

// Providers bundles what a command needs to report on a run.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes exporters. Call it once before exit.
	Shutdown func(ctx context.Context) error

	registry    *prometheus.Registry
	metricsFile string
}

// WriteMetrics dumps the collected metrics in Prometheus text format to the
// configured metrics file. Without one it does nothing.
func (p Providers) WriteMetrics() error {
	if p.registry == nil || p.metricsFile == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(p.metricsFile, p.registry); err != nil {
		return fmt.Errorf("write metrics file %s: %w", p.metricsFile, err)
	}

	return nil
}

type shutdownFunc func(ctx context.Context) error

// shutdownStack runs registered shutdowns in reverse order.
type shutdownStack []shutdownFunc

func (s shutdownStack) run(ctx context.Context) error {
	var errs []error

	for i := len(s) - 1; i >= 0; i-- {
		errs = append(errs, s[i](ctx))
	}

	return errors.Join(errs...)
}

// Init builds the logger plus tracer and meter providers described by cfg
// and installs them as the otel globals. Tracing stays a no-op without an
// OTLP endpoint; metrics stay a no-op without an endpoint or metrics file.
func Init(cfg Config) (Providers, error) {
	ctx := context.Background()

	res, err := buildResource(cfg)
	if err != nil {
		return Providers{}, err
	}

	logger := buildLogger(cfg)

	var stack shutdownStack

	tp, tpShutdown, err := newTracerProvider(ctx, cfg, res, logger)
	if err != nil {
		return Providers{}, fmt.Errorf("build tracer provider: %w", err)
	}

	stack = append(stack, tpShutdown)

	mp, registry, mpShutdown, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("build meter provider: %w", err), stack.run(ctx))
	}

	stack = append(stack, mpShutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	timeout := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(defaultShutdownTimeoutSec) * time.Second
	}

	return Providers{
		Tracer: tp.Tracer(instrumentationName),
		Meter:  mp.Meter(instrumentationName),
		Logger: logger,
		Shutdown: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return stack.run(ctx)
		},
		registry:    registry,
		metricsFile: cfg.MetricsFile,
	}, nil
}

func buildResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Mode != "" {
		attrs = append(attrs, attribute.String("app.mode", string(cfg.Mode)))
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func buildLogger(cfg Config) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		out = cfg.LogOutput
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(out, opts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.Mode))
}

// ParseOTLPHeaders reads the OTEL_EXPORTER_OTLP_HEADERS form
// "k1=v1,k2=v2". Pairs without '=' are skipped; nil means no headers.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}
