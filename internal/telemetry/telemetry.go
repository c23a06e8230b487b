// Package telemetry installs the process-wide slog handler and, when enabled,
// an OpenTelemetry tracer provider that writes spans next to the logs.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const ServiceName = "contra-ai"

type Options struct {
	Level          string // DEBUG, INFO, WARN, ERROR
	Format         string // json or text
	TracingEnabled bool
	Output         io.Writer
}

// Shutdown flushes buffered spans.
type Shutdown func(ctx context.Context) error

func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (o Options) output() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

func NewLogger(opts Options) *slog.Logger {
	out := opts.output()
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}
	return slog.New(handler).With("service", ServiceName)
}

// Init sets the default logger and, if asked, the global tracer provider.
// A tracer that fails to start is logged and left disabled.
func Init(opts Options) Shutdown {
	slog.SetDefault(NewLogger(opts))

	if !opts.TracingEnabled {
		return func(context.Context) error { return nil }
	}

	tp, err := newTracerProvider(opts.output())
	if err != nil {
		slog.Warn("failed to initialize tracing, continuing without it", "error", err)
		return func(context.Context) error { return nil }
	}
	otel.SetTracerProvider(tp)
	slog.Info("tracing enabled", "exporter", "stdout")
	return tp.Shutdown
}

func newTracerProvider(out io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
