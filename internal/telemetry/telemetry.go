// Package telemetry wires OpenTelemetry tracing and metrics with
// file-backed stdout exporters.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "shopassist"

// Init sets up tracer and meter providers. Traces and metrics go to
// rotating files under logs/ so a collector-less deployment still keeps
// them. The returned cleanup flushes and shuts both providers down.
func Init(ctx context.Context) (trace.Tracer, metric.Meter, func(), error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create resource: %w", err)
	}

	logDir := "logs"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create logs directory: %w", err)
	}

	traceFile := rotatingFile(filepath.Join(logDir, "shopassist_traces.log"))
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricsFile := rotatingFile(filepath.Join(logDir, "shopassist_metrics.log"))
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricsFile))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second)),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown tracer provider", "error", err)
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown meter provider", "error", err)
		}
		_ = traceFile.Close()
		_ = metricsFile.Close()
	}

	return tp.Tracer(serviceName), mp.Meter(serviceName), cleanup, nil
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// Metrics bundles the pipeline counters. A nil *Metrics is valid and
// records nothing, so tests can skip telemetry setup.
type Metrics struct {
	queries             metric.Int64Counter
	preprocessFallbacks metric.Int64Counter
	searchFailures      metric.Int64Counter
	generatorFailures   metric.Int64Counter
}

// NewMetrics registers the pipeline counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.queries, err = meter.Int64Counter("assistant.queries",
		metric.WithDescription("queries processed by the assistant pipeline")); err != nil {
		return nil, err
	}
	if m.preprocessFallbacks, err = meter.Int64Counter("assistant.preprocess_fallbacks",
		metric.WithDescription("query analyses that degraded to the deterministic fallback")); err != nil {
		return nil, err
	}
	if m.searchFailures, err = meter.Int64Counter("assistant.search_failures",
		metric.WithDescription("product searches that failed upstream")); err != nil {
		return nil, err
	}
	if m.generatorFailures, err = meter.Int64Counter("assistant.generator_failures",
		metric.WithDescription("completions that failed and produced the apology answer")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) IncQueries(ctx context.Context) {
	if m != nil {
		m.queries.Add(ctx, 1)
	}
}

func (m *Metrics) IncPreprocessFallbacks(ctx context.Context) {
	if m != nil {
		m.preprocessFallbacks.Add(ctx, 1)
	}
}

func (m *Metrics) IncSearchFailures(ctx context.Context) {
	if m != nil {
		m.searchFailures.Add(ctx, 1)
	}
}

func (m *Metrics) IncGeneratorFailures(ctx context.Context) {
	if m != nil {
		m.generatorFailures.Add(ctx, 1)
	}
}
