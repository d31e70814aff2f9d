// Package telemetry wires OpenTelemetry tracing and metrics for the bot
// fan-out runtime. When disabled, every operation is a no-op.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the instrumentation scope name for canoe traces.
	TracerName = "canoe"
	// MeterName is the instrumentation scope name for canoe metrics.
	MeterName = "canoe"
)

// Config controls whether and how telemetry is exported.
type Config struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // "otlp-http", "stdout", "none"
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Provider bundles the tracer and meter the bot runtime instruments itself
// with, plus a Shutdown hook.
type Provider struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Metrics  *Metrics
	shutdown func(context.Context) error
}

// Init sets up OpenTelemetry from cfg. If cfg.Enabled is false, every
// instrument returned is a no-op with zero overhead.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		tracer := nooptrace.NewTracerProvider().Tracer(TracerName)
		meter := noop.NewMeterProvider().Meter(MeterName)
		m, err := NewMetrics(meter)
		if err != nil {
			return nil, err
		}
		return &Provider{
			Tracer:   tracer,
			Meter:    meter,
			Metrics:  m,
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "canoe"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))

	meter := mp.Meter(MeterName)
	m, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Tracer:  tp.Tracer(TracerName),
		Meter:   meter,
		Metrics: m,
		shutdown: func(ctx context.Context) error {
			tErr := tp.Shutdown(ctx)
			mErr := mp.Shutdown(ctx)
			if tErr != nil {
				return tErr
			}
			return mErr
		},
	}, nil
}

// Shutdown flushes and shuts down the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp-http", "":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4318"
		}
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none":
		return &noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown exporter: %s (supported: otlp-http, stdout, none)", cfg.Exporter)
	}
}

type noopExporter struct{}

func (e *noopExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error {
	return nil
}
func (e *noopExporter) Shutdown(_ context.Context) error { return nil }

// Attribute keys attached to canoe spans and log lines.
var (
	AttrScenario   = attribute.Key("canoe.scenario")
	AttrChatID     = attribute.Key("canoe.chat_id")
	AttrInstanceID = attribute.Key("canoe.instance_id")
	AttrMethod     = attribute.Key("canoe.method")
)

// StartInstanceSpan starts a span covering one scenario instance's lifetime.
func StartInstanceSpan(ctx context.Context, tracer trace.Tracer, scenario string, chatID int64, instanceID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "canoe.instance",
		trace.WithAttributes(
			AttrScenario.String(scenario),
			AttrChatID.Int64(chatID),
			AttrInstanceID.String(instanceID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartExecuteSpan starts a span covering one RPC client Execute call.
func StartExecuteSpan(ctx context.Context, tracer trace.Tracer, method string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "canoe.execute",
		trace.WithAttributes(AttrMethod.String(method)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// MethodAttr builds the metric.AddOption attaching the method name to a
// counter increment.
func MethodAttr(method string) metric.AddOption {
	return metric.WithAttributes(AttrMethod.String(method))
}
