package telemetry

import (
	"context"
	"testing"
)

func TestInitDisabledIsNoop(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.Tracer == nil || p.Meter == nil {
		t.Fatal("expected non-nil no-op tracer and meter")
	}
	if p.Metrics == nil {
		t.Fatal("expected metrics instruments even when disabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestInitStdoutExporter(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: true, Exporter: "stdout"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer p.Shutdown(context.Background())

	ctx, span := StartInstanceSpan(context.Background(), p.Tracer, "greet", 42, "inst-1")
	span.End()
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
}

func TestInitUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestMetricsInstrumentsUsable(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := context.Background()
	p.Metrics.InstancesActive.Add(ctx, 1)
	p.Metrics.InstancesStarted.Add(ctx, 1)
	p.Metrics.InstancesEnded.Add(ctx, 1)
	p.Metrics.ScenarioErrors.Add(ctx, 1)
	p.Metrics.TriggersSkipped.Add(ctx, 1)
	p.Metrics.MethodDuration.Record(ctx, 0.01)
	p.Metrics.MethodErrors.Add(ctx, 1)
}
