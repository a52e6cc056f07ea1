package tracing

import (
	"context"
	"testing"
)

func TestInitTracerWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	ctx := context.Background()
	tp, tracer, err := InitTracer(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tp == nil {
		t.Fatal("expected a tracer provider")
	}
	if tracer == nil {
		t.Fatal("expected a tracer")
	}

	_, span := tracer.Start(ctx, "test-span")
	span.End()

	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestInitTracerWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	ctx := context.Background()
	tp, tracer, err := InitTracer(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracer == nil {
		t.Fatal("expected a tracer")
	}

	// No spans were recorded, so shutdown does not block on the exporter.
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}
