package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Setup(disabled) error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}

func TestTracerRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := Tracer("test").Start(context.Background(), "unit.span")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].Name() != "unit.span" {
		t.Fatalf("recorded spans = %v", ended)
	}
	if got := ended[0].InstrumentationScope().Name; got != "parley/test" {
		t.Errorf("scope = %q, want parley/test", got)
	}
}

func TestHoneycombHeaders(t *testing.T) {
	if HoneycombHeaders("", "x") != nil {
		t.Error("empty key should produce no headers")
	}
	h := HoneycombHeaders("key", "")
	if h["x-honeycomb-team"] != "key" || h["x-honeycomb-dataset"] != "parley" {
		t.Errorf("HoneycombHeaders() = %v", h)
	}
}
