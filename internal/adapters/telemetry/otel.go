// Package telemetry provides the OpenTelemetry-backed ports.Telemetry
// implementation: one span per task execution, carrying the task's name,
// duration, status, and log lines as span events. See the sibling
// progrock package for the implementation that drives the live TUI
// instead of an external tracing backend.
package telemetry

import (
	"context"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
)

var _ ports.Telemetry = (*Tracer)(nil)

// provider is the process-wide SDK TracerProvider backing every Tracer:
// one build invocation gets one provider, set as the global so any
// instrumented dependency picks it up too, and shut down via the first
// Tracer.Close call.
var (
	providerOnce sync.Once
	provider     *sdktrace.TracerProvider
)

func sharedProvider() *sdktrace.TracerProvider {
	providerOnce.Do(func() {
		provider = sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
		otel.SetTracerProvider(provider)
	})
	return provider
}

// Tracer implements ports.Telemetry by starting one OpenTelemetry span per
// recorded vertex.
type Tracer struct {
	tracer trace.Tracer
}

// New creates a Tracer that emits spans under the given instrumentation
// name, backed by a lazily-initialized SDK TracerProvider.
func New(name string) *Tracer {
	return &Tracer{tracer: sharedProvider().Tracer(name)}
}

// Record starts a new span named name and wraps it as a Vertex.
func (t *Tracer) Record(ctx context.Context, name string, _ ...ports.VertexOption) (context.Context, ports.Vertex) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &spanVertex{span: span}
}

// Close flushes and shuts down the shared SDK TracerProvider.
func (t *Tracer) Close() error {
	return provider.Shutdown(context.Background())
}

var _ ports.Vertex = (*spanVertex)(nil)

// spanVertex implements ports.Vertex over a single trace.Span, routing
// stdout/stderr lines and structured logs to span events rather than a
// terminal.
type spanVertex struct {
	span trace.Span
}

// Stdout returns a writer that appends each write as a "stdout" span event.
func (v *spanVertex) Stdout() io.Writer { return spanWriter{span: v.span, stream: "stdout"} }

// Stderr returns a writer that appends each write as a "stderr" span event.
func (v *spanVertex) Stderr() io.Writer { return spanWriter{span: v.span, stream: "stderr"} }

// Log adds a structured log event to the span.
func (v *spanVertex) Log(level domain.LogLevel, msg string) {
	v.span.AddEvent("log", trace.WithAttributes(
		attribute.String("level", level.String()),
		attribute.String("message", msg),
	))
}

// Complete ends the span, marking it as errored when err is non-nil.
func (v *spanVertex) Complete(err error) {
	if err != nil {
		v.span.RecordError(err)
		v.span.SetStatus(codes.Error, err.Error())
	} else {
		v.span.SetStatus(codes.Ok, "")
	}
	v.span.End()
}

// Cached records a cache-hit event without ending the span; Complete still
// follows to close it out.
func (v *spanVertex) Cached() {
	v.span.AddEvent("cached")
}

type spanWriter struct {
	span   trace.Span
	stream string
}

func (w spanWriter) Write(p []byte) (int, error) {
	w.span.AddEvent(w.stream, trace.WithAttributes(attribute.String("text", string(p))))
	return len(p), nil
}
