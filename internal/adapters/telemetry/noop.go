package telemetry

import (
	"context"
	"io"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
)

var _ ports.Telemetry = (*Noop)(nil)

// Noop implements ports.Telemetry with no observable side effects. Tests
// use it; non-interactive builds use the OTel Tracer instead.
type Noop struct{}

// NewNoop creates a Noop telemetry implementation.
func NewNoop() *Noop { return &Noop{} }

// Record returns ctx unchanged and a no-op Vertex.
func (n *Noop) Record(ctx context.Context, _ string, _ ...ports.VertexOption) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close is a no-op.
func (n *Noop) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer                { return io.Discard }
func (noopVertex) Stderr() io.Writer                { return io.Discard }
func (noopVertex) Log(domain.LogLevel, string)      {}
func (noopVertex) Complete(error)                   {}
func (noopVertex) Cached()                          {}
