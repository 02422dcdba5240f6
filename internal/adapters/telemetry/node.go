package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the OpenTelemetry-backed Telemetry
// node, the default used when a build is not attached to the TUI. See
// progrock.NodeID for the implementation the TUI consumes instead.
const NodeID graft.ID = "adapter.telemetry.otel"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return New("loom"), nil
		},
	})
}
