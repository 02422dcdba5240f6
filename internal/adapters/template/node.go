package template

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the TemplateResolver Graft node.
const NodeID graft.ID = "adapter.template_resolver"

func init() {
	graft.Register(graft.Node[ports.TemplateResolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TemplateResolver, error) {
			return New(nil)
		},
	})
}
