package hashstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the HashStore Graft node.
const NodeID graft.ID = "adapter.hashstore"

// defaultPath is used only by the Graft registration below; the real
// application wiring in internal/app opens the store against the project's
// configured hidden_build_directory instead.
const defaultPath = ".pipeline/hashes.yaml"

func init() {
	graft.Register(graft.Node[ports.HashStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.HashStore, error) {
			return Open(defaultPath)
		},
	})
}
