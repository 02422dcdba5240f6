package staleness

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/hasher"
	"go.trai.ch/loom/internal/adapters/hashstore"
	"go.trai.ch/loom/internal/adapters/logger"
	"go.trai.ch/loom/internal/adapters/template"
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID identifies the Analyzer in the dependency graph.
const NodeID graft.ID = "engine.staleness_analyzer"

func init() {
	graft.Register(graft.Node[*Analyzer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{hasher.NodeID, hashstore.NodeID, template.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Analyzer, error) {
			h, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.HashStore](ctx)
			if err != nil {
				return nil, err
			}
			renderer, err := graft.Dep[ports.TemplateResolver](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(h, store, renderer, log), nil
		},
	})
}
