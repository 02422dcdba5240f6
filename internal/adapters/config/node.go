package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/logger"
	"go.trai.ch/loom/internal/adapters/template"
	"go.trai.ch/loom/internal/core/ports"
)

// ConfigLoaderNodeID is the unique identifier for the ConfigLoader Graft node.
const ConfigLoaderNodeID graft.ID = "adapter.config_loader"

// TaskLoaderNodeID is the unique identifier for the TaskLoader Graft node.
const TaskLoaderNodeID graft.ID = "adapter.task_loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        ConfigLoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	graft.Register(graft.Node[ports.TaskLoader]{
		ID:        TaskLoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, template.NodeID},
		Run: func(ctx context.Context) (ports.TaskLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			renderer, err := graft.Dep[ports.TemplateResolver](ctx)
			if err != nil {
				return nil, err
			}
			return NewTaskLoader(log, renderer), nil
		},
	})
}
