package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/core/ports"
)

const NodeID graft.ID = "adapter.process_executor"

const EnvironmentNodeID graft.ID = "adapter.interpreter_environment"

func init() {
	graft.Register(graft.Node[ports.ProcessExecutor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ProcessExecutor, error) {
			return NewExecutor(), nil
		},
	})

	graft.Register(graft.Node[ports.InterpreterEnvironment]{
		ID:        EnvironmentNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.InterpreterEnvironment, error) {
			return NewEnvironment(), nil
		},
	})
}
