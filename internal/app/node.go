package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/config"
	"go.trai.ch/loom/internal/adapters/fs"
	"go.trai.ch/loom/internal/adapters/hasher"
	"go.trai.ch/loom/internal/adapters/logger"
	"go.trai.ch/loom/internal/adapters/shell"
	"go.trai.ch/loom/internal/adapters/telemetry"
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the default App Graft node: one
// wired with the OpenTelemetry Telemetry implementation. `loom build
// --watch` bypasses this node and constructs an App directly with the
// progrock implementation instead, since which Telemetry backs a build is
// a per-invocation flag, not a process-wide singleton.
const NodeID graft.ID = "app.default"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ConfigLoaderNodeID,
			hasher.NodeID,
			shell.NodeID,
			shell.EnvironmentNodeID,
			fs.VerifierNodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			h, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			process, err := graft.Dep[ports.ProcessExecutor](ctx)
			if err != nil {
				return nil, err
			}
			environment, err := graft.Dep[ports.InterpreterEnvironment](ctx)
			if err != nil {
				return nil, err
			}
			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(configLoader, h, process, environment, verifier, tel, log), nil
		},
	})
}
