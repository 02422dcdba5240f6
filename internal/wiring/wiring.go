// Package wiring registers all Graft nodes for the application by
// blank-importing every adapter and app package that defines one.
// cmd/loom imports this package solely for its init() side effects.
package wiring

import (
	// Register config-independent adapter nodes.
	_ "go.trai.ch/loom/internal/adapters/config"
	_ "go.trai.ch/loom/internal/adapters/fs"
	_ "go.trai.ch/loom/internal/adapters/hasher"
	_ "go.trai.ch/loom/internal/adapters/logger"
	_ "go.trai.ch/loom/internal/adapters/shell"
	_ "go.trai.ch/loom/internal/adapters/telemetry"
	_ "go.trai.ch/loom/internal/adapters/telemetry/progrock"
	// Register the app node.
	_ "go.trai.ch/loom/internal/app"
)
