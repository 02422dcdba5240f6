// Package ports defines the core interfaces between the engine and its
// adapters.
package ports

import (
	"context"
	"io"
)

// ProcessExecutor spawns the interpreter for a single rendered script and
// waits for it to exit. It does not render, hash, or verify outputs — those
// are the engine's responsibility; this port is the one point where a real
// OS process gets forked.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type ProcessExecutor interface {
	// Run spawns argv[0] with argv[1:] as arguments in workingDir with env
	// ("KEY=VALUE" strings, already augmented with the module-search-path
	// entry), streaming stdout/stderr to the given writers. Returns
	// domain.ErrSubprocessFailed (wrapped with the exit code) on nonzero
	// exit.
	Run(ctx context.Context, argv []string, workingDir string, env []string, stdout, stderr io.Writer) error
}
