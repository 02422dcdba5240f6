// Package ports defines the core interfaces between the engine and its
// adapters.
package ports

import "context"

// InterpreterEnvironment builds the process environment a task's
// interpreter is spawned with: the parent environment augmented so the
// project directory is prepended to the module-search-path variable
// appropriate to that interpreter (PYTHONPATH for python3, R_LIBS for
// Rscript), using the platform path-list separator.
//
//go:generate go run go.uber.org/mock/mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type InterpreterEnvironment interface {
	// Resolve returns the interpreter's absolute path and the augmented
	// environment for running a script with the given suffix ("py", "r").
	// Returns domain.ErrInterpreterUnavailable if no interpreter for suffix
	// is on the host.
	Resolve(ctx context.Context, suffix, projectDirectory string) (interpreterPath string, env []string, err error)
}
