// Package shell spawns and waits on the OS subprocess for a single task's
// rendered script. Rendering, hashing, and output verification all happen
// around it; this is the one point in the engine where a real OS process
// is forked.
package shell

import (
	"context"
	"io"
	"os/exec"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProcessExecutor = (*Executor)(nil)

// Executor implements ports.ProcessExecutor using os/exec.
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Run spawns argv[0] with argv[1:] in workingDir with env, streaming
// stdout/stderr to the given writers.
func (e *Executor) Run(ctx context.Context, argv []string, workingDir string, env []string, stdout, stderr io.Writer) error {
	if len(argv) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv is built by the engine from a resolved interpreter path, not request input
	cmd.Dir = workingDir
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok { //nolint:errorlint // exec.Command errors are not meant to be unwrapped
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, domain.ErrSubprocessFailed.Error()), "exit_code", exitCode)
	}

	return nil
}
