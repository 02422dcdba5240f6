package shell_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/shell"
	"go.trai.ch/loom/internal/core/domain"
)

func TestRunStreamsStdoutAndSucceeds(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho hello from task\n"), 0o755))

	e := shell.NewExecutor()
	var stdout, stderr bytes.Buffer

	err := e.Run(context.Background(), []string{"/bin/sh", script}, dir, os.Environ(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "hello from task")
}

func TestRunReturnsSubprocessFailedOnNonzeroExit(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755))

	e := shell.NewExecutor()
	var stdout, stderr bytes.Buffer

	err := e.Run(context.Background(), []string{"/bin/sh", script}, dir, os.Environ(), &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSubprocessFailed))
}

func TestRunWithEmptyArgvIsNoop(t *testing.T) {
	e := shell.NewExecutor()
	var stdout, stderr bytes.Buffer

	err := e.Run(context.Background(), nil, t.TempDir(), os.Environ(), &stdout, &stderr)
	require.NoError(t, err)
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("present"), 0o644))
	script := filepath.Join(dir, "pwd.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nls marker.txt\n"), 0o755))

	e := shell.NewExecutor()
	var stdout, stderr bytes.Buffer

	err := e.Run(context.Background(), []string{"/bin/sh", script}, dir, os.Environ(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "marker.txt")
}
