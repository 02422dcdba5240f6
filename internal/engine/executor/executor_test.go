package executor_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/loom/internal/adapters/fs"
	"go.trai.ch/loom/internal/adapters/hasher"
	"go.trai.ch/loom/internal/adapters/hashstore"
	"go.trai.ch/loom/internal/adapters/template"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports/mocks"
	"go.trai.ch/loom/internal/engine/executor"
	"go.trai.ch/loom/internal/engine/scheduler"
)

// fakeEnvironment returns a fixed interpreter path and a minimal environment
// without touching the host's actual interpreters.
type fakeEnvironment struct {
	interpreterPath string
}

func (f fakeEnvironment) Resolve(_ context.Context, _, _ string) (string, []string, error) {
	return f.interpreterPath, os.Environ(), nil
}

// fakeProcess simulates a successful run by writing each of the task's
// declared outputs, or fails when told to for a given script path.
type fakeProcess struct {
	outputsByScript map[string][]string
	failScripts     map[string]bool
}

func (f fakeProcess) Run(_ context.Context, argv []string, _ string, _ []string, _, _ io.Writer) error {
	script := argv[len(argv)-1]
	if f.failScripts[script] {
		return domain.ErrSubprocessFailed
	}
	for _, out := range f.outputsByScript[script] {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte("produced"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeTemplate(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}

func TestRunSerialExecutesTaskAndPersistsHashes(t *testing.T) {
	dir := t.TempDir()
	templatesDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(templatesDir, 0o755))
	writeTemplate(t, templatesDir, "clean.py", "# clean {{ .degree }}")

	renderer, err := template.New([]string{templatesDir})
	require.NoError(t, err)

	input := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(input, []byte("a,b,c"), 0o644))
	output := filepath.Join(dir, "output.csv")

	taskDir := filepath.Join(dir, "tasks")
	scriptPath := filepath.Join(taskDir, "clean.py")

	g := domain.NewGraph()
	task := domain.TaskRecord{
		ID:         domain.NewID("clean"),
		Template:   "clean.py",
		DependsOn:  []string{input},
		Produces:   []string{output},
		Parameters: map[string]any{"degree": 2},
	}
	require.NoError(t, g.AddTask(task))
	require.NoError(t, g.Validate())

	store, err := hashstore.Open(filepath.Join(dir, "hashes.yaml"))
	require.NoError(t, err)

	process := fakeProcess{outputsByScript: map[string][]string{scriptPath: {output}}}
	env := fakeEnvironment{interpreterPath: "/usr/bin/python3"}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	logger := mocks.NewMockLogger(ctrl)

	e := executor.New(
		hasher.New(), renderer, store, env, process, fs.NewVerifier(), nil, logger,
		executor.Config{ProjectDirectory: dir, HiddenTaskDirectory: taskDir, NJobs: 1},
	)

	sched := scheduler.New(g, map[domain.ID]struct{}{domain.NewID("clean"): {}}, false)
	require.NoError(t, e.Run(context.Background(), g, sched))

	assert.FileExists(t, scriptPath)
	assert.FileExists(t, output)

	_, ok, err := store.Get(domain.HashKey{TaskID: domain.NewID("clean"), ArtifactKey: output})
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = store.Get(domain.HashKey{TaskID: domain.NewID("clean"), ArtifactKey: input})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunSerialAbortsOnMissingTarget(t *testing.T) {
	dir := t.TempDir()
	templatesDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(templatesDir, 0o755))
	writeTemplate(t, templatesDir, "broken.py", "# broken")

	renderer, err := template.New([]string{templatesDir})
	require.NoError(t, err)

	output := filepath.Join(dir, "never-written.csv")
	taskDir := filepath.Join(dir, "tasks")

	g := domain.NewGraph()
	task := domain.TaskRecord{ID: domain.NewID("broken"), Template: "broken.py", Produces: []string{output}}
	require.NoError(t, g.AddTask(task))
	require.NoError(t, g.Validate())

	store, err := hashstore.Open(filepath.Join(dir, "hashes.yaml"))
	require.NoError(t, err)

	// fakeProcess with no configured outputs for this script simulates a
	// subprocess that exits zero without producing its declared target.
	process := fakeProcess{outputsByScript: map[string][]string{}}
	env := fakeEnvironment{interpreterPath: "/usr/bin/python3"}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	e := executor.New(
		hasher.New(), renderer, store, env, process, fs.NewVerifier(), nil, logger,
		executor.Config{ProjectDirectory: dir, HiddenTaskDirectory: taskDir, NJobs: 1},
	)

	sched := scheduler.New(g, map[domain.ID]struct{}{domain.NewID("broken"): {}}, false)
	err = e.Run(context.Background(), g, sched)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingTarget)
}

func TestRunParallelRunsIndependentTasksConcurrently(t *testing.T) {
	dir := t.TempDir()
	templatesDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(templatesDir, 0o755))
	writeTemplate(t, templatesDir, "a.py", "# a")
	writeTemplate(t, templatesDir, "b.py", "# b")

	renderer, err := template.New([]string{templatesDir})
	require.NoError(t, err)

	outA := filepath.Join(dir, "a.out")
	outB := filepath.Join(dir, "b.out")
	taskDir := filepath.Join(dir, "tasks")
	scriptA := filepath.Join(taskDir, "a.py")
	scriptB := filepath.Join(taskDir, "b.py")

	g := domain.NewGraph()
	require.NoError(t, g.AddTask(domain.TaskRecord{ID: domain.NewID("a"), Template: "a.py", Produces: []string{outA}}))
	require.NoError(t, g.AddTask(domain.TaskRecord{ID: domain.NewID("b"), Template: "b.py", Produces: []string{outB}}))
	require.NoError(t, g.Validate())

	store, err := hashstore.Open(filepath.Join(dir, "hashes.yaml"))
	require.NoError(t, err)

	process := fakeProcess{outputsByScript: map[string][]string{
		scriptA: {outA},
		scriptB: {outB},
	}}
	env := fakeEnvironment{interpreterPath: "/usr/bin/python3"}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	logger := mocks.NewMockLogger(ctrl)

	e := executor.New(
		hasher.New(), renderer, store, env, process, fs.NewVerifier(), nil, logger,
		executor.Config{ProjectDirectory: dir, HiddenTaskDirectory: taskDir, NJobs: 4},
	)

	unfinished := map[domain.ID]struct{}{domain.NewID("a"): {}, domain.NewID("b"): {}}
	sched := scheduler.New(g, unfinished, false)
	require.NoError(t, e.Run(context.Background(), g, sched))

	assert.FileExists(t, outA)
	assert.FileExists(t, outB)
	assert.False(t, sched.HasWork())
}
