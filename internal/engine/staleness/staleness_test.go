package staleness_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports/mocks"
	"go.trai.ch/loom/internal/engine/staleness"
)

func newTask(id, template string, dependsOn, produces []string) domain.TaskRecord {
	return domain.TaskRecord{
		ID:         domain.NewID(id),
		Template:   template,
		DependsOn:  dependsOn,
		Produces:   produces,
		ConfigPath: "",
		Parameters: map[string]any{},
	}
}

func TestAnalyzeMarksTaskUnfinishedWhenNoStoredDigest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	input := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(input, []byte("a,b,c"), 0o644))
	output := filepath.Join(dir, "output.csv")
	require.NoError(t, os.WriteFile(output, []byte("x,y,z"), 0o644))

	g := domain.NewGraph()
	require.NoError(t, g.AddTask(newTask("clean", "clean.py", []string{input}, []string{output})))
	require.NoError(t, g.Validate())

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().HashFile(input).Return("digest-input", nil)
	hasher.EXPECT().HashFile(output).Return("digest-output", nil)
	hasher.EXPECT().HashString("rendered-script").Return("script-digest")

	store := mocks.NewMockHashStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return("", false, nil).AnyTimes()
	store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()

	renderer := mocks.NewMockTemplateResolver(ctrl)
	renderer.EXPECT().Render("clean.py", gomock.Any()).Return("rendered-script", nil)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()

	a := staleness.New(hasher, store, renderer, logger)
	unfinished, err := a.Analyze(g)
	require.NoError(t, err)
	assert.True(t, unfinished.Has(domain.NewID("clean")))
}

func TestAnalyzeSkipsTaskWhenDigestsMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	input := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(input, []byte("a,b,c"), 0o644))

	g := domain.NewGraph()
	require.NoError(t, g.AddTask(newTask("clean", "clean.py", []string{input}, nil)))
	require.NoError(t, g.Validate())

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().HashFile(input).Return("digest-input", nil)
	hasher.EXPECT().HashString("rendered-script").Return("script-digest")

	store := mocks.NewMockHashStore(ctrl)
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("clean"), ArtifactKey: input}).
		Return("digest-input", true, nil)
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("clean"), ArtifactKey: "clean.py"}).
		Return("script-digest", true, nil)

	renderer := mocks.NewMockTemplateResolver(ctrl)
	renderer.EXPECT().Render("clean.py", gomock.Any()).Return("rendered-script", nil)
	logger := mocks.NewMockLogger(ctrl)

	a := staleness.New(hasher, store, renderer, logger)
	unfinished, err := a.Analyze(g)
	require.NoError(t, err)
	assert.False(t, unfinished.Has(domain.NewID("clean")))
}

func TestAnalyzeContaminatesDownstreamTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.csv")
	require.NoError(t, os.WriteFile(shared, []byte("stale"), 0o644))

	g := domain.NewGraph()
	require.NoError(t, g.AddTask(newTask("produce", "produce.py", nil, []string{shared})))
	require.NoError(t, g.AddTask(newTask("consume", "consume.py", []string{shared}, nil)))
	require.NoError(t, g.Validate())

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().HashFile(shared).Return("current-digest", nil).AnyTimes()
	hasher.EXPECT().HashString("rendered-script").Return("script-digest").AnyTimes()

	store := mocks.NewMockHashStore(ctrl)
	// Both tasks' rendered scripts are already up to date, so the only
	// cause for "consume" to run is its unfinished upstream.
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("produce"), ArtifactKey: "produce.py"}).
		Return("script-digest", true, nil)
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("consume"), ArtifactKey: "consume.py"}).
		Return("script-digest", true, nil)
	// "produce" has never run: no stored digest for its own output.
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("produce"), ArtifactKey: shared}).
		Return("", false, nil)
	store.EXPECT().Put(domain.HashEntry{TaskID: domain.NewID("produce"), ArtifactKey: shared, Digest: "current-digest"}).
		Return(nil)
	// "consume" happens to already have a matching digest for shared, but
	// should still be marked unfinished because its upstream is unfinished.
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("consume"), ArtifactKey: shared}).
		Return("current-digest", true, nil)

	renderer := mocks.NewMockTemplateResolver(ctrl)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return("rendered-script", nil).AnyTimes()
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()

	a := staleness.New(hasher, store, renderer, logger)
	unfinished, err := a.Analyze(g)
	require.NoError(t, err)
	assert.True(t, unfinished.Has(domain.NewID("produce")))
	assert.True(t, unfinished.Has(domain.NewID("consume")))
}

func TestAnalyzeAlwaysMarksRunAlwaysTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := domain.NewGraph()
	task := newTask("watch", "watch.py", nil, nil)
	task.RunAlways = true
	require.NoError(t, g.AddTask(task))
	require.NoError(t, g.Validate())

	hasher := mocks.NewMockHasher(ctrl)
	store := mocks.NewMockHashStore(ctrl)
	renderer := mocks.NewMockTemplateResolver(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()

	a := staleness.New(hasher, store, renderer, logger)
	unfinished, err := a.Analyze(g)
	require.NoError(t, err)
	assert.True(t, unfinished.Has(domain.NewID("watch")))
}

func TestAnalyzeHashesRenderedTemplateNotTemplateFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := domain.NewGraph()
	task := newTask("fit", "ols.r", nil, nil)
	task.Parameters = map[string]any{"degree": 2}
	require.NoError(t, g.AddTask(task))
	require.NoError(t, g.Validate())

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().HashString("rendered-script").Return("script-digest").Times(1)

	store := mocks.NewMockHashStore(ctrl)
	store.EXPECT().Get(domain.HashKey{TaskID: domain.NewID("fit"), ArtifactKey: "ols.r"}).
		Return("script-digest", true, nil)

	renderer := mocks.NewMockTemplateResolver(ctrl)
	renderer.EXPECT().Render("ols.r", task.Parameters).Return("rendered-script", nil)

	logger := mocks.NewMockLogger(ctrl)

	a := staleness.New(hasher, store, renderer, logger)
	unfinished, err := a.Analyze(g)
	require.NoError(t, err)
	assert.False(t, unfinished.Has(domain.NewID("fit")))
}
