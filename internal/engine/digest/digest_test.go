package digest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/loom/internal/adapters/hasher"
	"go.trai.ch/loom/internal/adapters/template"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/engine/digest"
)

func TestPathOfAFileYieldsOneEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	resolver, err := template.New(nil)
	require.NoError(t, err)
	c := digest.New(hasher.New(), resolver)

	entries, exists, err := c.Path(path)
	require.NoError(t, err)
	require.True(t, exists)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].Path)
	assert.NotEmpty(t, entries[0].Digest)
}

func TestPathOfADirectoryYieldsOneEntryPerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.txt"), []byte("b"), 0o644))

	resolver, err := template.New(nil)
	require.NoError(t, err)
	c := digest.New(hasher.New(), resolver)

	entries, exists, err := c.Path(dir)
	require.NoError(t, err)
	require.True(t, exists)
	require.Len(t, entries, 2)

	byPath := make(map[string]string, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e.Digest
	}
	assert.Contains(t, byPath, filepath.Join(dir, "a.txt"))
	assert.Contains(t, byPath, filepath.Join(dir, "nested", "b.txt"))
}

func TestDirectoryEntryChangesWhenOneFileChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))

	resolver, err := template.New(nil)
	require.NoError(t, err)
	c := digest.New(hasher.New(), resolver)

	before, _, err := c.Path(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed"), 0o644))
	// The Hasher memoizes by (path, mtime); move the mtime forward so a
	// rewrite within the same filesystem timestamp tick is still seen.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.txt"), later, later))

	after, _, err := c.Path(dir)
	require.NoError(t, err)

	beforeByPath := make(map[string]string, len(before))
	for _, e := range before {
		beforeByPath[e.Path] = e.Digest
	}
	for _, e := range after {
		if e.Path == filepath.Join(dir, "b.txt") {
			assert.Equal(t, beforeByPath[e.Path], e.Digest, "untouched file's entry must be unaffected")
		} else {
			assert.NotEqual(t, beforeByPath[e.Path], e.Digest, "changed file's entry must differ")
		}
	}
}

func TestOfUsesTaskTemplateRenderedText(t *testing.T) {
	dir := t.TempDir()
	templatesDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(templatesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "build.py"), []byte("print({{.greeting}})\n"), 0o644))

	resolver, err := template.New([]string{templatesDir})
	require.NoError(t, err)
	c := digest.New(hasher.New(), resolver)

	task := domain.TaskRecord{
		ID:         domain.NewID("build"),
		Template:   "build.py",
		Parameters: map[string]any{"greeting": "hi"},
	}

	entries, exists, err := c.Of(task, domain.NewID("build.py"))
	require.NoError(t, err)
	require.True(t, exists)
	require.Len(t, entries, 1)
	assert.Equal(t, "build.py", entries[0].Path)
}

func TestOfMissingNeighborReportsNotExists(t *testing.T) {
	resolver, err := template.New(nil)
	require.NoError(t, err)
	c := digest.New(hasher.New(), resolver)

	task := domain.TaskRecord{ID: domain.NewID("build")}
	_, exists, err := c.Of(task, domain.NewID("/does/not/exist"))
	require.NoError(t, err)
	assert.False(t, exists)
}
