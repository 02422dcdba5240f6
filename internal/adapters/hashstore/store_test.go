package hashstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/hashstore"
	"go.trai.ch/loom/internal/core/domain"
)

func TestPutThenGetSameProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.yaml")
	store, err := hashstore.Open(path)
	require.NoError(t, err)

	key := domain.HashKey{TaskID: domain.NewID("fit_model"), ArtifactKey: "bld/model.pkl"}
	require.NoError(t, store.Put(domain.HashEntry{TaskID: key.TaskID, ArtifactKey: key.ArtifactKey, Digest: "abc123"}))

	digest, ok, err := store.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", digest)
}

func TestFlushSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.yaml")

	store1, err := hashstore.Open(path)
	require.NoError(t, err)

	key := domain.HashKey{TaskID: domain.NewID("clean_data"), ArtifactKey: "src/raw.csv"}
	require.NoError(t, store1.Put(domain.HashEntry{TaskID: key.TaskID, ArtifactKey: key.ArtifactKey, Digest: "deadbeef"}))
	require.NoError(t, store1.Flush())

	store2, err := hashstore.Open(path)
	require.NoError(t, err)

	digest, ok, err := store2.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "deadbeef", digest)
}

func TestGetAbsentKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.yaml")
	store, err := hashstore.Open(path)
	require.NoError(t, err)

	_, ok, err := store.Get(domain.HashKey{TaskID: domain.NewID("nope"), ArtifactKey: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlushWithoutMutationIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.yaml")
	store, err := hashstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Flush())
}
