// Package hashstore persists the (task_id, artifact_key) -> digest mapping
// the staleness analyzer consults and the executor updates after every task
// completion, as a single YAML document under the project's hidden build
// directory.
package hashstore

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// row is the on-disk shape of a single HashStore entry.
type row struct {
	TaskID      string `yaml:"task_id"`
	ArtifactKey string `yaml:"artifact_key"`
	Digest      string `yaml:"digest"`
}

type document struct {
	Rows []row `yaml:"rows"`
}

var _ ports.HashStore = (*Store)(nil)

// Store implements ports.HashStore as a single YAML file. Mutations land in
// an in-memory map immediately (so a Get right after a Put in the same
// process sees it); Flush serializes the full map back to disk.
type Store struct {
	mu    sync.Mutex
	path  string
	rows  map[domain.HashKey]string
	dirty bool
}

// Open loads path if it exists, or starts an empty store if it doesn't.
// path's parent directory is created if missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	s := &Store{path: path, rows: make(map[domain.HashKey]string)}

	data, err := os.ReadFile(path) //nolint:gosec // path is project-configured, not request input
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	for _, r := range doc.Rows {
		key := domain.HashKey{TaskID: domain.NewID(r.TaskID), ArtifactKey: r.ArtifactKey}
		s.rows[key] = r.Digest
	}

	return s, nil
}

// Get returns the stored digest for key.
func (s *Store) Get(key domain.HashKey) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	digest, ok := s.rows[key]
	return digest, ok, nil
}

// Put upserts entry's row in memory; Flush must be called to persist it.
func (s *Store) Put(entry domain.HashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[entry.Key()] = entry.Digest
	s.dirty = true
	return nil
}

// Flush writes the full row set to path as one YAML document, replacing it
// atomically via a temp-file rename. A no-op if nothing changed since the
// last Flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	doc := document{Rows: make([]row, 0, len(s.rows))}
	for key, digest := range s.rows {
		doc.Rows = append(doc.Rows, row{
			TaskID:      key.TaskID.String(),
			ArtifactKey: key.ArtifactKey,
			Digest:      digest,
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}

	s.dirty = false
	return nil
}
