// Package digest computes the content digest of a single neighbor (task or
// artifact) in the task graph, the one rule both the StalenessAnalyzer and
// the Executor must agree on: a task's own template is hashed by its
// rendered text, a directory yields one digest per file under it (each
// tracked under its own resolved path, per spec.md §9's directory-dependency
// resolution), and anything else is hashed by its file content. Divergence
// between the two callers would mean a freshly executed task still looks
// stale the moment it finishes.
package digest

import (
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/loom/internal/adapters/hasher"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

// Computer wraps the Hasher and TemplateResolver needed to turn a graph
// neighbor into one or more digests.
type Computer struct {
	hasher   ports.Hasher
	renderer ports.TemplateResolver
	walker   *hasher.Walker
}

// New creates a Computer.
func New(h ports.Hasher, renderer ports.TemplateResolver) *Computer {
	return &Computer{hasher: h, renderer: renderer, walker: hasher.NewWalker()}
}

// Entry is one resolved-path/digest pair. Hashing a file yields exactly one
// Entry keyed by that file's own path; hashing a directory yields one Entry
// per regular file beneath it, each keyed by its own path rather than the
// directory root, so the HashStore tracks a directory dependency file by
// file instead of collapsing it into a single combined digest.
type Entry struct {
	Path   string
	Digest string
}

// Of computes the digest entries a neighbor of task should currently have:
// the rendered text of task's own template if neighbor names that template,
// one entry per contained file if neighbor is a directory on disk, a single
// file entry if neighbor is a file on disk, or exists=false if neighbor is
// missing entirely.
func (c *Computer) Of(task domain.TaskRecord, neighbor domain.ID) (entries []Entry, exists bool, err error) {
	if task.Template != "" && neighbor.String() == task.Template {
		rendered, err := c.renderer.Render(task.Template, task.Parameters)
		if err != nil {
			return nil, false, err
		}
		return []Entry{{Path: task.Template, Digest: c.hasher.HashString(rendered)}}, true, nil
	}

	return c.Path(neighbor.String())
}

// Path computes the digest entries for whatever is at path on disk: one
// entry per contained file if it is a directory, a single entry otherwise,
// or exists=false if nothing is there. Used directly by callers that
// already know a path is not a task's own template, such as the Executor
// hashing a just-verified output.
func (c *Computer) Path(path string) (entries []Entry, exists bool, err error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, false, nil
		}
		return nil, false, zerr.With(zerr.Wrap(statErr, domain.ErrFileOpenFailed.Error()), "path", path)
	}

	if info.IsDir() {
		entries, err := c.Directory(path)
		if err != nil {
			return nil, false, err
		}
		return entries, true, nil
	}

	value, err := c.hasher.HashFile(path)
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	return []Entry{{Path: path, Digest: value}}, true, nil
}

// Directory hashes every regular file under root concurrently, bounded to
// GOMAXPROCS workers via errgroup, and returns one Entry per file in sorted
// path order. A directory dependency is considered changed if a file under
// it is added or its contents change; only the files present now are
// compared, so a removed file alone does not count as a change.
func (c *Computer) Directory(root string) ([]Entry, error) {
	var paths []string
	for p := range c.walker.WalkFiles(root, nil) {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	entries := make([]Entry, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))
	for i, p := range paths {
		g.Go(func() error {
			value, err := c.hasher.HashFile(p)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", p)
			}
			entries[i] = Entry{Path: p, Digest: value}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
