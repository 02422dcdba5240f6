package hasher

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker enumerates the regular files under a directory dependency so the
// digest package can hash each one independently.
type Walker struct{}

// NewWalker creates a Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the path of every regular file under root, skipping VCS
// metadata directories and anything matching an ignore glob. Paths are
// yielded exactly as filepath.WalkDir reports them (rooted at root, not
// made relative), since that's what callers stat and hash directly.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if w.skip(entry.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.skip(entry.Name(), ignores) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// vcsDirs are directory names never worth treating as a build dependency:
// their contents change on every commit/checkout regardless of whether the
// files a task actually reads changed.
var vcsDirs = map[string]bool{".git": true, ".jj": true, ".hg": true, ".svn": true}

// skip reports whether a file or directory entry named name should be
// excluded, either because it's VCS metadata or it matches one of ignores.
func (w *Walker) skip(name string, ignores []string) bool {
	if vcsDirs[name] {
		return true
	}
	for _, pattern := range ignores {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
