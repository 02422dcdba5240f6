package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

// blockSize is the read buffer size hash_file streams a file's bytes
// through; chosen to bound memory use on large inputs.
const blockSize = 128 * 1024

var _ ports.Hasher = (*Hasher)(nil)

type memoKey struct {
	path  string
	mtime int64
}

// Hasher computes sha256 digests for the hash store and, through
// Fingerprint, xxhash fingerprints. File digests are memoized by
// (path, mtime) for the lifetime of one process.
type Hasher struct {
	mu   sync.Mutex
	memo map[memoKey]string
}

// New creates a Hasher with an empty memo.
func New() *Hasher {
	return &Hasher{memo: make(map[memoKey]string)}
}

// HashFile streams path in blockSize chunks through sha256 and returns the
// lowercase hex digest. A prior call for the same (path, mtime) pair
// returns the cached result without reopening the file.
func (h *Hasher) HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}

	key := memoKey{path: path, mtime: info.ModTime().UnixNano()}

	h.mu.Lock()
	if cached, ok := h.memo[key]; ok {
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	digest, err := h.hashFileContents(path)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	h.memo[key] = digest
	h.mu.Unlock()

	return digest, nil
}

func (h *Hasher) hashFileContents(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the task loader, not user input at request time
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck

	sum := sha256.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(sum, f, buf); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// HashString returns the sha256 digest of s's UTF-8 bytes.
func (h *Hasher) HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns an xxhash of path's contents; it is never persisted
// or compared against a stored digest. No code in this module calls it:
// the TaskLoader reads and parses every declaration file on each load.
func (h *Hasher) Fingerprint(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	return digest.Sum64(), nil
}
