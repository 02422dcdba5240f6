package ports

// Hasher computes the digests the StalenessAnalyzer and HashStore compare
// against. HashFile and HashString both return lowercase hex-encoded
// sha256, the digest format the hash store persists. Fingerprint is a
// cheaper, non-persisted xxhash; nothing in the module calls it, and
// declaration files are re-parsed on every load.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile returns the sha256 digest of path's contents. Repeated calls
	// for the same (path, mtime) pair within one process are served from an
	// in-memory memo rather than re-reading the file.
	HashFile(path string) (string, error)

	// HashString returns the sha256 digest of an already-rendered string
	// (used for a task's rendered script).
	HashString(s string) string

	// Fingerprint returns a fast, non-cryptographic xxhash of path's
	// contents. It is not persisted and has no caller in the module.
	Fingerprint(path string) (uint64, error)
}
