// Package fs implements ports.Verifier: confirming a task's declared
// outputs actually landed on disk once its subprocess exits.
package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/zerr"
)

// Verifier checks a task's declared produces paths against the filesystem
// after its subprocess has exited.
type Verifier struct{}

// NewVerifier creates a Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutputs stats each of outputs, joined against root, and collects
// the ones that don't exist. A stat failure other than not-exist (a
// permissions error, say) is fatal rather than reported as missing, since
// it means the check itself is unreliable.
func (v *Verifier) VerifyOutputs(root string, outputs []string) ([]string, error) {
	var missing []string
	for _, output := range outputs {
		path := filepath.Join(root, output)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, output)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
		}
	}
	return missing, nil
}
