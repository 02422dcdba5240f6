package shell

import (
	"context"
	"os"
	"os/exec"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InterpreterEnvironment = (*Environment)(nil)

// interpreterBySuffix names the executable that runs a rendered script of
// each known suffix.
var interpreterBySuffix = map[string]struct {
	executable   string
	pathVariable string
}{
	"py": {executable: "python3", pathVariable: "PYTHONPATH"},
	"r":  {executable: "Rscript", pathVariable: "R_LIBS"},
}

// Environment implements ports.InterpreterEnvironment by locating an
// interpreter on the host PATH and prepending the project directory to its
// module-search-path variable.
type Environment struct{}

// NewEnvironment creates an Environment.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Resolve implements ports.InterpreterEnvironment.
func (e *Environment) Resolve(_ context.Context, suffix, projectDirectory string) (string, []string, error) {
	interp, ok := interpreterBySuffix[suffix]
	if !ok {
		return "", nil, zerr.With(domain.ErrUnsupportedSuffix, "suffix", suffix)
	}

	path, err := exec.LookPath(interp.executable)
	if err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, domain.ErrInterpreterUnavailable.Error()), "interpreter", interp.executable)
	}

	env := os.Environ()
	augmented := make([]string, 0, len(env)+1)
	found := false
	for _, entry := range env {
		key, value, _ := cutEnv(entry)
		if key == interp.pathVariable {
			augmented = append(augmented, key+"="+projectDirectory+string(os.PathListSeparator)+value)
			found = true
			continue
		}
		augmented = append(augmented, entry)
	}
	if !found {
		augmented = append(augmented, interp.pathVariable+"="+projectDirectory)
	}

	return path, augmented, nil
}

func cutEnv(entry string) (key, value string, ok bool) {
	for i := 0; i < len(entry); i++ {
		if entry[i] == '=' {
			return entry[:i], entry[i+1:], true
		}
	}
	return entry, "", false
}
