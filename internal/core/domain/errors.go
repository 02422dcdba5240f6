package domain

import "go.trai.ch/zerr"

// Sentinel errors for each failure kind named by the build's error model.
// Components attach structured metadata (task id, path, ...) with zerr.With.
var (
	// ErrConfigNotFound is returned when no project configuration file can be located.
	ErrConfigNotFound = zerr.New("Cannot find '.pipeline.yaml' in current directory.")
	// ErrConfigParseFailed is returned when the project configuration fails to parse.
	ErrConfigParseFailed = zerr.New("config parse failed")
	// ErrUnknownConfigKey is returned when the configuration mapping has an unrecognized key.
	ErrUnknownConfigKey = zerr.New("unknown config key")
	// ErrPathResolutionFailed is returned when a configured path cannot be resolved.
	ErrPathResolutionFailed = zerr.New("path resolution failed")

	// ErrDeclarationParseFailed is returned when a task declaration file fails to parse as YAML.
	ErrDeclarationParseFailed = zerr.New("task declaration parse failed")
	// ErrDuplicateTaskInFile is returned when a single declaration file repeats a task id.
	ErrDuplicateTaskInFile = zerr.New("duplicate task id in declaration file")
	// ErrDuplicateTaskID is returned when a task id is declared in more than one file.
	ErrDuplicateTaskID = zerr.New("duplicate task id across project")
	// ErrUnknownTemplate is returned when a task names a template the resolver cannot find.
	ErrUnknownTemplate = zerr.New("unknown template")

	// ErrCycleDetected is returned when the task graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected in task graph")
	// ErrConflictingProducers is returned when two tasks declare the same produces path.
	ErrConflictingProducers = zerr.New("two tasks produce the same artifact")
	// ErrMissingDependency is returned when a task references a node absent from the graph.
	ErrMissingDependency = zerr.New("missing dependency")
	// ErrTaskAlreadyExists is returned by Graph.AddTask on a duplicate id.
	ErrTaskAlreadyExists = zerr.New("task already exists in graph")
	// ErrTaskNotFound is returned when a requested task id is absent from the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrUndefinedVariable is returned when a template references a variable the render context lacks.
	ErrUndefinedVariable = zerr.New("undefined template variable")

	// ErrUnsupportedSuffix is returned when a template's inferred script suffix has no known interpreter.
	ErrUnsupportedSuffix = zerr.New("unsupported template suffix")
	// ErrInterpreterUnavailable is returned when the host cannot run a task's required interpreter (e.g. R).
	ErrInterpreterUnavailable = zerr.New("interpreter unavailable")
	// ErrSubprocessFailed is returned when a task's rendered script exits with a nonzero status.
	ErrSubprocessFailed = zerr.New("subprocess exited nonzero")
	// ErrMissingTarget is returned when a task's subprocess exits zero but a declared output is absent.
	ErrMissingTarget = zerr.New("declared target missing after execution")

	// ErrNoTargetsSpecified is returned when a build is invoked with no targets and no "all".
	ErrNoTargetsSpecified = zerr.New("no targets specified")
	// ErrFileOpenFailed is returned when a file cannot be opened for hashing.
	ErrFileOpenFailed = zerr.New("file open failed")
	// ErrFileHashFailed is returned when streaming a file's bytes into the hasher fails.
	ErrFileHashFailed = zerr.New("file hash failed")
	// ErrStoreReadFailed is returned when the hash store's backing file cannot be read.
	ErrStoreReadFailed = zerr.New("hash store read failed")
	// ErrStoreWriteFailed is returned when the hash store's backing file cannot be flushed.
	ErrStoreWriteFailed = zerr.New("hash store write failed")
)
