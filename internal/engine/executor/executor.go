// Package executor runs the tasks a Scheduler proposes: render the task's
// template, persist dependency digests, write the rendered script to the
// hidden task directory, spawn an interpreter for it, verify the declared
// outputs exist, and persist their digests. Serial and parallel modes share
// this same per-task loop; only how many proposals are pulled from the
// Scheduler at once differs.
package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/loom/internal/engine/digest"
	"go.trai.ch/loom/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Config holds the per-build settings the Executor needs that are not
// already carried by the task graph itself.
type Config struct {
	// ProjectDirectory is the working directory a task's interpreter is
	// spawned in. Declared produces/depends_on paths are not joined with it:
	// they are stat-ed and hashed exactly as given.
	ProjectDirectory string
	// HiddenTaskDirectory is where each task's rendered script is written.
	HiddenTaskDirectory string
	// NJobs is the parallel worker pool size. 1 (or less) selects serial
	// execution.
	NJobs int
	// PriorityEnabled mirrors the Scheduler's own priority flag: when true,
	// the parallel pool only ever pulls as many proposals as it has free
	// slots for, so a lower-priority task already in flight never displaces
	// a higher-priority one that becomes ready a moment later.
	PriorityEnabled bool
	// Debug re-invokes a failed Python task's rendered script under
	// python3 -m pdb after reporting the original error. Callers are
	// expected to also force NJobs to 1 when Debug is set.
	Debug bool
}

// Executor owns the adapters a single task's render-write-spawn-verify loop
// needs.
type Executor struct {
	digest      *digest.Computer
	renderer    ports.TemplateResolver
	store       ports.HashStore
	environment ports.InterpreterEnvironment
	process     ports.ProcessExecutor
	verifier    ports.Verifier
	telemetry   ports.Telemetry
	logger      ports.Logger
	cfg         Config
}

// New creates an Executor.
func New(
	hasher ports.Hasher,
	renderer ports.TemplateResolver,
	store ports.HashStore,
	environment ports.InterpreterEnvironment,
	process ports.ProcessExecutor,
	verifier ports.Verifier,
	telemetry ports.Telemetry,
	logger ports.Logger,
	cfg Config,
) *Executor {
	return &Executor{
		digest:      digest.New(hasher, renderer),
		renderer:    renderer,
		store:       store,
		environment: environment,
		process:     process,
		verifier:    verifier,
		telemetry:   telemetry,
		logger:      logger,
		cfg:         cfg,
	}
}

// Run drives sched to completion against graph, dispatching each proposed
// task through the shared per-task loop. Serial mode (NJobs <= 1) runs one
// task at a time in the caller's goroutine; parallel mode keeps up to
// NJobs tasks in flight concurrently. The first task-level failure aborts
// the build: no further proposals are requested, but tasks already in
// flight are allowed to finish.
func (e *Executor) Run(ctx context.Context, graph *domain.Graph, sched *scheduler.Scheduler) error {
	if e.cfg.NJobs <= 1 {
		return e.runSerial(ctx, graph, sched)
	}
	return e.runParallel(ctx, graph, sched)
}

func (e *Executor) runSerial(ctx context.Context, graph *domain.Graph, sched *scheduler.Scheduler) error {
	for sched.HasWork() {
		ids := sched.Propose(1)
		if len(ids) == 0 {
			continue
		}

		id := ids[0]
		task, ok := graph.GetTask(id)
		if !ok {
			sched.Complete(ids)
			continue
		}

		err := e.runTask(ctx, task)
		sched.Complete(ids)
		if err != nil {
			return zerr.With(err, "task", id.String())
		}
	}
	return nil
}

type taskOutcome struct {
	id  domain.ID
	err error
}

// runParallel keeps a bounded pool of in-flight tasks, pulling fresh
// proposals whenever a slot frees up and reaping outcomes as they arrive.
// Blocking on the outcomes channel rather than polling on a timer is safe
// here: Scheduler.New guarantees every unfinished task either starts ready
// or has remaining_deps pointing only at other unfinished tasks, so once
// at least one task is in flight, forward progress (a result landing on
// the channel) is always eventually available.
//
// On the first failure, no further proposals are requested, but tasks
// already in flight are drained to completion; every one of their errors
// is kept and the return value is their concatenation, not just the first.
func (e *Executor) runParallel(ctx context.Context, graph *domain.Graph, sched *scheduler.Scheduler) error {
	outcomes := make(chan taskOutcome, e.cfg.NJobs)
	slotsFree := make(chan struct{}, e.cfg.NJobs)
	inFlight := 0
	var errs error
	done := ctx.Done()

	for sched.HasWork() || inFlight > 0 {
		if errs == nil {
			slots := e.cfg.NJobs - inFlight
			if slots > 0 {
				k := -1
				if e.cfg.PriorityEnabled {
					k = slots
				}
				for _, id := range sched.Propose(k) {
					task, ok := graph.GetTask(id)
					if !ok {
						sched.Complete([]domain.ID{id})
						continue
					}
					inFlight++
					go func(t domain.TaskRecord) {
						// At most NJobs tasks run at once, even when k = -1
						// hands over more ready tasks than there are slots.
						slotsFree <- struct{}{}
						err := e.runTask(ctx, t)
						<-slotsFree
						outcomes <- taskOutcome{id: t.ID, err: err}
					}(task)
				}
			}
		}

		if inFlight == 0 {
			break
		}

		select {
		case out := <-outcomes:
			inFlight--
			sched.Complete([]domain.ID{out.id})
			if out.err != nil {
				errs = errors.Join(errs, zerr.With(out.err, "task", out.id.String()))
			}
		case <-done:
			// Record the cancellation once, then fall back to draining
			// outcomes only: ctx.Done() stays readable forever once
			// closed, and a nil channel is never selected.
			errs = errors.Join(errs, ctx.Err())
			done = nil
		}
	}

	return errs
}

// runTask executes the six per-task steps against a single proposed task.
func (e *Executor) runTask(ctx context.Context, task domain.TaskRecord) error {
	var vertex ports.Vertex
	if e.telemetry != nil {
		ctx, vertex = e.telemetry.Record(ctx, task.ID.String())
	}

	err := e.execute(ctx, task, vertex)
	if vertex != nil {
		vertex.Complete(err)
	}
	if err != nil {
		e.logger.Error("task failed", err, "task", task.ID.String())
	}
	return err
}

func (e *Executor) execute(ctx context.Context, task domain.TaskRecord, vertex ports.Vertex) error {
	rendered, err := e.renderer.Render(task.Template, task.Parameters)
	if err != nil {
		return err
	}

	suffix, err := e.renderer.Suffix(task.Template)
	if err != nil {
		return err
	}

	if err := e.persistDependencyHashes(task); err != nil {
		return err
	}

	scriptPath := filepath.Join(e.cfg.HiddenTaskDirectory, task.ID.String()+"."+suffix)
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", scriptPath)
	}
	if err := os.WriteFile(scriptPath, []byte(rendered), 0o644); err != nil { //nolint:gosec // script is a build artifact, not a secret
		return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", scriptPath)
	}

	for _, target := range task.Produces {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", target)
		}
	}

	interpreterPath, env, err := e.environment.Resolve(ctx, suffix, e.cfg.ProjectDirectory)
	if err != nil {
		return err
	}

	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if vertex != nil {
		stdout, stderr = vertex.Stdout(), vertex.Stderr()
	}

	if err := e.process.Run(ctx, []string{interpreterPath, scriptPath}, e.cfg.ProjectDirectory, env, stdout, stderr); err != nil {
		if e.cfg.Debug && suffix == "py" {
			e.logger.Warn("re-invoking failed task under pdb", "task", task.ID.String())
			_ = e.process.Run(ctx, []string{interpreterPath, "-m", "pdb", scriptPath}, e.cfg.ProjectDirectory, env, os.Stdout, os.Stderr)
		}
		return err
	}

	// An empty root lets VerifyOutputs' root-join act as a no-op: produces
	// paths in this module are already directly stat-able (absolute, or
	// relative to the working directory the build was invoked from), the
	// same assumption the StalenessAnalyzer's digest computation makes.
	missing, err := e.verifier.VerifyOutputs("", task.Produces)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return zerr.With(domain.ErrMissingTarget, "task", task.ID.String(), "missing", missing)
	}

	if err := e.persistTargetHashes(task); err != nil {
		return err
	}

	return e.store.Flush()
}

// persistDependencyHashes stores the current digest of every predecessor
// (depends_on entries, the task's own template, its declaration file) the
// task actually has, mirroring the StalenessAnalyzer's notion of digest so
// a just-executed task reads back as fresh on the very next analysis.
func (e *Executor) persistDependencyHashes(task domain.TaskRecord) error {
	seen := make(map[string]struct{}, len(task.DependsOn)+2)
	record := func(key string) error {
		if _, ok := seen[key]; ok {
			return nil
		}
		seen[key] = struct{}{}
		entries, exists, err := e.digest.Of(task, domain.NewID(key))
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		for _, entry := range entries {
			if err := e.store.Put(domain.HashEntry{TaskID: task.ID, ArtifactKey: entry.Path, Digest: entry.Digest}); err != nil {
				return err
			}
		}
		return nil
	}

	for _, dep := range task.DependsOn {
		if err := record(dep); err != nil {
			return err
		}
	}
	if task.Template != "" {
		if err := record(task.Template); err != nil {
			return err
		}
	}
	if task.ConfigPath != "" {
		if err := record(task.ConfigPath); err != nil {
			return err
		}
	}
	return nil
}

// persistTargetHashes stores the digest of every declared output, computed
// after VerifyOutputs has confirmed each one exists.
func (e *Executor) persistTargetHashes(task domain.TaskRecord) error {
	for _, target := range task.Produces {
		entries, exists, err := e.digest.Path(target)
		if err != nil {
			return err
		}
		if !exists {
			return zerr.With(domain.ErrMissingTarget, "task", task.ID.String(), "path", target)
		}

		for _, entry := range entries {
			if err := e.store.Put(domain.HashEntry{TaskID: task.ID, ArtifactKey: entry.Path, Digest: entry.Digest}); err != nil {
				return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
			}
		}
	}
	return nil
}
