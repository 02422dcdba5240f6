// Package app wires the four core subsystems (TaskLoader/Graph,
// StalenessAnalyzer, Scheduler, Executor) into the three operations the CLI
// exposes: Build, Collect, and Clean. Config-independent adapters (logger,
// hasher, process executor, interpreter environment, verifier) are shared
// singletons resolved once through graft; the TemplateResolver and
// HashStore are config-dependent (custom_templates, hidden_build_directory)
// and are constructed fresh for each invocation against the loaded
// ports.ProjectConfig, the same split internal/adapters/hashstore's node.go
// documents.
package app

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/loom/internal/adapters/config"
	"go.trai.ch/loom/internal/adapters/hashstore"
	"go.trai.ch/loom/internal/adapters/template"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/loom/internal/engine/executor"
	"go.trai.ch/loom/internal/engine/scheduler"
	"go.trai.ch/loom/internal/engine/staleness"
	"go.trai.ch/zerr"
)

// Options carries the flags a `loom build` invocation accepts, layered on
// top of the project's .pipeline.yaml.
type Options struct {
	// NJobsOverride, when non-zero, overrides the configured n_jobs.
	NJobsOverride int
	// Priority forces priority scheduling on regardless of the config file.
	Priority bool
	// Debug re-invokes a failed Python task under pdb and forces serial
	// execution.
	Debug bool
}

// App holds the config-independent adapters shared across every
// invocation; Build, Collect, and Clean each load a fresh ProjectConfig and
// construct the config-dependent pieces around these.
type App struct {
	configLoader ports.ConfigLoader
	hasher       ports.Hasher
	process      ports.ProcessExecutor
	environment  ports.InterpreterEnvironment
	verifier     ports.Verifier
	telemetry    ports.Telemetry
	logger       ports.Logger
}

// New creates an App from its config-independent adapters.
func New(
	configLoader ports.ConfigLoader,
	hasher ports.Hasher,
	process ports.ProcessExecutor,
	environment ports.InterpreterEnvironment,
	verifier ports.Verifier,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: configLoader,
		hasher:       hasher,
		process:      process,
		environment:  environment,
		verifier:     verifier,
		telemetry:    telemetry,
		logger:       logger,
	}
}

// prepared bundles everything derived from loading and analyzing a
// project's graph, shared by Build and Collect.
type prepared struct {
	cfg             ports.ProjectConfig
	graph           *domain.Graph
	resolver        ports.TemplateResolver
	store           *hashstore.Store
	unfinished      staleness.Unfinished
	priorityEnabled bool
}

// prepare loads cfg, builds the graph, and runs staleness analysis.
// priorityOverride is the CLI's --priority flag; priority scheduling is
// enabled if either the config or the override asks for it, and
// PropagatePriority must run whenever that combined decision is true, not
// just when the config file alone sets priority_scheduling.
func (a *App) prepare(cwd string, priorityOverride bool) (*prepared, error) {
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load project configuration")
	}

	resolver, err := template.New(cfg.CustomTemplates)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load templates")
	}

	taskLoader := config.NewTaskLoader(a.logger, resolver)
	graph, err := taskLoader.LoadGraph(cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load task graph")
	}

	priorityEnabled := cfg.PriorityScheduling || priorityOverride
	if priorityEnabled {
		graph.PropagatePriority(cfg.PriorityDiscountFactor)
	}

	store, err := hashstore.Open(filepath.Join(cfg.HiddenBuildDirectory, "hashes.yaml"))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open hash store")
	}

	analyzer := staleness.New(a.hasher, store, resolver, a.logger)
	unfinished, err := analyzer.Analyze(graph)
	if err != nil {
		return nil, zerr.Wrap(err, "staleness analysis failed")
	}
	if err := store.Flush(); err != nil {
		return nil, zerr.Wrap(err, "failed to flush hash store")
	}

	return &prepared{
		cfg:             cfg,
		graph:           graph,
		resolver:        resolver,
		store:           store,
		unfinished:      unfinished,
		priorityEnabled: priorityEnabled,
	}, nil
}

// Build loads the project, determines the unfinished task set, and runs
// the scheduler/executor loop to completion (or the first fatal error).
func (a *App) Build(ctx context.Context, cwd string, opts Options) error {
	p, err := a.prepare(cwd, opts.Priority)
	if err != nil {
		return err
	}

	njobs := p.cfg.NJobs
	if opts.NJobsOverride > 0 {
		njobs = opts.NJobsOverride
	}
	if opts.Debug {
		njobs = 1
	}

	sched := scheduler.New(p.graph, p.unfinished, p.priorityEnabled)

	exec := executor.New(
		a.hasher,
		p.resolver,
		p.store,
		a.environment,
		a.process,
		a.verifier,
		a.telemetry,
		a.logger,
		executor.Config{
			ProjectDirectory:    p.cfg.ProjectDirectory,
			HiddenTaskDirectory: p.cfg.HiddenTaskDirectory,
			NJobs:               njobs,
			PriorityEnabled:     p.priorityEnabled,
			Debug:               opts.Debug,
		},
	)

	runErr := exec.Run(ctx, p.graph, sched)
	if err := p.store.Flush(); err != nil && runErr == nil {
		return zerr.Wrap(err, "failed to flush hash store")
	}
	if runErr != nil {
		return zerr.Wrap(runErr, "build execution failed")
	}
	return nil
}

// TaskSummary is one row of Collect's inspection output.
type TaskSummary struct {
	ID         string   `json:"id"`
	Template   string   `json:"template"`
	Produces   []string `json:"produces"`
	DependsOn  []string `json:"depends_on"`
	Unfinished bool     `json:"unfinished"`
}

// Collect loads the project and staleness-analyzes it without executing
// anything, returning one summary per task in topological order.
func (a *App) Collect(ctx context.Context, cwd string) ([]TaskSummary, error) {
	p, err := a.prepare(cwd, false)
	if err != nil {
		return nil, err
	}

	var summaries []TaskSummary
	for task := range p.graph.WalkTasks() {
		summaries = append(summaries, TaskSummary{
			ID:         task.ID.String(),
			Template:   task.Template,
			Produces:   task.Produces,
			DependsOn:  task.DependsOn,
			Unfinished: p.unfinished.Has(task.ID),
		})
	}
	return summaries, nil
}

// Clean recursively removes the project's configured build_directory.
func (a *App) Clean(ctx context.Context, cwd string) error {
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load project configuration")
	}

	a.logger.Info("removing build directory", "path", cfg.BuildDirectory)
	if err := os.RemoveAll(cfg.BuildDirectory); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", cfg.BuildDirectory)
	}
	return nil
}
