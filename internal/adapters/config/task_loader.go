package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.TaskLoader = (*TaskLoader)(nil)

// TaskLoader recursively enumerates task declaration files under a
// project's source directory, templates each one against the project
// config before parsing, fills defaults, rewrites task-id depends_on
// references, and assembles the result into a validated Graph.
type TaskLoader struct {
	logger   ports.Logger
	renderer ports.TemplateResolver
}

// NewTaskLoader creates a TaskLoader. renderer is used only to expand
// `{{ ... }}` references inside declaration files before they're parsed as
// YAML — not to render a task's own script template.
func NewTaskLoader(log ports.Logger, renderer ports.TemplateResolver) *TaskLoader {
	return &TaskLoader{logger: log, renderer: renderer}
}

// LoadGraph implements ports.TaskLoader.
func (l *TaskLoader) LoadGraph(cfg ports.ProjectConfig) (*domain.Graph, error) {
	files, err := l.findDeclarationFiles(cfg.SourceDirectory)
	if err != nil {
		return nil, err
	}

	records := make(map[string]domain.TaskRecord)

	context := declarationContext(cfg)

	for _, path := range files {
		fileRecords, err := l.loadFile(path, context)
		if err != nil {
			return nil, err
		}
		for id, rec := range fileRecords {
			if _, exists := records[id]; exists {
				return nil, zerr.With(domain.ErrDuplicateTaskID, "task_id", id)
			}
			records[id] = rec
		}
	}

	fillDefaults(records, cfg)
	rewriteDependsOn(records)

	graph := domain.NewGraph()
	for _, rec := range records {
		if err := graph.AddTask(rec); err != nil {
			return nil, err
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}

	l.logger.Info("loaded task graph", "tasks", len(records), "files", len(files))

	return graph, nil
}

func (l *TaskLoader) findDeclarationFiles(sourceDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDeclarationParseFailed.Error()), "source_directory", sourceDir)
	}
	sort.Strings(files)
	return files, nil
}

func (l *TaskLoader) loadFile(path string, context map[string]any) (map[string]domain.TaskRecord, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from walking the project's own source tree
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDeclarationParseFailed.Error()), "path", path)
	}

	rendered, err := l.renderer.RenderInline(string(raw), context)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	if err := checkDuplicateKeys(rendered); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	var dtos map[string]taskDeclarationDTO
	if err := yaml.Unmarshal([]byte(rendered), &dtos); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDeclarationParseFailed.Error()), "path", path)
	}

	records := make(map[string]domain.TaskRecord, len(dtos))
	for id, dto := range dtos {
		priority := 0.0
		if dto.Priority != nil {
			priority = *dto.Priority
		}
		records[id] = domain.TaskRecord{
			ID:         domain.NewID(id),
			Template:   dto.Template,
			DependsOn:  dto.DependsOn,
			Produces:   dto.Produces,
			ConfigPath: path,
			RunAlways:  dto.RunAlways,
			Priority:   priority,
			Parameters: dto.Parameters,
		}
	}

	return records, nil
}

// checkDuplicateKeys rejects a top-level mapping that repeats a key, which
// yaml.Unmarshal would otherwise silently resolve by keeping the last
// occurrence.
func checkDuplicateKeys(rendered string) error {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(rendered), &root); err != nil {
		return zerr.Wrap(err, domain.ErrDeclarationParseFailed.Error())
	}
	if len(root.Content) == 0 {
		return nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}

	seen := make(map[string]struct{})
	for i := 0; i < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if _, ok := seen[key]; ok {
			return zerr.With(domain.ErrDuplicateTaskInFile, "task_id", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// fillDefaults applies the defaulting rules: missing produces becomes
// <hidden_build_dir>/<id>, missing depends_on becomes empty (already the
// zero value), missing priority becomes 0 (already applied in loadFile).
func fillDefaults(records map[string]domain.TaskRecord, cfg ports.ProjectConfig) {
	for id, rec := range records {
		if len(rec.Produces) == 0 {
			rec.Produces = []string{filepath.Join(cfg.HiddenBuildDirectory, id)}
			records[id] = rec
		}
	}
}

// rewriteDependsOn replaces any depends_on entry that names another task's
// id with that task's first produces entry.
func rewriteDependsOn(records map[string]domain.TaskRecord) {
	for id, rec := range records {
		rewritten := make([]string, len(rec.DependsOn))
		for i, dep := range rec.DependsOn {
			if upstream, ok := records[dep]; ok {
				rewritten[i] = upstream.FirstProduces()
			} else {
				rewritten[i] = dep
			}
		}
		rec.DependsOn = rewritten
		records[id] = rec
	}
}

// declarationContext builds the render context a declaration file sees:
// the project config's fields plus any user-declared globals, merged so
// globals never shadow a reserved config key.
func declarationContext(cfg ports.ProjectConfig) map[string]any {
	ctx := make(map[string]any, len(cfg.Globals)+8)
	for k, v := range cfg.Globals {
		ctx[k] = v
	}
	ctx["project_directory"] = cfg.ProjectDirectory
	ctx["source_directory"] = cfg.SourceDirectory
	ctx["build_directory"] = cfg.BuildDirectory
	ctx["hidden_build_directory"] = cfg.HiddenBuildDirectory
	ctx["hidden_task_directory"] = cfg.HiddenTaskDirectory
	ctx["n_jobs"] = cfg.NJobs
	return ctx
}
