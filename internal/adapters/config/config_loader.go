package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// defaultConfigFilename is the project configuration file findConfiguration
// looks for while walking up from the working directory.
const defaultConfigFilename = ".pipeline.yaml"

const (
	defaultSourceDirectory      = "src"
	defaultBuildDirectory       = "bld"
	defaultHiddenBuildDirSuffix = ".pipeline"
	defaultHiddenTaskDirSuffix  = ".tasks"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader locates and parses a project's .pipeline.yaml, filling defaults
// and resolving every path key relative to the project directory.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a Loader that logs discovery and default-filling
// decisions through log.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{logger: log}
}

// Load walks upward from cwd looking for .pipeline.yaml, parses it, and
// returns the resolved configuration.
func (l *Loader) Load(cwd string) (ports.ProjectConfig, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return ports.ProjectConfig{}, err
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // path discovered by walking the caller's own tree
	if err != nil {
		return ports.ProjectConfig{}, zerr.With(zerr.Wrap(err, "failed to read project configuration"), "path", configPath)
	}

	var dto projectConfigDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return ports.ProjectConfig{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return ports.ProjectConfig{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	for key := range keys {
		switch key {
		case "project_directory", "source_directory", "build_directory", "hidden_build_directory",
			"hidden_task_directory", "custom_templates", "globals", "n_jobs",
			"priority_scheduling", "priority_discount_factor":
		default:
			return ports.ProjectConfig{}, zerr.With(domain.ErrUnknownConfigKey, "key", key, "path", configPath)
		}
	}

	projectDir := dto.ProjectDirectory
	if projectDir == "" {
		projectDir = filepath.Dir(configPath)
	}
	if !filepath.IsAbs(projectDir) {
		projectDir = filepath.Join(filepath.Dir(configPath), projectDir)
	}

	cfg := ports.ProjectConfig{
		ProjectDirectory:       projectDir,
		SourceDirectory:        resolveDefault(projectDir, dto.SourceDirectory, defaultSourceDirectory),
		BuildDirectory:         resolveDefault(projectDir, dto.BuildDirectory, defaultBuildDirectory),
		CustomTemplates:        dto.CustomTemplates,
		Globals:                dto.Globals,
		NJobs:                  dto.NJobs,
		PriorityScheduling:     dto.PriorityScheduling,
		PriorityDiscountFactor: dto.PriorityDiscountFactor,
	}
	if cfg.NJobs <= 0 {
		cfg.NJobs = 1
	}

	buildDir := cfg.BuildDirectory
	cfg.HiddenBuildDirectory = resolveDefault(buildDir, dto.HiddenBuildDirectory, defaultHiddenBuildDirSuffix)
	cfg.HiddenTaskDirectory = resolveDefault(buildDir, dto.HiddenTaskDirectory, defaultHiddenTaskDirSuffix)

	for i, t := range cfg.CustomTemplates {
		if !filepath.IsAbs(t) {
			cfg.CustomTemplates[i] = filepath.Join(projectDir, t)
		}
	}

	l.logger.Info("loaded project configuration", "path", configPath, "project_directory", projectDir)

	return cfg, nil
}

// findConfiguration walks up from dir looking for defaultConfigFilename,
// stopping at the filesystem root.
func (l *Loader) findConfiguration(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrPathResolutionFailed.Error()), "path", dir)
	}

	for {
		candidate := filepath.Join(dir, defaultConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(domain.ErrConfigNotFound, "searched_from", dir)
		}
		dir = parent
	}
}

// resolveDefault returns value resolved against base if non-empty,
// otherwise base joined with fallback.
func resolveDefault(base, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(base, value)
}
