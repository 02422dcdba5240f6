// Package config discovers and parses a project's configuration file and
// its task declaration tree.
package config

// projectConfigDTO is the raw shape of a .pipeline.yaml document, before
// defaults are filled and paths resolved.
type projectConfigDTO struct {
	ProjectDirectory       string   `yaml:"project_directory"`
	SourceDirectory        string   `yaml:"source_directory"`
	BuildDirectory         string   `yaml:"build_directory"`
	HiddenBuildDirectory   string   `yaml:"hidden_build_directory"`
	HiddenTaskDirectory    string   `yaml:"hidden_task_directory"`
	CustomTemplates        []string `yaml:"custom_templates"`
	Globals                map[string]any `yaml:"globals"`
	NJobs                  int      `yaml:"n_jobs"`
	PriorityScheduling     bool     `yaml:"priority_scheduling"`
	PriorityDiscountFactor float64  `yaml:"priority_discount_factor"`
}

// taskDeclarationDTO is the raw shape of one entry in a task declaration
// file's id -> record mapping.
type taskDeclarationDTO struct {
	Template   string         `yaml:"template"`
	DependsOn  []string       `yaml:"depends_on"`
	Produces   []string       `yaml:"produces"`
	Priority   *float64       `yaml:"priority"`
	RunAlways  bool           `yaml:"run_always"`
	Parameters map[string]any `yaml:"parameters"`
}
