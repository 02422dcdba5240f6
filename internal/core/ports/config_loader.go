package ports

import "go.trai.ch/loom/internal/core/domain"

// ProjectConfig holds the resolved project-level configuration keys (the
// project's .pipeline.yaml), already path-resolved relative to the project
// root.
type ProjectConfig struct {
	ProjectDirectory      string
	SourceDirectory       string
	BuildDirectory        string
	HiddenBuildDirectory  string
	HiddenTaskDirectory   string
	CustomTemplates       []string
	Globals               map[string]any
	NJobs                 int
	PriorityScheduling    bool
	PriorityDiscountFactor float64
}

// ConfigLoader locates and parses a project's configuration file.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load walks upward from cwd to find the project configuration file and
	// returns its parsed, path-resolved contents.
	Load(cwd string) (ProjectConfig, error)
}

// TaskLoader discovers and parses every task declaration file reachable
// from a project's configured declaration roots, producing a fully
// populated, cycle-free Graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type TaskLoader interface {
	// LoadGraph parses every declaration file under cfg's task declaration
	// roots, fills in defaults, rewrites task-id depends_on references to the
	// referenced task's first produces entry, and returns the assembled
	// graph. The returned graph has already had Validate called on it.
	LoadGraph(cfg ProjectConfig) (*domain.Graph, error)
}
