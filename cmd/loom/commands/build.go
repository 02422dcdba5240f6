package commands

import (
	"github.com/spf13/cobra"

	"go.trai.ch/loom/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	var (
		nJobs    int
		priority bool
		debug    bool
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every stale task in the project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), c.cwd(cmd), app.Options{
				NJobsOverride: nJobs,
				Priority:      priority,
				Debug:         debug,
			})
		},
	}

	cmd.Flags().IntVar(&nJobs, "n-jobs", 0, "worker count (0 keeps the configured n_jobs)")
	cmd.Flags().BoolVar(&priority, "priority", false, "enable priority-ordered scheduling")
	cmd.Flags().BoolVar(&debug, "debug", false, "re-invoke a failed Python task under pdb; forces n-jobs=1")
	// --watch is parsed directly from os.Args in main.go, before the App
	// (and its Telemetry choice) is constructed; it is declared here too
	// so `loom build --help` documents it and cobra doesn't reject it.
	cmd.Flags().BoolVar(&watch, "watch", false, "attach the live terminal UI")

	return cmd
}
