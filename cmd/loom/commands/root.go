// Package commands implements the CLI commands for the loom build tool.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"go.trai.ch/loom/internal/app"
)

// CLI represents the command line interface for loom.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance wired to a.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "loom",
		Short:         "A YAML-driven, template-based build tool for computational projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", ".", "project directory to search upward from for .pipeline.yaml")

	c := &CLI{app: a, rootCmd: rootCmd}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCollectCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) cwd(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config")
	return dir
}
