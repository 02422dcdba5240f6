package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newCollectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Inspect the task graph without executing anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := c.app.Collect(cmd.Context(), c.cwd(cmd))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}

			for _, s := range summaries {
				status := "up to date"
				if s.Unfinished {
					status = "unfinished"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", s.ID, status)                              //nolint:errcheck
				fmt.Fprintf(cmd.OutOrStdout(), "  template:   %s\n", s.Template)                      //nolint:errcheck
				fmt.Fprintf(cmd.OutOrStdout(), "  produces:   %s\n", strings.Join(s.Produces, ", "))  //nolint:errcheck
				fmt.Fprintf(cmd.OutOrStdout(), "  depends_on: %s\n", strings.Join(s.DependsOn, ", ")) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array instead of text")
	return cmd
}
