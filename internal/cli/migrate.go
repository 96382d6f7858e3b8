package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/pipeline"
)

// migrateCommand rewrites a graph file in the current format.
func (c *CLI) migrateCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "migrate [graph.json]",
		Short: "Rewrite a graph in the current file format",
		Long: `Migrate loads a graph, upgrading legacy data such as single-link inputs,
and writes it back in the current format. Without --output the result is
written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, _, err := c.loadTypes()
			if err != nil {
				return err
			}
			g, report, err := pipeline.Load(cmd.Context(), types, args[0], c.Logger)
			if err != nil {
				return err
			}

			status := cmd.ErrOrStderr()
			if output == "" {
				if err := graph.Write(g, cmd.OutOrStdout()); err != nil {
					return err
				}
			} else {
				if err := graph.WriteFile(g, output); err != nil {
					return err
				}
				status = cmd.OutOrStdout()
			}

			if report.Migrated() == 0 {
				printInfo(status, "Already at version %g", graph.CurrentVersion)
			} else {
				printSuccess(status, "Migrated from version %g to %g", report.FromVersion, graph.CurrentVersion)
				printDetail(status, "%d legacy inputs, %d null outputs", report.LegacyInputs, report.NullOutputs)
			}
			if output != "" {
				printFile(status, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
