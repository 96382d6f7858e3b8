package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/graph"
)

// orderCommand prints the execution order of a graph.
func (c *CLI) orderCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "order [graph.json]",
		Short: "Print the execution order of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(args[0])
			if err != nil {
				return err
			}
			opts.Refresh = refresh

			result, err := c.execute(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows, muted := orderRows(result.Order)
			printTable(out, []string{"#", "ID", "Type", "Title", "Mode"}, rows, muted)
			printStats(out, result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.OrderHit)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute the order even if it is cached")
	return cmd
}

// orderRows builds one row per node; nodes that do not run every step are muted.
func orderRows(order []*graph.Node) ([][]string, map[int]bool) {
	rows := make([][]string, len(order))
	muted := map[int]bool{}
	for i, n := range order {
		rows[i] = []string{strconv.Itoa(i), strconv.Itoa(n.ID), n.Type, n.Title, n.Mode.String()}
		if n.Mode != graph.ModeAlways {
			muted[i] = true
		}
	}
	return rows, muted
}
