package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/graph"
)

// runCommand executes a graph and prints the values on its outputs.
func (c *CLI) runCommand() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "Execute a graph and print its output values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			opts, err := c.options(args[0])
			if err != nil {
				return err
			}
			opts.Run = true

			prog := newProgress(c.Logger)
			result, err := c.execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for range steps - 1 {
				if err := result.Graph.RunStep(cmd.Context()); err != nil {
					return fmt.Errorf("run: %w", err)
				}
			}
			prog.done(fmt.Sprintf("Ran %d step(s)", steps))

			printOutputs(cmd.OutOrStdout(), result.Order)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of steps to execute")
	return cmd
}

// printOutputs lists every output slot value in execution order.
func printOutputs(w io.Writer, order []*graph.Node) {
	var rows [][]string
	muted := map[int]bool{}
	for _, n := range order {
		for _, out := range n.Outputs {
			if n.Mode != graph.ModeAlways {
				muted[len(rows)] = true
			}
			value := "-"
			if v := out.Data(); v != nil {
				value = fmt.Sprint(v)
			}
			rows = append(rows, []string{strconv.Itoa(n.ID), n.Title, out.Name, value})
		}
	}
	if len(rows) == 0 {
		printInfo(w, "Graph has no outputs")
		return
	}
	printTable(w, []string{"ID", "Node", "Output", "Value"}, rows, muted)
}
