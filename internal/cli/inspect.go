package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/graph"
)

// inspectCommand prints the nodes, slots and links of a graph.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Show the nodes, slots and links of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(args[0])
			if err != nil {
				return err
			}
			result, err := c.execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), result.Graph, result.Migration)
			return nil
		},
	}
}

func printInspect(w io.Writer, g *graph.Graph, report graph.MigrationReport) {
	fmt.Fprintln(w, StyleTitle.Render("Graph"))
	printKeyValue(w, "id", g.ID)
	printKeyValue(w, "nodes", strconv.Itoa(g.NodeCount()))
	printKeyValue(w, "links", strconv.Itoa(g.LinkCount()))
	if report.Migrated() > 0 {
		printWarning(w, "migrated from version %g (%d inputs, %d outputs)", report.FromVersion, report.LegacyInputs, report.NullOutputs)
	}
	if err := g.Validate(); err != nil {
		printWarning(w, "%v", err)
	}

	nodes := g.Nodes()
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{strconv.Itoa(n.ID), n.Type, n.Title, formatInputs(n), formatOutputs(n)}
	}
	fmt.Fprintln(w)
	printTable(w, []string{"ID", "Type", "Title", "Inputs", "Outputs"}, rows, nil)

	links := g.Links()
	if len(links) == 0 {
		return
	}
	linkRows := make([][]string, len(links))
	for i, l := range links {
		linkRows[i] = []string{
			strconv.Itoa(int(l.ID)),
			fmt.Sprintf("%d:%d", l.OriginID, l.OriginSlot),
			fmt.Sprintf("%d:%d", l.TargetID, l.TargetSlot),
			l.Type,
		}
	}
	printTable(w, []string{"Link", "Origin", "Target", "Type"}, linkRows, nil)
}

// formatInputs renders slots as "name:type[links]"; "*" marks AllowMultiple.
func formatInputs(n *graph.Node) string {
	parts := make([]string, len(n.Inputs))
	for i, in := range n.Inputs {
		name := in.Name
		if in.AllowMultiple {
			name += "*"
		}
		parts[i] = formatSlot(name, in.Type, in.Links)
	}
	return strings.Join(parts, "\n")
}

func formatOutputs(n *graph.Node) string {
	parts := make([]string, len(n.Outputs))
	for i, out := range n.Outputs {
		parts[i] = formatSlot(out.Name, out.Type, out.Links)
	}
	return strings.Join(parts, "\n")
}

func formatSlot(name, typ string, links []graph.LinkID) string {
	s := name
	if typ != "" {
		s += ":" + typ
	}
	if len(links) > 0 {
		ids := make([]string, len(links))
		for i, id := range links {
			ids[i] = strconv.Itoa(int(id))
		}
		s += "[" + strings.Join(ids, ",") + "]"
	}
	return s
}
