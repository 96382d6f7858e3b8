package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/slotgraph/pkg/graph"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds node ids, type keys and execution order to node labels
	// and slot types to edges. When false, only titles and slot names are
	// shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes with ModeNever are drawn dashed and grey.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	position := map[int]int{}
	if opts.Detailed {
		for i, n := range g.ComputeExecutionOrder() {
			position[n.ID] = i
		}
	}
	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed, position[n.ID])
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		fmt.Fprintf(&buf, "  n%d:o%d:s -> n%d:i%d:n", l.OriginID, l.OriginSlot, l.TargetID, l.TargetSlot)
		if opts.Detailed && l.Type != "" {
			fmt.Fprintf(&buf, " [label=%s]", quote(l.Type))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fmtLabel builds a record label: an input row, the title, an output row.
func fmtLabel(n *graph.Node, detailed bool, order int) string {
	title := escapeRecord(n.Title)
	if detailed {
		title += fmt.Sprintf("\\n#%d %s\\norder %d", n.ID, escapeRecord(n.Type), order)
	}

	var sections []string
	if len(n.Inputs) > 0 {
		ports := make([]string, len(n.Inputs))
		for i, in := range n.Inputs {
			name := in.Name
			if in.AllowMultiple {
				name += "[]"
			}
			ports[i] = fmt.Sprintf("<i%d> %s", i, escapeRecord(name))
		}
		sections = append(sections, "{"+strings.Join(ports, "|")+"}")
	}
	sections = append(sections, title)
	if len(n.Outputs) > 0 {
		ports := make([]string, len(n.Outputs))
		for i, out := range n.Outputs {
			ports[i] = fmt.Sprintf("<o%d> %s", i, escapeRecord(out.Name))
		}
		sections = append(sections, "{"+strings.Join(ports, "|")+"}")
	}
	return "{" + strings.Join(sections, "|") + "}"
}

// fmtAttrs returns the node attributes. Style flags are merged into a single
// style attribute.
func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{"label=" + quote(label)}
	var style []string
	if n.Shape == graph.ShapeBox {
		style = append(style, "filled")
	}
	if n.Mode == graph.ModeNever {
		if n.Shape != graph.ShapeBox {
			style = append(style, "rounded", "filled")
		}
		style = append(style, "dashed")
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=black")
	}
	if len(style) > 0 {
		attrs = append(attrs, "style="+quote(strings.Join(style, ",")))
	}
	return attrs
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func escapeRecord(s string) string { return recordEscaper.Replace(s) }

// quote wraps s in a DOT string literal. Backslashes pass through so record
// escapes reach Graphviz unchanged.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
