package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // dot, svg, pdf, png, json
	detailed bool     // show ids, types and order in diagrams
}

// renderCommand renders a graph diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph to DOT, SVG, PDF or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids, types and execution order")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	popts, err := c.options(input)
	if err != nil {
		return err
	}
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed

	spinner := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering "+strings.Join(opts.formats, ", ")+"...")
	spinner.Start()
	result, err := c.execute(cmd.Context(), popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	paths := outputPaths(input, opts.output, opts.formats)
	for _, format := range opts.formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
	}
	printSuccess(out, "Rendered %d node(s)", result.Stats.NodeCount)
	for _, format := range opts.formats {
		printFile(out, paths[format])
	}
	return nil
}

// outputPaths maps each format to its file. A single format with an
// explicit output writes there; otherwise output (or the input path) is a
// base whose extension is replaced per format.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = input
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
