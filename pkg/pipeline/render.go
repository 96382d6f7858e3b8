package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/observability"
	"github.com/matzehuels/slotgraph/pkg/render"
)

// Render produces one artifact of g.
func Render(ctx context.Context, g *graph.Graph, format string, detailed bool) (data []byte, err error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, format, time.Since(start), err) }()

	if format == FormatJSON {
		return graph.Marshal(g)
	}

	dot := render.ToDOT(g, render.Options{Detailed: detailed})
	if format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		data, err = render.ToPDF(svg)
	case FormatPNG:
		data, err = render.ToPNG(svg, DefaultPNGScale)
	default:
		data = svg
	}
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", format, err)
	}
	return data, nil
}
