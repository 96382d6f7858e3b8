// Package render draws node graphs as Graphviz diagrams.
//
// # Overview
//
// Each node becomes a record with one port per slot: inputs on top, the
// title in the middle and outputs at the bottom. Each link becomes an edge
// from the origin output port to the target input port, so fan-in on an
// AllowMultiple input shows as several arrows meeting at one port.
//
//	dot := render.ToDOT(g, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert SVG to other formats using the
// external rsvg-convert tool (from librsvg).
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process through WebAssembly. No Graphviz installation is needed.
package render
