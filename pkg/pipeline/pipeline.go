// Package pipeline provides the load → order → run → render pipeline
// shared by every slotgraph command.
//
// # Stages
//
//  1. Load: decode a serialized graph, migrate legacy data and configure
//     it through a node-type registry
//  2. Order: compute the execution order, memoized in a [cache.Cache] by
//     a content hash of the graph
//  3. Run: execute one step of the graph
//  4. Render: produce DOT, SVG, PDF, PNG or JSON output
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
//	types, hash, err := pipeline.LoadCatalog("nodes.toml", logger)
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    GraphPath:   "graph.json",
//	    Types:       types,
//	    CatalogHash: hash,
//	    Formats:     []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/registry"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// DefaultPNGScale is the rasterization scale for PNG output.
const DefaultPNGScale = 2.0

// Options configures a pipeline run.
type Options struct {
	// GraphPath is the serialized graph to load.
	GraphPath string

	// Types instantiates nodes while loading. Required.
	Types *registry.Registry

	// CatalogHash identifies the catalog Types was built from. It is part
	// of the order cache key.
	CatalogHash string

	// Refresh bypasses cached orders. Fresh results are still written.
	Refresh bool

	// Run executes one step after ordering.
	Run bool

	// Formats lists the artifacts to render. Empty means none.
	Formats []string

	// Detailed adds ids, types and order to rendered diagrams.
	Detailed bool

	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Graph *graph.Graph

	// GraphHash is the content hash used for cache keys.
	GraphHash string

	// Migration reports legacy data upgraded while loading.
	Migration graph.MigrationReport

	// Order is the execution order.
	Order []*graph.Node

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	LoadTime   time.Duration
	OrderTime  time.Duration
	RunTime    time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	OrderHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks required fields and fills in defaults.
func (o *Options) Validate() error {
	if o.GraphPath == "" {
		return fmt.Errorf("graph path is required")
	}
	if o.Types == nil {
		return fmt.Errorf("node type registry is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}
