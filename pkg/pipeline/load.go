package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slotgraph/pkg/cache"
	"github.com/matzehuels/slotgraph/pkg/catalog"
	"github.com/matzehuels/slotgraph/pkg/errors"
	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/observability"
	"github.com/matzehuels/slotgraph/pkg/registry"
)

// LoadCatalog builds a registry from a TOML catalog and returns it with
// the catalog's content hash. An empty path yields an empty registry.
func LoadCatalog(path string, logger *log.Logger) (*registry.Registry, string, error) {
	r := registry.New(registry.WithLogger(logger))
	if path == "" {
		return r, "", nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}
	c, err := catalog.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("catalog %s: %w", path, err)
	}
	if err := c.Register(r); err != nil {
		return nil, "", fmt.Errorf("catalog %s: %w", path, err)
	}
	return r, cache.Hash(data), nil
}

// Load reads a serialized graph, migrates it and configures a new graph
// whose nodes are created by types.
func Load(ctx context.Context, types *registry.Registry, path string, logger *log.Logger) (g *graph.Graph, report graph.MigrationReport, err error) {
	if logger == nil {
		logger = log.Default()
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	defer func() {
		count := 0
		if g != nil {
			count = g.NodeCount()
		}
		hooks.OnLoadComplete(ctx, path, count, time.Since(start), err)
	}()

	data, err := graph.ReadFile(path)
	if err != nil {
		return nil, report, err
	}
	data, report = graph.Migrate(data)
	if report.Migrated() > 0 {
		logger.Info("migrated legacy graph data",
			"from", report.FromVersion,
			"inputs", report.LegacyInputs,
			"outputs", report.NullOutputs)
	}

	g = graph.New(types, graph.WithLogger(logger))
	if err := g.Configure(data); err != nil {
		return nil, report, err
	}
	return g, report, nil
}

// GraphHash returns a content hash of g that ignores the instance id and
// node order fields, so loading the same file twice gives the same hash.
func GraphHash(g *graph.Graph) (string, error) {
	data := g.Serialize()
	data.ID = ""
	for i := range data.Nodes {
		data.Nodes[i].Order = 0
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(b), nil
}
