// Package cli implements the slotgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/buildinfo"
	"github.com/matzehuels/slotgraph/pkg/cache"
	"github.com/matzehuels/slotgraph/pkg/pipeline"
	"github.com/matzehuels/slotgraph/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "slotgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags.
	catalog  string
	noCache  bool
	redisURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Slotgraph inspects, orders and renders slot-based node graphs",
		Long:         `Slotgraph loads node graphs whose nodes connect through typed input and output slots, migrates legacy files, computes execution orders and renders diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.catalog, "catalog", "c", os.Getenv("SLOTGRAPH_CATALOG"), "node-type catalog (TOML)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the execution order cache")
	flags.StringVar(&c.redisURL, "redis", os.Getenv("SLOTGRAPH_REDIS"), "cache orders in Redis (redis://host:port/db) instead of on disk")

	root.AddCommand(c.typesCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if c.redisURL != "" {
		cfg, err := cache.ParseRedisURL(c.redisURL)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(ctx, cfg)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// loadTypes builds the node-type registry from --catalog.
func (c *CLI) loadTypes() (*registry.Registry, string, error) {
	if c.catalog == "" {
		c.Logger.Warn("no --catalog given, only empty graphs will load")
	}
	return pipeline.LoadCatalog(c.catalog, c.Logger)
}

// options returns pipeline options for a graph file with the catalog loaded.
func (c *CLI) options(graphPath string) (pipeline.Options, error) {
	types, hash, err := c.loadTypes()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		GraphPath:   graphPath,
		Types:       types,
		CatalogHash: hash,
		Logger:      c.Logger,
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/slotgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// execute runs the pipeline once with a fresh runner.
func (c *CLI) execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.Execute(ctx, opts)
}
