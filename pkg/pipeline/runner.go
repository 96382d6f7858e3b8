package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slotgraph/pkg/cache"
	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/observability"
)

// orderKeyType labels order entries in cache hooks.
const orderKeyType = "order"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different graphs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → order → run → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	start := time.Now()
	g, report, err := Load(ctx, opts.Types, opts.GraphPath, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Migration = report
	result.Stats.LoadTime = time.Since(start)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()
	r.Logger.Info("loaded graph",
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Order
	start = time.Now()
	order, hit, err := r.OrderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	result.Order = order
	result.CacheInfo.OrderHit = hit
	result.Stats.OrderTime = time.Since(start)
	result.GraphHash, _ = GraphHash(g)
	r.Logger.Debug("computed execution order", "cached", hit, "duration", result.Stats.OrderTime)

	// Stage 3: Run
	if opts.Run {
		start = time.Now()
		if err := g.RunStep(ctx); err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		result.Stats.RunTime = time.Since(start)
		r.Logger.Info("ran graph step", "duration", result.Stats.RunTime)
	}

	// Stage 4: Render
	start = time.Now()
	for _, format := range opts.Formats {
		data, err := Render(ctx, g, format, opts.Detailed)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	if len(opts.Formats) > 0 {
		result.Stats.RenderTime = time.Since(start)
		r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)
	}
	return result, nil
}

// OrderWithCacheInfo installs the execution order of g, reading it from the
// cache when possible, and reports whether it was a cache hit. Cache
// failures are logged and fall back to computing the order.
func (r *Runner) OrderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) ([]*graph.Node, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	hash, err := GraphHash(g)
	if err != nil {
		r.Logger.Warn("graph is not hashable, order will not be cached", "err", err)
		return g.UpdateExecutionOrder(), false, nil
	}
	key := r.Keyer.OrderKey(hash, cache.OrderKeyOpts{Catalog: opts.CatalogHash})
	hooks := observability.Cache()

	if !opts.Refresh {
		if order, ok := r.cachedOrder(ctx, g, key); ok {
			hooks.OnCacheHit(ctx, orderKeyType)
			return order, true, nil
		}
		hooks.OnCacheMiss(ctx, orderKeyType)
	}

	order := g.UpdateExecutionOrder()
	ids := make([]int, len(order))
	for i, n := range order {
		ids[i] = n.ID
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.OrderTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		hooks.OnCacheSet(ctx, orderKeyType, len(data))
	}
	return order, false, nil
}

// Order is a convenience wrapper that calls OrderWithCacheInfo and discards the cache hit info.
func (r *Runner) Order(ctx context.Context, g *graph.Graph, opts Options) ([]*graph.Node, error) {
	order, _, err := r.OrderWithCacheInfo(ctx, g, opts)
	return order, err
}

func (r *Runner) cachedOrder(ctx context.Context, g *graph.Graph, key string) ([]*graph.Node, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		r.Logger.Debug("discarding unreadable cached order", "key", key)
		return nil, false
	}
	order, err := g.SetExecutionOrder(ids)
	if err != nil {
		r.Logger.Debug("discarding stale cached order", "key", key, "err", err)
		return nil, false
	}
	return order, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
