package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slotgraph/pkg/cache"
	"github.com/matzehuels/slotgraph/pkg/errors"
	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/observability"
)

const (
	catalogPath = "testdata/catalog.toml"
	legacyPath  = "testdata/legacy.json"
)

func nodeIDs(nodes []*graph.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func testOptions(t *testing.T) Options {
	t.Helper()
	types, hash, err := LoadCatalog(catalogPath, nil)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return Options{GraphPath: legacyPath, Types: types, CatalogHash: hash}
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}), &buf
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	base := testOptions(t)
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"NoGraph", func(o *Options) { o.GraphPath = "" }},
		{"NoTypes", func(o *Options) { o.Types = nil }},
		{"BadFormat", func(o *Options) { o.Formats = []string{"gif"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
	if err := base.Validate(); err != nil || base.Logger == nil {
		t.Errorf("valid options: err=%v logger=%v", err, base.Logger)
	}
}

func TestLoadCatalog(t *testing.T) {
	types, hash, err := LoadCatalog("", nil)
	if err != nil || types.Len() != 0 || hash != "" {
		t.Errorf("empty path: len=%d hash=%q err=%v", types.Len(), hash, err)
	}

	types, hash, err = LoadCatalog(catalogPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(catalogPath)
	if types.Len() != 2 || hash != cache.Hash(raw) {
		t.Errorf("len=%d hash=%s", types.Len(), hash)
	}

	if _, _, err := LoadCatalog(filepath.Join(t.TempDir(), "none.toml"), nil); err == nil {
		t.Error("missing catalog should fail")
	}
	bad := filepath.Join(t.TempDir(), "bad.toml")
	_ = os.WriteFile(bad, []byte("[[type]]\nkey = \"a/b\"\nbehavior = \"warp\"\n"), 0o644)
	if _, _, err := LoadCatalog(bad, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown behavior: err = %v", err)
	}
}

func TestLoadMigratesLegacyData(t *testing.T) {
	opts := testOptions(t)
	logger, buf := quietLogger()

	g, report, err := Load(context.Background(), opts.Types, legacyPath, logger)
	if err != nil {
		t.Fatal(err)
	}
	if report.FromVersion != 0.4 || report.LegacyInputs != 2 || report.NullOutputs != 1 {
		t.Errorf("report = %+v", report)
	}
	if !strings.Contains(buf.String(), "migrated legacy graph data") {
		t.Errorf("log = %s", buf.String())
	}
	if g.NodeCount() != 3 || g.LinkCount() != 2 {
		t.Errorf("nodes=%d links=%d", g.NodeCount(), g.LinkCount())
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
	if prod := g.NodeByID(1); prod.Title != "Product" || len(prod.Inputs[1].Links) != 1 {
		t.Errorf("product = %+v", prod)
	}
}

func TestLoadMissingType(t *testing.T) {
	types, _, _ := LoadCatalog("", nil)
	_, _, err := Load(context.Background(), types, legacyPath, nil)
	if !errors.Is(err, errors.ErrCodeMissingType) {
		t.Errorf("err = %v, want MISSING_TYPE", err)
	}
}

func TestGraphHashIgnoresInstance(t *testing.T) {
	opts := testOptions(t)
	ctx := context.Background()
	g1, _, _ := Load(ctx, opts.Types, legacyPath, nil)
	g2, _, _ := Load(ctx, opts.Types, legacyPath, nil)
	g2.UpdateExecutionOrder()

	h1, err := GraphHash(g1)
	if err != nil {
		t.Fatal(err)
	}
	if h2, _ := GraphHash(g2); h1 != h2 {
		t.Error("same file should hash the same regardless of id and order")
	}

	g2.NodeByID(3).Properties["value"] = 4.0
	if h3, _ := GraphHash(g2); h1 == h3 {
		t.Error("edited graph should hash differently")
	}
}

func TestExecute(t *testing.T) {
	opts := testOptions(t)
	opts.Run = true
	opts.Formats = []string{FormatDOT, FormatJSON}
	logger, _ := quietLogger()

	result, err := NewRunner(nil, nil, logger).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := nodeIDs(result.Order); !slices.Equal(got, []int{2, 3, 1}) {
		t.Errorf("order = %v, want [2 3 1]", got)
	}
	if got := result.Graph.NodeByID(1).Outputs[0].Data(); got != 6.0 {
		t.Errorf("product = %v, want 6", got)
	}
	if result.Stats.NodeCount != 3 || result.Stats.LinkCount != 2 || result.GraphHash == "" {
		t.Errorf("stats = %+v hash=%q", result.Stats, result.GraphHash)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "n2:o0:s -> n1:i0:n") {
		t.Errorf("dot = %s", result.Artifacts[FormatDOT])
	}

	data, err := graph.Unmarshal(result.Artifacts[FormatJSON])
	if err != nil {
		t.Fatal(err)
	}
	if data.Version != graph.CurrentVersion || data.Nodes[0].Inputs[0].Link != nil {
		t.Error("json artifact should use the current format")
	}
}

func TestExecuteCachesOrder(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := quietLogger()
	runner := NewRunner(c, nil, logger)
	defer runner.Close()
	ctx := context.Background()
	opts := testOptions(t)

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.OrderHit || !second.CacheInfo.OrderHit {
		t.Errorf("hits = %v, %v; want false, true", first.CacheInfo.OrderHit, second.CacheInfo.OrderHit)
	}
	if !slices.Equal(nodeIDs(first.Order), nodeIDs(second.Order)) {
		t.Error("cached order differs from computed order")
	}
	if n := second.Graph.NodeByID(1); n.Order != 2 {
		t.Errorf("restored order field = %d, want 2", n.Order)
	}

	opts.Refresh = true
	refreshed, _ := runner.Execute(ctx, opts)
	if refreshed.CacheInfo.OrderHit {
		t.Error("Refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.CatalogHash = "other"
	if other, _ := runner.Execute(ctx, opts); other.CacheInfo.OrderHit {
		t.Error("a different catalog should not share cached orders")
	}
}

func TestOrderDiscardsStaleEntry(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	logger, buf := quietLogger()
	runner := NewRunner(c, nil, logger)
	ctx := context.Background()
	opts := testOptions(t)

	g, _, err := Load(ctx, opts.Types, legacyPath, logger)
	if err != nil {
		t.Fatal(err)
	}
	hash, _ := GraphHash(g)
	key := runner.Keyer.OrderKey(hash, cache.OrderKeyOpts{Catalog: opts.CatalogHash})
	if err := c.Set(ctx, key, []byte("[1,9,2]"), 0); err != nil {
		t.Fatal(err)
	}

	order, hit, err := runner.OrderWithCacheInfo(ctx, g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit || !slices.Equal(nodeIDs(order), []int{2, 3, 1}) {
		t.Errorf("hit=%v order=%v", hit, nodeIDs(order))
	}
	if !strings.Contains(buf.String(), "discarding stale cached order") {
		t.Errorf("log = %s", buf.String())
	}
	if data, _, _ := c.Get(ctx, key); string(data) != "[2,3,1]" {
		t.Errorf("cache should be rewritten, got %s", data)
	}
}

type cacheEvents struct {
	mu                sync.Mutex
	hits, misses, set int
}

func (e *cacheEvents) OnCacheHit(context.Context, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hits++
}

func (e *cacheEvents) OnCacheMiss(context.Context, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.misses++
}

func (e *cacheEvents) OnCacheSet(context.Context, string, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set++
}

func TestOrderCacheHooks(t *testing.T) {
	events := &cacheEvents{}
	observability.SetCacheHooks(events)
	t.Cleanup(observability.Reset)

	c, _ := cache.NewFileCache(t.TempDir())
	runner := NewRunner(c, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	opts := testOptions(t)
	for range 2 {
		if _, err := runner.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}
	if events.hits != 1 || events.misses != 1 || events.set != 1 {
		t.Errorf("events = %d hits, %d misses, %d sets", events.hits, events.misses, events.set)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	g := graph.New(nil)
	if _, err := Render(context.Background(), g, "gif", false); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := testOptions(t)
	logger, _ := quietLogger()
	if _, err := NewRunner(nil, nil, logger).Execute(ctx, opts); err == nil {
		t.Error("cancelled context should fail")
	}
}
