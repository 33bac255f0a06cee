package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/cache"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/registry"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", true},
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

// lineGraph is a source feeding a sink through a monitor.
func lineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.Header{Name: "line"})
	for _, n := range []graph.Node{
		graph.NewSource(1, 1001, 1),
		graph.NewMonitor(2, 30),
		graph.NewSink(3, 1001, 1),
	} {
		if _, err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d) error: %v", n.ID, err)
		}
	}
	out := func(id graph.NodeID) graph.SlotRef { return graph.SlotRef{Node: id, Slot: graph.SlotOut} }
	in := func(id graph.NodeID) graph.SlotRef { return graph.SlotRef{Node: id, Slot: graph.SlotIn} }
	for _, e := range [][2]graph.SlotRef{{out(1), in(2)}, {out(2), in(3)}} {
		if _, err := g.Connect(e[0], e[1]); err != nil {
			t.Fatalf("Connect() error: %v", err)
		}
	}
	return g
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExportCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := lineGraph(t)
	opts := Options{Config: config.Default(), ShortDesc: "line"}

	first, err := r.Export(ctx, g, registry.New(), opts)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if first.CacheHit {
		t.Error("first export should miss the cache")
	}
	if first.Assembly == nil || first.Assembly.Monitors != 1 {
		t.Errorf("Assembly = %+v, want one monitor", first.Assembly)
	}
	if first.GraphHash != registry.Hash(g) {
		t.Errorf("GraphHash = %q, want %q", first.GraphHash, registry.Hash(g))
	}

	second, err := r.Export(ctx, g, registry.New(), opts)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second export should hit the cache")
	}
	if second.Text != first.Text {
		t.Error("cached text differs from the first export")
	}
	if len(second.Blueprint.Buildings) != len(first.Blueprint.Buildings) {
		t.Errorf("cached buildings = %d, want %d", len(second.Blueprint.Buildings), len(first.Blueprint.Buildings))
	}

	opts.Refresh = true
	third, err := r.Export(ctx, g, registry.New(), opts)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExportCacheTracksNodeDetails(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := lineGraph(t)
	opts := Options{Config: config.Default()}

	if _, err := r.Export(ctx, g, registry.New(), opts); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	src, _ := g.Node(1)
	src.Count = 7
	hash := registry.Hash(g)

	res, err := r.Export(ctx, g, registry.New(), opts)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if res.GraphHash != hash {
		t.Errorf("GraphHash = %q, want %q", res.GraphHash, hash)
	}
	if res.CacheHit {
		t.Error("changing a source count should miss the cache")
	}

	mon, _ := g.Node(2)
	mon.Flow = 45
	if res, _ := r.Export(ctx, g, registry.New(), opts); res == nil || res.CacheHit {
		t.Error("changing a monitor flow should miss the cache")
	}
}

func TestExportKeyDependsOnConfig(t *testing.T) {
	a := Options{}
	b := Options{}
	ka := a.ExportKeyOpts(config.Default())
	kb := b.ExportKeyOpts(config.Default().WithGeneration(config.GenerationSplice))
	if ka.ConfigDigest == kb.ConfigDigest {
		t.Error("generation mode should change the config digest")
	}

	cfg := config.Default()
	cfg.Cache.Dir = "/elsewhere"
	if got := a.ExportKeyOpts(cfg); got.ConfigDigest != ka.ConfigDigest {
		t.Error("cache settings should not change the config digest")
	}
}

func TestExportInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Generation = "sideways"
	if _, err := newTestRunner(t).Export(context.Background(), lineGraph(t), registry.New(), Options{Config: cfg}); err == nil {
		t.Error("Export() should reject an invalid config")
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	res, err := r.Export(ctx, lineGraph(t), registry.New(), Options{Config: config.Default(), Desc: "imported"})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	bp, err := r.Import(ctx, res.Text)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if bp.Header.Desc != "imported" {
		t.Errorf("Desc = %q, want %q", bp.Header.Desc, "imported")
	}
	if bp.Header.GameVersion != blueprint.DefaultGameVersion {
		t.Errorf("GameVersion = %q, want %q", bp.Header.GameVersion, blueprint.DefaultGameVersion)
	}

	last := "0"
	if strings.HasSuffix(res.Text, "0") {
		last = "1"
	}
	if _, err := r.Import(ctx, res.Text[:len(res.Text)-1]+last); err == nil {
		t.Error("Import() should reject a corrupted digest")
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	g := lineGraph(t)
	path := filepath.Join(t.TempDir(), "line.json")
	if err := Save(path, g, registry.New(), graph.SerializeOptions{}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadFile(ctx, path, nil)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if loaded.Graph.NodeCount() != 3 || loaded.Graph.EdgeCount() != 2 {
		t.Errorf("loaded %d nodes, %d edges; want 3, 2", loaded.Graph.NodeCount(), loaded.Graph.EdgeCount())
	}
	if len(loaded.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", loaded.Diagnostics)
	}
	if registry.Hash(loaded.Graph) != registry.Hash(g) {
		t.Error("hash changed across save and load")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(context.Background(), strings.NewReader("{not json"), "stdin", nil); err == nil {
		t.Error("Load() should fail on malformed JSON")
	}
}

func TestMergeRegistry(t *testing.T) {
	inner := lineGraph(t)
	src := registry.New()
	p, err := src.Bundle(inner, []graph.NodeID{2}, "monitor")
	if err != nil {
		t.Fatalf("Bundle() error: %v", err)
	}

	dst := registry.New()
	if n := MergeRegistry(dst, src); n != src.Len() {
		t.Errorf("MergeRegistry() = %d, want %d", n, src.Len())
	}
	if _, ok := dst.Get(p.Hash); !ok {
		t.Error("merged registry is missing the bundled package")
	}
	if n := MergeRegistry(dst, src); n != 0 {
		t.Errorf("second MergeRegistry() = %d, want 0", n)
	}
}

func TestRenderDOT(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := lineGraph(t)

	out, hit, err := r.Render(ctx, g, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	if !bytes.HasPrefix(out, []byte("digraph")) {
		t.Errorf("Render() = %q, want a digraph", out)
	}

	again, hit, err := r.Render(ctx, g, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !hit || !bytes.Equal(again, out) {
		t.Error("second render should come from the cache")
	}

	snk, _ := g.Node(3)
	snk.Count = 9
	fresh, hit, err := r.Render(ctx, g, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if hit || bytes.Equal(fresh, out) {
		t.Error("changing a sink count should re-render")
	}

	if _, _, err := r.Render(ctx, g, RenderOptions{Format: "png"}); err == nil {
		t.Error("Render() should reject an unknown format")
	}
}
