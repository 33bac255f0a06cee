package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltwright/pkg/assembler"
	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/cache"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/observability"
	"github.com/matzehuels/beltwright/pkg/registry"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to every cache write. Zero never expires.
	TTL time.Duration
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Export assembles g and encodes it as blueprint text. Package references
// are resolved through reg.
func (r *Runner) Export(ctx context.Context, g *graph.Graph, reg *registry.Registry, opts Options) (*Result, error) {
	opts.SetDefaults()
	cfg := opts.Config
	if opts.UseGraphLayout && len(g.Header.Layout) > 0 {
		cfg = cfg.WithGraphLayout(g.Header.Layout)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		GraphHash: registry.Hash(g),
		Stats:     Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
	}
	key := r.Keyer.ExportKey(documentDigest(g, reg.Map()), opts.ExportKeyOpts(cfg))

	if !opts.Refresh {
		if data, hit := r.cached(ctx, key, cache.KeyTypeExport); hit {
			bp, err := blueprint.FromText(string(data))
			if err == nil {
				res.Text, res.Blueprint, res.CacheHit = string(data), bp, true
				r.Logger.Debug("export cache hit", "graph", res.GraphHash)
				return res, nil
			}
			r.Logger.Warn("discarding unreadable cache entry", "err", err)
		}
	}

	// Stage 1: Assemble
	start := time.Now()
	observability.Pipeline().OnAssembleStart(ctx, string(cfg.Generation), g.NodeCount())
	asm, err := assembler.New(cfg, reg, opts.Logger).Assemble(g)
	res.Stats.AssembleTime = time.Since(start)
	buildings := 0
	if asm != nil {
		buildings = len(asm.Buildings)
	}
	observability.Pipeline().OnAssembleComplete(ctx, string(cfg.Generation), buildings, res.Stats.AssembleTime, err)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	res.Assembly = asm

	r.Logger.Info("assembled blueprint",
		"buildings", len(asm.Buildings),
		"sorters", asm.Sorters,
		"dropped", asm.DroppedNodes,
		"duration", res.Stats.AssembleTime)

	// Stage 2: Encode
	start = time.Now()
	bp := blueprint.New(asm.Buildings, opts.header())
	text, err := blueprint.ToText(bp)
	res.Stats.EncodeTime = time.Since(start)
	observability.Pipeline().OnEncodeComplete(ctx, len(text), res.Stats.EncodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	res.Text, res.Blueprint = text, bp

	r.store(ctx, key, cache.KeyTypeExport, []byte(text))
	return res, nil
}

// Import decodes and verifies blueprint text.
func (r *Runner) Import(ctx context.Context, text string) (*blueprint.Blueprint, error) {
	start := time.Now()
	bp, err := blueprint.FromText(text)
	n := 0
	if bp != nil {
		n = len(bp.Buildings)
	}
	observability.Pipeline().OnDecodeComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("decoded blueprint", "buildings", n, "areas", len(bp.Areas))
	return bp, nil
}

// Migrate rehashes stale packages of reg and rewrites g's references. It
// returns the migrated registry and graph; the inputs are left unchanged.
func (r *Runner) Migrate(reg *registry.Registry, g *graph.Graph) (*registry.MigrationResult, error) {
	res, err := registry.Migrate(reg, g, r.Logger)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("migrated packages", "rewritten", len(res.Rewrites))
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cached reads key, retrying transient backend failures. Backend errors
// count as misses.
func (r *Runner) cached(ctx context.Context, key, keyType string) ([]byte, bool) {
	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

// store writes key, logging failures instead of returning them.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
