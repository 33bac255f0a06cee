package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/beltwright/pkg/cache"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/render/nodelink"
)

// RenderOptions configures a circuit rendering.
type RenderOptions struct {
	Format   string
	Detailed bool
	Refresh  bool
}

// Render draws g in the requested format and reports whether the result
// came from the cache.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts RenderOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	key := r.Keyer.RenderKey(documentDigest(g, nil), cache.RenderKeyOpts{Format: opts.Format, Detailed: opts.Detailed})
	if !opts.Refresh {
		if data, hit := r.cached(ctx, key, cache.KeyTypeRender); hit {
			return data, true, nil
		}
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
	out := []byte(dot)
	if opts.Format == FormatSVG {
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, false, fmt.Errorf("render svg: %w", err)
		}
		out = svg
	}

	r.store(ctx, key, cache.KeyTypeRender, out)
	return out, false, nil
}
