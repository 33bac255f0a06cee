package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/observability"
	"github.com/matzehuels/beltwright/pkg/registry"
)

// Loaded is a parsed circuit document.
type Loaded struct {
	Graph       *graph.Graph
	Registry    *registry.Registry
	Diagnostics []graph.Diagnostic
}

// Load decodes and parses a circuit document. source names the input in
// hooks and logs. Malformed elements are skipped and reported in
// Diagnostics.
func Load(ctx context.Context, r io.Reader, source string, logger *log.Logger) (loaded *Loaded, err error) {
	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, source)
	defer func() {
		nodes := 0
		if loaded != nil {
			nodes = loaded.Graph.NodeCount()
		}
		observability.Pipeline().OnParseComplete(ctx, source, nodes, time.Since(start), err)
	}()

	doc, err := graph.Decode(r)
	if err != nil {
		return nil, err
	}
	return parse(doc, source, logger)
}

// LoadFile reads and parses a circuit document from disk.
func LoadFile(ctx context.Context, path string, logger *log.Logger) (loaded *Loaded, err error) {
	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, path)
	defer func() {
		nodes := 0
		if loaded != nil {
			nodes = loaded.Graph.NodeCount()
		}
		observability.Pipeline().OnParseComplete(ctx, path, nodes, time.Since(start), err)
	}()

	doc, err := graph.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(doc, path, logger)
}

func parse(doc *graph.Document, source string, logger *log.Logger) (*Loaded, error) {
	res, err := graph.Parse(doc, graph.ParseOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("parsed circuit",
			"source", source,
			"nodes", res.Graph.NodeCount(),
			"edges", res.Graph.EdgeCount(),
			"packages", len(res.Packages),
			"skipped", len(res.Diagnostics))
	}
	return &Loaded{
		Graph:       res.Graph,
		Registry:    registry.FromMap(res.Packages),
		Diagnostics: res.Diagnostics,
	}, nil
}

// Save writes g and the packages of reg as a circuit document.
func Save(path string, g *graph.Graph, reg *registry.Registry, opts graph.SerializeOptions) error {
	return graph.WriteFile(path, g.Document(reg.Map(), opts))
}

// MergeRegistry adds to into every package of from that into does not
// already hold. It returns how many were added.
func MergeRegistry(into, from *registry.Registry) int {
	added := 0
	for _, h := range from.Hashes() {
		if _, ok := into.Get(h); ok {
			continue
		}
		p, _ := from.Get(h)
		into.Put(p)
		added++
	}
	return added
}
