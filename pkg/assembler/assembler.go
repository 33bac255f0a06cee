package assembler

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/graph"
)

// Registry resolves package hashes.
type Registry interface {
	Get(hash string) (*graph.PackageModel, bool)
}

// Result is the output of one assembly.
type Result struct {
	Buildings []blueprint.Building

	Routers  int
	Monitors int
	Sources  int
	Sinks    int
	Sorters  int

	// DroppedNodes counts unconnected nodes left out of the output.
	DroppedNodes int
	// DroppedEdges counts edges skipped because an endpoint had no belt.
	DroppedEdges int
}

// Assembler compiles graphs with a fixed configuration and registry.
type Assembler struct {
	cfg    config.Config
	reg    Registry
	logger *log.Logger
}

// New returns an assembler. A nil logger discards output.
func New(cfg config.Config, reg Registry, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Assembler{cfg: cfg, reg: reg, logger: logger}
}

// Assemble compiles g into buildings. g is not modified.
func (a *Assembler) Assemble(g *graph.Graph) (*Result, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	work := g.Clone()
	if err := a.expand(work); err != nil {
		return nil, err
	}

	b := newBuild(a, work)
	b.collate()
	if err := b.place(); err != nil {
		return nil, err
	}
	if err := b.route(); err != nil {
		return nil, err
	}
	if err := b.placeSorters(); err != nil {
		return nil, err
	}
	b.res.Buildings = b.reindex()

	a.logger.Debug("assembled",
		"buildings", len(b.res.Buildings),
		"routers", b.res.Routers,
		"monitors", b.res.Monitors,
		"sources", b.res.Sources,
		"sinks", b.res.Sinks,
		"sorters", b.res.Sorters,
		"dropped_nodes", b.res.DroppedNodes,
		"dropped_edges", b.res.DroppedEdges)
	return b.res, nil
}
