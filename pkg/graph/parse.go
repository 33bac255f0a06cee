package graph

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltwright/pkg/errors"
)

// ParseOptions controls how a document is loaded.
type ParseOptions struct {
	// StartID is the id after which new node ids are handed out, so that
	// several documents can be merged into one graph without collisions.
	StartID NodeID
	// OffsetX and OffsetY translate every top-level node.
	OffsetX, OffsetY float64
	// Logger receives a warning per skipped element. Nil disables logging.
	Logger *log.Logger
}

// Diagnostic describes one skipped element.
type Diagnostic struct {
	Scope   string // "graph" or "package <hash>"
	Element string // "node", "line" or "package"
	Index   int
	Reason  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %d: %s", d.Scope, d.Element, d.Index, d.Reason)
}

// ParseResult is a loaded document.
type ParseResult struct {
	Graph       *Graph
	Packages    map[string]*PackageModel
	MaxID       NodeID
	Counters    Counters
	Diagnostics []Diagnostic
}

// Parse builds a graph and its packages from doc. Nodes are renumbered from
// opts.StartID+1 in document order. Malformed nodes, lines and packages are
// skipped and reported as diagnostics; only a missing document is fatal.
func Parse(doc *Document, opts ParseOptions) (*ParseResult, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "nil document")
	}
	p := &parser{
		simplified: doc.Header.Simplified,
		hashList:   doc.PackageHashList,
		logger:     opts.Logger,
	}

	packages := make(map[string]*PackageModel, len(doc.Packages))
	for i, pd := range doc.Packages {
		pkg, ok := p.parsePackage(i, pd)
		if !ok {
			continue
		}
		if _, dup := packages[pkg.Hash]; dup {
			p.warn("graph", "package", i, "duplicate hash %s", pkg.Hash)
			continue
		}
		packages[pkg.Hash] = pkg
	}

	h := doc.Header
	h.Simplified = false
	g := New(h)
	p.parseData(g, doc.Data, "graph", opts.StartID, opts.OffsetX, opts.OffsetY)

	counters := doc.Header.Counters
	for _, n := range g.Nodes() {
		switch n.Kind {
		case KindSource:
			counters.Source = max(counters.Source, n.Count)
		case KindSink:
			counters.Sink = max(counters.Sink, n.Count)
		}
	}
	maxID := g.MaxID()
	if maxID < opts.StartID {
		maxID = opts.StartID
	}
	return &ParseResult{
		Graph:       g,
		Packages:    packages,
		MaxID:       maxID,
		Counters:    counters,
		Diagnostics: p.diags,
	}, nil
}

type parser struct {
	simplified bool
	hashList   []string
	logger     *log.Logger
	diags      []Diagnostic
}

func (p *parser) warn(scope, element string, index int, format string, args ...any) {
	d := Diagnostic{Scope: scope, Element: element, Index: index, Reason: fmt.Sprintf(format, args...)}
	p.diags = append(p.diags, d)
	if p.logger != nil {
		p.logger.Warn("skipped element", "scope", scope, "element", element, "index", index, "reason", d.Reason)
	}
}

// resolveIndex maps a compacted package index to its hash.
func (p *parser) resolveIndex(i int) (string, bool) {
	if i < 0 || i >= len(p.hashList) {
		return "", false
	}
	return p.hashList[i], true
}

func (p *parser) parsePackage(i int, pd PackageDoc) (*PackageModel, bool) {
	if pd.Hash == "" {
		p.warn("graph", "package", i, "missing hash")
		return nil, false
	}
	children := slices.Clone(pd.ChildHashes)
	if p.simplified {
		for _, ci := range pd.ChildIndexes {
			h, ok := p.resolveIndex(ci)
			if !ok {
				p.warn("graph", "package", i, "child index %d out of range", ci)
				continue
			}
			children = append(children, h)
		}
	}
	slices.Sort(children)
	children = slices.Compact(children)

	g := New(Header{Name: pd.Name})
	p.parseData(g, pd.Graph, "package "+pd.Hash, 0, 0, 0)
	return &PackageModel{
		Hash:        pd.Hash,
		Name:        pd.Name,
		ChildHashes: children,
		Graph:       g,
		Template:    DeriveTemplate(g),
	}, true
}

func (p *parser) parseData(g *Graph, data Data, scope string, start NodeID, dx, dy float64) {
	ids := make(map[int]NodeID, len(data.Nodes))
	next := start
	for i, nd := range data.Nodes {
		if nd == nil {
			p.warn(scope, "node", i, "null entry")
			continue
		}
		if nd.ID == nil {
			p.warn(scope, "node", i, "missing id")
			continue
		}
		if _, dup := ids[*nd.ID]; dup {
			p.warn(scope, "node", i, "duplicate id %d", *nd.ID)
			continue
		}
		n, err := p.node(nd)
		if err != nil {
			p.warn(scope, "node", i, "%v", err)
			continue
		}
		n.ID = next + 1
		n.X += dx
		n.Y += dy
		if _, err := g.AddNode(n); err != nil {
			p.warn(scope, "node", i, "%v", err)
			continue
		}
		next++
		ids[*nd.ID] = n.ID
	}

	for i, ld := range data.Lines {
		if ld == nil {
			p.warn(scope, "line", i, "null entry")
			continue
		}
		if ld.From == nil || ld.To == nil {
			p.warn(scope, "line", i, "missing endpoint")
			continue
		}
		src, ok := ids[*ld.From]
		if !ok {
			p.warn(scope, "line", i, "unknown source node %d", *ld.From)
			continue
		}
		dst, ok := ids[*ld.To]
		if !ok {
			p.warn(scope, "line", i, "unknown target node %d", *ld.To)
			continue
		}
		if _, err := g.Connect(SlotRef{src, ld.FromSlot}, SlotRef{dst, ld.ToSlot}); err != nil {
			p.warn(scope, "line", i, "%v", err)
		}
	}
}

func (p *parser) node(nd *NodeDoc) (Node, error) {
	n := Node{
		Kind:   nd.Type,
		X:      nd.X,
		Y:      nd.Y,
		W:      nd.W,
		H:      nd.H,
		Text:   nd.Text,
		ItemID: nd.ItemID,
		Count:  nd.Count,
		Flow:   nd.Flow,
	}
	if !n.Kind.Valid() {
		return Node{}, fmt.Errorf("unknown type %q", nd.Type)
	}
	for _, sd := range nd.Slots {
		n.Slots = append(n.Slots, Slot{
			Dir:        sd.Dir,
			OffsetX:    sd.X,
			OffsetY:    sd.Y,
			Fixed:      sd.Fixed,
			Priority:   sd.Priority,
			FilterItem: sd.Filter,
			Tier:       sd.Tier,
			Port:       NodeID(sd.Port),
		})
	}
	if len(n.Slots) == 0 {
		n.Slots = defaultSlots(n.Kind)
	}
	if err := checkSlotShape(n); err != nil {
		return Node{}, err
	}
	if n.Kind != KindPackage {
		return n, nil
	}
	n.PackageHash = nd.Package
	if p.simplified && nd.PackageIndex != nil {
		h, ok := p.resolveIndex(*nd.PackageIndex)
		if !ok {
			return Node{}, fmt.Errorf("package index %d out of range", *nd.PackageIndex)
		}
		n.PackageHash = h
	}
	if n.PackageHash == "" {
		return Node{}, fmt.Errorf("package reference without hash")
	}
	return n, nil
}

// checkSlotShape rejects slot layouts that do not match the fixed shape of
// n's kind. Assembly addresses these slots by position.
func checkSlotShape(n Node) error {
	var want []Direction
	switch n.Kind {
	case KindMonitor, KindSource, KindSink:
		want = []Direction{DirIn, DirOut}
	case KindVoid:
		want = []Direction{DirIn}
	case KindRouter:
		if len(n.Slots) != 4 {
			return fmt.Errorf("router has %d slots, want 4", len(n.Slots))
		}
		return nil
	default:
		return nil
	}
	got := make([]Direction, len(n.Slots))
	for i, s := range n.Slots {
		got[i] = s.Dir
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("%s slots %v, want %v", n.Kind, got, want)
	}
	return nil
}

// defaultSlots fills in the fixed slot layout of kinds that have one.
func defaultSlots(k Kind) []Slot {
	switch k {
	case KindMonitor, KindSource, KindSink:
		return twoSlot(0, k).Slots
	case KindVoid:
		return NewVoid(0).Slots
	}
	return nil
}
