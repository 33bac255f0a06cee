package registry

import (
	"maps"
	"slices"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
)

// Registry maps content addresses to packages.
//
// Registry is not safe for concurrent use. Migration and assembly must not
// run against the same registry at the same time.
type Registry struct {
	packages map[string]*graph.PackageModel
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{packages: make(map[string]*graph.PackageModel)}
}

// FromMap wraps an existing package map, such as [graph.ParseResult.Packages].
func FromMap(m map[string]*graph.PackageModel) *Registry {
	r := New()
	for h, p := range m {
		r.packages[h] = p
	}
	return r
}

// Get returns the package stored under hash.
func (r *Registry) Get(hash string) (*graph.PackageModel, bool) {
	p, ok := r.packages[hash]
	return p, ok
}

// Put stores p under its hash, replacing any previous entry.
func (r *Registry) Put(p *graph.PackageModel) { r.packages[p.Hash] = p }

// Len returns the number of packages.
func (r *Registry) Len() int { return len(r.packages) }

// Hashes returns every stored address in sorted order.
func (r *Registry) Hashes() []string {
	return slices.Sorted(maps.Keys(r.packages))
}

// Map returns a shallow copy of the hash to package map.
func (r *Registry) Map() map[string]*graph.PackageModel {
	return maps.Clone(r.packages)
}

// Snapshot returns a deep copy of r.
func (r *Registry) Snapshot() *Registry {
	s := New()
	for h, p := range r.packages {
		s.packages[h] = p.Clone()
	}
	return s
}

// Descendants returns the sorted addresses of every package nested in g at
// any depth. Packages missing from r contribute only their own address.
func (r *Registry) Descendants(g *graph.Graph) []string {
	seen := make(map[string]bool)
	stack := g.PackageHashes()
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[h] {
			continue
		}
		seen[h] = true
		if p, ok := r.packages[h]; ok && p.Graph != nil {
			stack = append(stack, p.Graph.PackageHashes()...)
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Bundle packages the selected nodes of g and the edges among them. Edges
// crossing the selection boundary are not carried over; a selection exposes
// ports through its own source and sink nodes. If an identical package is
// already stored, it is returned instead of a new one.
func (r *Registry) Bundle(g *graph.Graph, sel []graph.NodeID, name string) (*graph.PackageModel, error) {
	want := make(map[graph.NodeID]bool, len(sel))
	for _, id := range sel {
		if _, ok := g.Node(id); !ok {
			return nil, errors.New(errors.ErrCodeDanglingReference, "bundle: node %d not in graph", id)
		}
		want[id] = true
	}
	if len(want) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bundle: empty selection")
	}

	sub := graph.New(graph.Header{Name: name})
	ids := make(map[graph.NodeID]graph.NodeID, len(want))
	for _, n := range g.Nodes() {
		if !want[n.ID] {
			continue
		}
		c := *n
		c.ID = graph.NodeID(len(ids) + 1)
		if _, err := sub.AddNode(c); err != nil {
			return nil, err
		}
		ids[n.ID] = c.ID
	}
	for _, e := range g.Edges() {
		src, okSrc := ids[e.Src.Node]
		dst, okDst := ids[e.Dst.Node]
		if !okSrc || !okDst {
			continue
		}
		if _, err := sub.Connect(graph.SlotRef{Node: src, Slot: e.Src.Slot}, graph.SlotRef{Node: dst, Slot: e.Dst.Slot}); err != nil {
			return nil, err
		}
	}

	hash := Hash(sub)
	if existing, ok := r.packages[hash]; ok {
		return existing, nil
	}
	for _, h := range sub.PackageHashes() {
		if _, ok := r.packages[h]; !ok {
			return nil, errors.New(errors.ErrCodePackageNotFound, "bundle: nested package %s not in registry", h)
		}
	}
	p := &graph.PackageModel{
		Hash:        hash,
		Name:        name,
		ChildHashes: r.Descendants(sub),
		Graph:       sub,
		Template:    graph.DeriveTemplate(sub),
	}
	r.packages[hash] = p
	return p, nil
}

// Delete removes hash and every package nesting it at any depth, and removes
// every reference node to a deleted package from the given graphs. It returns
// the removed addresses in sorted order.
func (r *Registry) Delete(hash string, graphs ...*graph.Graph) []string {
	if _, ok := r.packages[hash]; !ok {
		return nil
	}
	removed := map[string]bool{hash: true}
	for changed := true; changed; {
		changed = false
		for h, p := range r.packages {
			if removed[h] {
				continue
			}
			if nestsAny(p, removed) {
				removed[h] = true
				changed = true
			}
		}
	}
	for h := range removed {
		delete(r.packages, h)
	}
	for _, g := range graphs {
		for _, n := range g.Nodes() {
			if n.Kind == graph.KindPackage && removed[n.PackageHash] {
				g.RemoveNode(n.ID)
			}
		}
	}
	return slices.Sorted(maps.Keys(removed))
}

func nestsAny(p *graph.PackageModel, set map[string]bool) bool {
	for _, c := range p.ChildHashes {
		if set[c] {
			return true
		}
	}
	if p.Graph == nil {
		return false
	}
	for _, c := range p.Graph.PackageHashes() {
		if set[c] {
			return true
		}
	}
	return false
}

// Prune removes every package not reachable from the given graphs and
// returns the removed addresses in sorted order.
func (r *Registry) Prune(roots ...*graph.Graph) []string {
	keep := make(map[string]bool)
	for _, g := range roots {
		for _, h := range r.Descendants(g) {
			keep[h] = true
		}
	}
	var removed []string
	for _, h := range r.Hashes() {
		if !keep[h] {
			delete(r.packages, h)
			removed = append(removed, h)
		}
	}
	return removed
}
