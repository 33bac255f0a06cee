package graph

import (
	"slices"

	"github.com/matzehuels/beltwright/pkg/errors"
)

// Graph is an arena of nodes and edges. Slots refer to edges and edges refer
// to slots by id only; every lookup goes through the graph.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	Header Header

	nodes     map[NodeID]*Node
	order     []NodeID
	edges     map[EdgeID]*Edge
	edgeOrder []EdgeID
	nextEdge  EdgeID
	maxID     NodeID
}

// New creates an empty graph.
func New(h Header) *Graph {
	return &Graph{
		Header: h,
		nodes:  make(map[NodeID]*Node),
		edges:  make(map[EdgeID]*Edge),
	}
}

// AddNode inserts a copy of n and returns the stored node. Slot edge
// references of n are cleared; use Connect to attach edges.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.ID <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "node id %d must be positive", n.ID)
	}
	if _, dup := g.nodes[n.ID]; dup {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %d", n.ID)
	}
	if !n.Kind.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "node %d: unknown kind %q", n.ID, n.Kind)
	}
	stored := n.clone()
	for i := range stored.Slots {
		if !stored.Slots[i].Dir.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "node %d slot %d: bad direction %q", n.ID, i, stored.Slots[i].Dir)
		}
		stored.Slots[i].Edge = 0
	}
	g.nodes[n.ID] = stored
	g.order = append(g.order, n.ID)
	g.maxID = max(g.maxID, n.ID)
	return stored, nil
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, s := range n.Slots {
		if s.Edge != 0 {
			g.Disconnect(s.Edge)
		}
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(x NodeID) bool { return x == id })
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// MaxID returns the highest node id ever added. It does not decrease when
// nodes are removed, so ids above it are always free.
func (g *Graph) MaxID() NodeID { return g.maxID }

// slot resolves ref to its slot.
func (g *Graph) slot(ref SlotRef) (*Slot, error) {
	n, ok := g.nodes[ref.Node]
	if !ok {
		return nil, errors.New(errors.ErrCodeDanglingReference, "node %d not found", ref.Node)
	}
	if ref.Slot < 0 || ref.Slot >= len(n.Slots) {
		return nil, errors.New(errors.ErrCodeDanglingReference, "node %d has no slot %d", ref.Node, ref.Slot)
	}
	return &n.Slots[ref.Slot], nil
}

// Slot returns a copy of the slot at ref.
func (g *Graph) Slot(ref SlotRef) (Slot, bool) {
	s, err := g.slot(ref)
	if err != nil {
		return Slot{}, false
	}
	return *s, true
}

// Connect adds an edge from the out slot src to the in slot dst. Both slots
// must be free.
func (g *Graph) Connect(src, dst SlotRef) (EdgeID, error) {
	s, err := g.slot(src)
	if err != nil {
		return 0, err
	}
	d, err := g.slot(dst)
	if err != nil {
		return 0, err
	}
	if s.Dir != DirOut {
		return 0, errors.New(errors.ErrCodeInvalidGraph, "source %d/%d is not an out slot", src.Node, src.Slot)
	}
	if d.Dir != DirIn {
		return 0, errors.New(errors.ErrCodeInvalidGraph, "target %d/%d is not an in slot", dst.Node, dst.Slot)
	}
	if s.Edge != 0 {
		return 0, errors.New(errors.ErrCodeInvalidGraph, "source %d/%d already connected", src.Node, src.Slot)
	}
	if d.Edge != 0 {
		return 0, errors.New(errors.ErrCodeInvalidGraph, "target %d/%d already connected", dst.Node, dst.Slot)
	}
	g.nextEdge++
	id := g.nextEdge
	g.edges[id] = &Edge{ID: id, Src: src, Dst: dst}
	g.edgeOrder = append(g.edgeOrder, id)
	s.Edge, d.Edge = id, id
	return id, nil
}

// Disconnect removes an edge and frees both of its slots.
func (g *Graph) Disconnect(id EdgeID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	for _, ref := range []SlotRef{e.Src, e.Dst} {
		if s, err := g.slot(ref); err == nil && s.Edge == id {
			s.Edge = 0
		}
	}
	delete(g.edges, id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(x EdgeID) bool { return x == id })
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = *g.edges[id]
	}
	return out
}

// SlotEdge returns the edge occupying ref, or 0.
func (g *Graph) SlotEdge(ref SlotRef) EdgeID {
	s, err := g.slot(ref)
	if err != nil {
		return 0
	}
	return s.Edge
}

// Peer returns the slot at the other end of the edge occupying ref.
func (g *Graph) Peer(ref SlotRef) (SlotRef, bool) {
	e, ok := g.edges[g.SlotEdge(ref)]
	if !ok {
		return SlotRef{}, false
	}
	if e.Src == ref {
		return e.Dst, true
	}
	return e.Src, true
}

// PackageHashes returns the sorted, de-duplicated hashes referenced by
// package nodes.
func (g *Graph) PackageHashes() []string {
	var out []string
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == KindPackage && n.PackageHash != "" {
			out = append(out, n.PackageHash)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Header:    g.Header,
		nodes:     make(map[NodeID]*Node, len(g.nodes)),
		order:     slices.Clone(g.order),
		edges:     make(map[EdgeID]*Edge, len(g.edges)),
		edgeOrder: slices.Clone(g.edgeOrder),
		nextEdge:  g.nextEdge,
		maxID:     g.maxID,
	}
	for id, n := range g.nodes {
		c.nodes[id] = n.clone()
	}
	for id, e := range g.edges {
		ec := *e
		c.edges[id] = &ec
	}
	return c
}

// Validate checks that every edge resolves to slots that list it back, that
// edges run from out to in, and that no slot names an unknown edge.
func (g *Graph) Validate() error {
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		s, err := g.slot(e.Src)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDanglingReference, err, "edge %d source", id)
		}
		d, err := g.slot(e.Dst)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDanglingReference, err, "edge %d target", id)
		}
		if s.Edge != id || d.Edge != id {
			return errors.New(errors.ErrCodeInvalidGraph, "edge %d is not recorded on its slots", id)
		}
		if s.Dir != DirOut || d.Dir != DirIn {
			return errors.New(errors.ErrCodeInvalidGraph, "edge %d does not run from out to in", id)
		}
	}
	for _, nid := range g.order {
		for i, s := range g.nodes[nid].Slots {
			if s.Edge == 0 {
				continue
			}
			e, ok := g.edges[s.Edge]
			if !ok {
				return errors.New(errors.ErrCodeDanglingReference, "node %d slot %d names unknown edge %d", nid, i, s.Edge)
			}
			ref := SlotRef{nid, i}
			if e.Src != ref && e.Dst != ref {
				return errors.New(errors.ErrCodeInvalidGraph, "node %d slot %d names edge %d which does not list it", nid, i, s.Edge)
			}
		}
	}
	return nil
}
