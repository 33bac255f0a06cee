package graph

import (
	"math"
	"slices"
)

// SerializeOptions controls how a node set is written.
type SerializeOptions struct {
	// PruneUnused keeps only packages reachable from the serialized package
	// nodes, directly or through nesting.
	PruneUnused bool
	// Simplify replaces package hashes with indices into PackageHashList.
	Simplify bool
}

// Serialize writes nodes, the edges among them, and packages as a document.
// Node ids are renumbered densely from 1 in the given order. Edges with an
// endpoint outside nodes are dropped. The bounding box and signal counters of
// header are recomputed.
func Serialize(nodes []*Node, edges []Edge, header Header, packages map[string]*PackageModel, opts SerializeOptions) *Document {
	hashes := selectPackages(nodes, packages, opts.PruneUnused)

	var index map[string]int
	if opts.Simplify {
		index = make(map[string]int, len(hashes))
		for i, h := range hashes {
			index[h] = i
		}
	}

	header.BoundingBox = boundingBox(nodes)
	header.Counters = Counters{}
	for _, n := range nodes {
		switch n.Kind {
		case KindSource:
			header.Counters.Source = max(header.Counters.Source, n.Count)
		case KindSink:
			header.Counters.Sink = max(header.Counters.Sink, n.Count)
		}
	}
	header.Simplified = opts.Simplify

	doc := &Document{
		Header: header,
		Data:   encodeData(nodes, edges, index),
	}
	for _, h := range hashes {
		p := packages[h]
		pd := PackageDoc{Hash: p.Hash, Name: p.Name}
		for _, c := range p.ChildHashes {
			if i, ok := index[c]; ok {
				pd.ChildIndexes = append(pd.ChildIndexes, i)
			} else {
				pd.ChildHashes = append(pd.ChildHashes, c)
			}
		}
		if p.Graph != nil {
			pd.Graph = encodeData(p.Graph.Nodes(), p.Graph.Edges(), index)
		}
		doc.Packages = append(doc.Packages, pd)
	}
	if opts.Simplify {
		doc.PackageHashList = hashes
	}
	return doc
}

// Document serializes the whole graph.
func (g *Graph) Document(packages map[string]*PackageModel, opts SerializeOptions) *Document {
	return Serialize(g.Nodes(), g.Edges(), g.Header, packages, opts)
}

// selectPackages returns the sorted hashes to write.
func selectPackages(nodes []*Node, packages map[string]*PackageModel, prune bool) []string {
	var out []string
	if !prune {
		for h := range packages {
			out = append(out, h)
		}
		slices.Sort(out)
		return out
	}

	seen := make(map[string]bool)
	var stack []string
	for _, n := range nodes {
		if n.Kind == KindPackage {
			stack = append(stack, n.PackageHash)
		}
	}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p, ok := packages[h]
		if seen[h] || !ok {
			continue
		}
		seen[h] = true
		out = append(out, h)
		stack = append(stack, p.ChildHashes...)
		if p.Graph != nil {
			stack = append(stack, p.Graph.PackageHashes()...)
		}
	}
	slices.Sort(out)
	return out
}

func encodeData(nodes []*Node, edges []Edge, index map[string]int) Data {
	ids := make(map[NodeID]int, len(nodes))
	for i, n := range nodes {
		ids[n.ID] = i + 1
	}

	data := Data{Nodes: make([]*NodeDoc, 0, len(nodes)), Lines: make([]*LineDoc, 0, len(edges))}
	for i, n := range nodes {
		id := i + 1
		nd := &NodeDoc{
			ID:     &id,
			Type:   n.Kind,
			X:      n.X,
			Y:      n.Y,
			W:      n.W,
			H:      n.H,
			Text:   n.Text,
			ItemID: n.ItemID,
			Count:  n.Count,
			Flow:   n.Flow,
		}
		if n.Kind == KindPackage {
			if pi, ok := index[n.PackageHash]; ok {
				nd.PackageIndex = &pi
			} else {
				nd.Package = n.PackageHash
			}
		}
		for _, s := range n.Slots {
			nd.Slots = append(nd.Slots, SlotDoc{
				Dir:      s.Dir,
				X:        s.OffsetX,
				Y:        s.OffsetY,
				Fixed:    s.Fixed,
				Priority: s.Priority,
				Filter:   s.FilterItem,
				Tier:     s.Tier,
				Port:     int(s.Port),
			})
		}
		data.Nodes = append(data.Nodes, nd)
	}

	for _, e := range edges {
		from, ok := ids[e.Src.Node]
		if !ok {
			continue
		}
		to, ok := ids[e.Dst.Node]
		if !ok {
			continue
		}
		data.Lines = append(data.Lines, &LineDoc{From: &from, FromSlot: e.Src.Slot, To: &to, ToSlot: e.Dst.Slot})
	}
	return data
}

func boundingBox(nodes []*Node) BoundingBox {
	if len(nodes) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range nodes {
		b.MinX = min(b.MinX, n.X)
		b.MinY = min(b.MinY, n.Y)
		b.MaxX = max(b.MaxX, n.X+n.W)
		b.MaxY = max(b.MaxY, n.Y+n.H)
	}
	b.W = b.MaxX - b.MinX
	b.H = b.MaxY - b.MinY
	return b
}
