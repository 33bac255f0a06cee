package assembler

import (
	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/items"
	"github.com/matzehuels/beltwright/pkg/params"
)

// route turns every edge into a physical link.
func (b *build) route() error {
	uf := newUnionFind()
	for _, e := range b.g.Edges() {
		if b.touchesVoid(e) {
			b.a.logger.Debug("edge ends in void", "edge", e.ID)
			continue
		}
		src, okSrc := b.port[e.Src]
		dst, okDst := b.port[e.Dst]
		if !okSrc || !okDst {
			if b.cfg.Generation == config.GenerationSplice {
				b.res.DroppedEdges++
				b.a.logger.Debug("dropped unresolvable edge", "edge", e.ID, "src", e.Src.Node, "dst", e.Dst.Node)
				continue
			}
			return errors.New(errors.ErrCodeDanglingReference, "edge %d: endpoint %d.%d -> %d.%d has no belt",
				e.ID, e.Src.Node, e.Src.Slot, e.Dst.Node, e.Dst.Slot)
		}

		switch b.cfg.Generation {
		case config.GenerationSorter:
			b.sorter(src, dst)
		case config.GenerationSplice:
			b.splice(uf, src, dst)
		case config.GenerationAirGap:
			b.airGap(uf, e, src, dst)
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "unknown generation mode %q", b.cfg.Generation)
		}
	}

	// A spliced run is as fast as its slowest belt.
	slowest := make(map[int]int)
	for id := range uf.parent {
		root := uf.find(id)
		if t, ok := slowest[root]; !ok || b.objs[id].tier < t {
			slowest[root] = b.objs[id].tier
		}
	}
	for id := range uf.parent {
		b.objs[id].tier = slowest[uf.find(id)]
	}

	b.res.Sorters = len(b.sorters)
	return nil
}

func (b *build) touchesVoid(e graph.Edge) bool {
	for _, ref := range []graph.SlotRef{e.Src, e.Dst} {
		if n, ok := b.g.Node(ref.Node); ok && n.Kind == graph.KindVoid {
			return true
		}
	}
	return false
}

func (b *build) sorter(src, dst int) {
	itemID, model := items.Sorter(b.cfg.SorterTier)
	id := b.add(&object{b: blueprint.Building{
		ItemID:     int16(itemID),
		ModelIndex: int16(model),
		Params:     params.SorterLength(1),
	}})
	b.feed(id, src, beltLinkSlot)
	b.link(id, dst, beltLinkSlot)
	b.sorters = append(b.sorters, id)
}

func (b *build) splice(uf *unionFind, src, dst int) {
	b.link(src, dst, beltLinkSlot)
	uf.union(src, dst)
}

// airGap attaches the peer's belt straight to a router and deletes the
// router's own connector belt on that port. Edges without a router are
// spliced.
func (b *build) airGap(uf *unionFind, e graph.Edge, src, dst int) {
	srcRouter := b.isRouter(e.Src.Node)
	dstRouter := b.isRouter(e.Dst.Node)
	switch {
	case dstRouter:
		// Covers router to router as well: the source side keeps its belt.
		b.link(src, b.owner[e.Dst.Node], e.Dst.Slot)
		b.objs[dst].deleted = true
	case srcRouter:
		b.feed(dst, b.owner[e.Src.Node], e.Src.Slot)
		b.objs[src].deleted = true
	default:
		b.splice(uf, src, dst)
	}
}

func (b *build) isRouter(id graph.NodeID) bool {
	n, ok := b.g.Node(id)
	return ok && n.Kind == graph.KindRouter
}

type unionFind struct {
	parent map[int]int
}

func newUnionFind() *unionFind { return &unionFind{parent: make(map[int]int)} }

func (u *unionFind) find(x int) int {
	p, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if p == x {
		return x
	}
	r := u.find(p)
	u.parent[x] = r
	return r
}

func (u *unionFind) union(x, y int) {
	rx, ry := u.find(x), u.find(y)
	if rx != ry {
		u.parent[ry] = rx
	}
}
