package assembler

import (
	"slices"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
)

// expand replaces every package reference in work by a copy of the
// package's graph until none are left. Internal sources and sinks become
// monitors; external edges are moved onto them.
func (a *Assembler) expand(work *graph.Graph) error {
	// ancestry records the chain of packages a node was copied out of.
	ancestry := make(map[graph.NodeID][]string)

	for {
		i := slices.IndexFunc(work.Nodes(), func(n *graph.Node) bool { return n.Kind == graph.KindPackage })
		if i < 0 {
			return nil
		}
		ref := work.Nodes()[i]
		chain := ancestry[ref.ID]
		if slices.Contains(chain, ref.PackageHash) {
			return errors.New(errors.ErrCodePackageCycle, "package %s nests itself via %v", ref.PackageHash, chain)
		}
		pkg, ok := a.reg.Get(ref.PackageHash)
		if !ok {
			return errors.New(errors.ErrCodePackageNotFound, "package %s referenced by node %d not in registry", ref.PackageHash, ref.ID)
		}
		if pkg.Graph == nil {
			return errors.New(errors.ErrCodePackageDataCorrupt, "package %s has no graph", pkg.Hash)
		}
		if err := a.splice(work, ref, pkg, append(slices.Clone(chain), pkg.Hash), ancestry); err != nil {
			return err
		}
	}
}

func (a *Assembler) splice(work *graph.Graph, ref *graph.Node, pkg *graph.PackageModel, chain []string, ancestry map[graph.NodeID][]string) error {
	base := work.MaxID()
	moved := func(id graph.NodeID) graph.NodeID { return base + id }

	for _, n := range pkg.Graph.Nodes() {
		c := *n
		c.ID = moved(n.ID)
		c.X += ref.X
		c.Y += ref.Y
		if c.IsSignal() {
			c.Kind = graph.KindMonitor
		}
		if _, err := work.AddNode(c); err != nil {
			return errors.Wrap(errors.ErrCodePackageDataCorrupt, err, "package %s node %d", pkg.Hash, n.ID)
		}
		ancestry[c.ID] = chain
	}
	for _, e := range pkg.Graph.Edges() {
		src := graph.SlotRef{Node: moved(e.Src.Node), Slot: e.Src.Slot}
		dst := graph.SlotRef{Node: moved(e.Dst.Node), Slot: e.Dst.Slot}
		if _, err := work.Connect(src, dst); err != nil {
			return errors.Wrap(errors.ErrCodePackageDataCorrupt, err, "package %s edge %d", pkg.Hash, e.ID)
		}
	}

	for k, s := range ref.Slots {
		if s.Edge == 0 {
			continue
		}
		port := s.Port
		if port == 0 && k < len(pkg.Template.Ports) {
			port = pkg.Template.Ports[k].NodeID
		}
		inner, err := pkg.PortSlot(port)
		if err != nil {
			return err
		}
		if want := portDir(inner); want != s.Dir {
			return errors.New(errors.ErrCodePackageDataCorrupt, "package %s: slot %d is %s but port %d is %s", pkg.Hash, k, s.Dir, port, want)
		}
		inner.Node = moved(inner.Node)

		peer, _ := work.Peer(graph.SlotRef{Node: ref.ID, Slot: k})
		work.Disconnect(s.Edge)
		var connErr error
		if s.Dir == graph.DirIn {
			_, connErr = work.Connect(peer, inner)
		} else {
			_, connErr = work.Connect(inner, peer)
		}
		if connErr != nil {
			return errors.Wrap(errors.ErrCodePackageDataCorrupt, connErr, "package %s: splice port %d", pkg.Hash, port)
		}
		a.logger.Debug("spliced package port", "package", pkg.Name, "slot", k, "node", inner.Node)
	}

	work.RemoveNode(ref.ID)
	return nil
}

// portDir is the direction a reference slot must have to be spliced onto
// inner: a source's in slot backs an input, a sink's out slot an output.
func portDir(inner graph.SlotRef) graph.Direction {
	if inner.Slot == graph.SlotIn {
		return graph.DirIn
	}
	return graph.DirOut
}
