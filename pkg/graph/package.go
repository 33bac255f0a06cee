package graph

import (
	"cmp"
	"slices"

	"github.com/matzehuels/beltwright/pkg/errors"
)

// Port is one externally visible connection point of a package.
type Port struct {
	// Dir is the direction of the slot on the package-reference node. Ports
	// backed by internal sources are inputs, ports backed by sinks are outputs.
	Dir    Direction
	NodeID NodeID // internal source or sink
	ItemID int
	Count  int
}

// Template describes the slots a package-reference node exposes.
type Template struct {
	Ports []Port
}

// PackageModel is a content-addressed, reusable sub-circuit.
type PackageModel struct {
	Hash        string
	Name        string
	ChildHashes []string // every package nested at any depth, sorted
	Graph       *Graph
	Template    Template
}

// Clone returns a deep copy of p.
func (p *PackageModel) Clone() *PackageModel {
	c := *p
	c.ChildHashes = slices.Clone(p.ChildHashes)
	c.Template.Ports = slices.Clone(p.Template.Ports)
	if p.Graph != nil {
		c.Graph = p.Graph.Clone()
	}
	return &c
}

// DeriveTemplate lists the ports of g: sources first, then sinks, each group
// ordered by display number and then by node order.
func DeriveTemplate(g *Graph) Template {
	var sources, sinks []Port
	for _, n := range g.Nodes() {
		switch n.Kind {
		case KindSource:
			sources = append(sources, Port{Dir: DirIn, NodeID: n.ID, ItemID: n.ItemID, Count: n.Count})
		case KindSink:
			sinks = append(sinks, Port{Dir: DirOut, NodeID: n.ID, ItemID: n.ItemID, Count: n.Count})
		}
	}
	byCount := func(a, b Port) int { return cmp.Compare(a.Count, b.Count) }
	slices.SortStableFunc(sources, byCount)
	slices.SortStableFunc(sinks, byCount)
	return Template{Ports: append(sources, sinks...)}
}

// NewPackageRef returns a node that instantiates p, one slot per port.
func NewPackageRef(id NodeID, p *PackageModel) Node {
	n := Node{
		ID:          id,
		Kind:        KindPackage,
		Text:        p.Name,
		PackageHash: p.Hash,
		W:           RouterSize * 2,
		H:           float64(max(len(p.Template.Ports), 1)) * MonitorSize,
	}
	for i, port := range p.Template.Ports {
		x := -n.W / 2
		if port.Dir == DirOut {
			x = n.W / 2
		}
		n.Slots = append(n.Slots, Slot{
			Dir:     port.Dir,
			OffsetX: x,
			OffsetY: float64(i)*MonitorSize - n.H/2 + MonitorSize/2,
			Port:    port.NodeID,
		})
	}
	return n
}

// PortSlot returns the internal slot a package-reference slot is spliced
// onto: the in slot of a source for input ports, the out slot of a sink for
// output ports.
func (p *PackageModel) PortSlot(port NodeID) (SlotRef, error) {
	i := slices.IndexFunc(p.Template.Ports, func(x Port) bool { return x.NodeID == port })
	if i < 0 {
		return SlotRef{}, errors.New(errors.ErrCodePackageDataCorrupt, "package %s: no port for internal node %d", p.Hash, port)
	}
	n, ok := p.Graph.Node(port)
	if !ok || !n.IsSignal() || len(n.Slots) != 2 {
		return SlotRef{}, errors.New(errors.ErrCodePackageDataCorrupt, "package %s: port node %d missing", p.Hash, port)
	}
	if p.Template.Ports[i].Dir == DirIn {
		return SlotRef{Node: port, Slot: SlotIn}, nil
	}
	return SlotRef{Node: port, Slot: SlotOut}, nil
}
