package graph

import "github.com/matzehuels/beltwright/pkg/layout"

// =============================================================================
// Identifiers
// =============================================================================

// NodeID identifies a node within one graph. Zero is never a valid id.
type NodeID int

// EdgeID identifies an edge within one graph. Zero means "no edge".
type EdgeID int

// SlotRef addresses one slot of one node.
type SlotRef struct {
	Node NodeID
	Slot int
}

// =============================================================================
// Kinds and Directions
// =============================================================================

// Kind is the logical type of a node.
type Kind string

const (
	KindLabel   Kind = "label"   // free text, never materialized
	KindRouter  Kind = "router"  // 4-way router
	KindMonitor Kind = "monitor" // rate monitor
	KindSource  Kind = "source"  // signal source, a circuit input
	KindSink    Kind = "sink"    // signal sink, a circuit output
	KindPackage Kind = "package" // reference to a nested package
	KindVoid    Kind = "void"    // zero-sink terminator
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLabel, KindRouter, KindMonitor, KindSource, KindSink, KindPackage, KindVoid:
		return true
	}
	return false
}

// Direction is the polarity of a slot.
type Direction string

const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

// Valid reports whether d is in or out.
func (d Direction) Valid() bool { return d == DirIn || d == DirOut }

// Opposite returns the other polarity.
func (d Direction) Opposite() Direction {
	if d == DirIn {
		return DirOut
	}
	return DirIn
}

// Slot indices of two-slot nodes (monitor, source, sink).
const (
	SlotIn  = 0
	SlotOut = 1
)

// =============================================================================
// Node, Slot, Edge
// =============================================================================

// Slot is a port of a node. It refers to its edge by id only.
type Slot struct {
	Dir     Direction
	OffsetX float64
	OffsetY float64
	Fixed   bool // offset pinned by the user

	Priority   bool // router only
	FilterItem int  // router out-slots only, 0 for none
	Tier       int  // belt tier override, 0 for the configured default

	// Port is the internal node id a package-reference slot exposes.
	Port NodeID

	Edge EdgeID
}

// Connected reports whether an edge occupies s.
func (s Slot) Connected() bool { return s.Edge != 0 }

// Node is a logical circuit element.
type Node struct {
	ID   NodeID
	Kind Kind

	X, Y, W, H float64

	Text        string // label text or display name
	ItemID      int    // filtered item of monitors, sources and sinks
	Count       int    // display number of sources and sinks
	Flow        int    // target flow of monitors
	PackageHash string // package references only

	Slots []Slot
}

// Connected reports whether any slot of n holds an edge.
func (n *Node) Connected() bool {
	for _, s := range n.Slots {
		if s.Connected() {
			return true
		}
	}
	return false
}

// ConnectedSlots returns the indices of the occupied slots.
func (n *Node) ConnectedSlots() []int {
	var out []int
	for i, s := range n.Slots {
		if s.Connected() {
			out = append(out, i)
		}
	}
	return out
}

// IsSignal reports whether n is a source or sink.
func (n *Node) IsSignal() bool { return n.Kind == KindSource || n.Kind == KindSink }

func (n *Node) clone() *Node {
	c := *n
	c.Slots = append([]Slot(nil), n.Slots...)
	return &c
}

// Edge is a directed connection from an out slot to an in slot.
type Edge struct {
	ID  EdgeID
	Src SlotRef
	Dst SlotRef
}

// =============================================================================
// Header
// =============================================================================

// Transform is the saved view transform of an editor.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// BoundingBox encloses every node of a serialized graph.
type BoundingBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// Counters track the highest display numbers handed out to signal nodes.
type Counters struct {
	Source int `json:"source"`
	Sink   int `json:"sink"`
}

// Header is graph-level metadata.
type Header struct {
	Name        string                   `json:"graphName"`
	Version     string                   `json:"version,omitempty"`
	Timestamp   int64                    `json:"timestamp,omitempty"`
	Transform   Transform                `json:"transform"`
	BoundingBox BoundingBox              `json:"boundingBox"`
	Layout      map[string]layout.Region `json:"layout,omitempty"`
	Counters    Counters                 `json:"counters"`
	Simplified  bool                     `json:"simplified,omitempty"`
}

// =============================================================================
// Constructors
// =============================================================================

// Default node sizes in editor units.
const (
	RouterSize  = 60
	MonitorSize = 40
)

// NewRouter returns a router whose four ports have the given directions.
func NewRouter(id NodeID, dirs [4]Direction) Node {
	n := Node{ID: id, Kind: KindRouter, W: RouterSize, H: RouterSize}
	offsets := [4][2]float64{{0, -0.5}, {0.5, 0}, {0, 0.5}, {-0.5, 0}}
	for i, d := range dirs {
		n.Slots = append(n.Slots, Slot{
			Dir:     d,
			OffsetX: offsets[i][0] * RouterSize,
			OffsetY: offsets[i][1] * RouterSize,
			Fixed:   true,
		})
	}
	return n
}

func twoSlot(id NodeID, kind Kind) Node {
	return Node{
		ID:   id,
		Kind: kind,
		W:    MonitorSize,
		H:    MonitorSize,
		Slots: []Slot{
			{Dir: DirIn, OffsetX: -MonitorSize / 2},
			{Dir: DirOut, OffsetX: MonitorSize / 2},
		},
	}
}

// NewMonitor returns a rate monitor with the given target flow.
func NewMonitor(id NodeID, flow int) Node {
	n := twoSlot(id, KindMonitor)
	n.Flow = flow
	return n
}

// NewSource returns a signal source for item with display number count.
func NewSource(id NodeID, item, count int) Node {
	n := twoSlot(id, KindSource)
	n.ItemID, n.Count = item, count
	return n
}

// NewSink returns a signal sink for item with display number count.
func NewSink(id NodeID, item, count int) Node {
	n := twoSlot(id, KindSink)
	n.ItemID, n.Count = item, count
	return n
}

// NewVoid returns a zero-sink with a single in slot.
func NewVoid(id NodeID) Node {
	return Node{ID: id, Kind: KindVoid, W: MonitorSize, H: MonitorSize, Slots: []Slot{{Dir: DirIn}}}
}

// NewLabel returns a text label.
func NewLabel(id NodeID, text string) Node {
	return Node{ID: id, Kind: KindLabel, Text: text}
}
