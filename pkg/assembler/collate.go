package assembler

import (
	"math"
	"slices"

	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/items"
	"github.com/matzehuels/beltwright/pkg/layout"
	"github.com/matzehuels/beltwright/pkg/params"
)

// noRef marks an unset cross-reference.
const noRef = -1

// beltLinkSlot is the slot used when a belt feeds another belt or a sorter.
const beltLinkSlot = 1

// object is a building under construction. Cross-references hold object
// ids (positions in build.objs) until reindex.
type object struct {
	b       blueprint.Building
	belt    bool
	tier    int
	signal  bool
	deleted bool
}

// unit is a node's main object plus the belts that move with it.
type unit struct {
	node    *graph.Node
	main    int
	belts   []int
	offsets []layout.Vec3
}

type build struct {
	a   *Assembler
	cfg config.Config
	g   *graph.Graph

	objs []*object
	// port maps a connected slot to the belt on its outward side.
	port map[graph.SlotRef]int
	// owner maps a node to its main object.
	owner map[graph.NodeID]int

	routers, monitors, sources, sinks []*unit
	sorters                           []int

	res *Result
}

func newBuild(a *Assembler, g *graph.Graph) *build {
	return &build{
		a:     a,
		cfg:   a.cfg,
		g:     g,
		port:  make(map[graph.SlotRef]int),
		owner: make(map[graph.NodeID]int),
		res:   &Result{},
	}
}

func (b *build) add(o *object) int {
	o.b.OutputObjIdx, o.b.InputObjIdx = noRef, noRef
	b.objs = append(b.objs, o)
	return len(b.objs) - 1
}

func (b *build) newBelt(tier int, signal bool) int {
	return b.add(&object{belt: true, tier: tier, signal: signal})
}

// link makes src feed dst on the given slot.
func (b *build) link(src, dst, slot int) {
	b.objs[src].b.OutputObjIdx = int32(dst)
	b.objs[src].b.OutputToSlot = int8(slot)
}

// feed makes dst take its input from src on the given slot.
func (b *build) feed(dst, src, slot int) {
	b.objs[dst].b.InputObjIdx = int32(src)
	b.objs[dst].b.InputFromSlot = int8(slot)
}

// beltsPerPort is the number of connector belts a router port receives.
func (b *build) beltsPerPort() int {
	if b.cfg.Generation == config.GenerationSplice {
		return 2
	}
	return 1
}

func (b *build) tierFor(s graph.Slot, fallback int) int {
	if s.Tier != 0 {
		return s.Tier
	}
	return fallback
}

// collate turns every connected node into objects. Labels and unconnected
// nodes are dropped; void nodes produce nothing.
func (b *build) collate() {
	for _, n := range b.g.Nodes() {
		if n.Kind == graph.KindLabel {
			continue
		}
		if !n.Connected() {
			b.res.DroppedNodes++
			b.a.logger.Debug("dropped unconnected node", "node", n.ID, "kind", n.Kind)
			continue
		}
		switch n.Kind {
		case graph.KindRouter:
			b.routers = append(b.routers, b.router(n))
		case graph.KindMonitor:
			b.monitors = append(b.monitors, b.monitor(n, "none"))
		case graph.KindSource:
			b.sources = append(b.sources, b.monitor(n, "generate"))
		case graph.KindSink:
			b.sinks = append(b.sinks, b.monitor(n, "consume"))
		}
	}
	byCount := func(x, y *unit) int { return x.node.Count - y.node.Count }
	slices.SortStableFunc(b.sources, byCount)
	slices.SortStableFunc(b.sinks, byCount)

	b.res.Routers = len(b.routers)
	b.res.Monitors = len(b.monitors)
	b.res.Sources = len(b.sources)
	b.res.Sinks = len(b.sinks)
}

// priorityPort returns the input slot whose belts run at the priority tier,
// or -1. A router qualifies with exactly two connected inputs, two connected
// outputs, exactly one prioritized input, and plain outputs.
func priorityPort(n *graph.Node) int {
	var ins, outs, prio []int
	for _, i := range n.ConnectedSlots() {
		s := n.Slots[i]
		if s.Dir == graph.DirIn {
			ins = append(ins, i)
			if s.Priority {
				prio = append(prio, i)
			}
			continue
		}
		if s.Priority || s.FilterItem != 0 {
			return -1
		}
		outs = append(outs, i)
	}
	if len(ins) != 2 || len(outs) != 2 || len(prio) != 1 {
		return -1
	}
	return prio[0]
}

func (b *build) router(n *graph.Node) *unit {
	var sp params.Splitter
	for i, s := range n.Slots {
		if i >= len(sp.Priority) {
			break
		}
		sp.Priority[i] = s.Priority
		sp.Filter[i] = int32(s.FilterItem)
	}
	main := b.add(&object{b: blueprint.Building{
		ItemID:     items.Splitter,
		ModelIndex: items.ModelSplitter,
		Params:     sp.Record(),
	}})
	b.owner[n.ID] = main
	u := &unit{node: n, main: main}

	prio := priorityPort(n)
	for _, i := range n.ConnectedSlots() {
		s := n.Slots[i]
		tier := b.cfg.DefaultTier
		if i == prio {
			tier = b.cfg.PriorityTier
		}
		tier = b.tierFor(s, tier)

		dx, dy := slotVector(i, s)
		chain := make([]int, b.beltsPerPort())
		for j := range chain {
			chain[j] = b.newBelt(tier, false)
			u.belts = append(u.belts, chain[j])
			u.offsets = append(u.offsets, layout.Vec3{X: dx * float64(j+1), Y: dy * float64(j+1)})
			yaw := heading(dx, dy)
			if s.Dir == graph.DirIn {
				yaw = heading(-dx, -dy)
			}
			b.objs[chain[j]].b.Yaw = [2]float32{yaw, yaw}
		}
		// chain[0] touches the router, the last belt faces outward.
		if s.Dir == graph.DirIn {
			b.link(chain[0], main, i)
			for j := 1; j < len(chain); j++ {
				b.link(chain[j], chain[j-1], beltLinkSlot)
			}
		} else {
			b.feed(chain[0], main, i)
			for j := 1; j < len(chain); j++ {
				b.link(chain[j-1], chain[j], beltLinkSlot)
			}
		}
		b.port[graph.SlotRef{Node: n.ID, Slot: i}] = chain[len(chain)-1]
	}
	return u
}

// monitor builds a traffic monitor with an in belt and an out belt. spawn
// selects a plain monitor, a source or a sink.
func (b *build) monitor(n *graph.Node, spawn string) *unit {
	m := params.DefaultMonitor()
	m.TargetFlow = int32(n.Flow)
	m.CargoFilter = int32(n.ItemID)
	m.Spawn = spawn
	signal := n.IsSignal()

	main := b.add(&object{signal: signal, b: blueprint.Building{
		ItemID:     items.TrafficMonitor,
		ModelIndex: items.ModelTrafficMonitor,
		Params:     m.Record(),
	}})
	b.owner[n.ID] = main

	in := b.newBelt(b.tierFor(slotAt(n, graph.SlotIn), b.cfg.DefaultTier), signal)
	out := b.newBelt(b.tierFor(slotAt(n, graph.SlotOut), b.cfg.DefaultTier), signal)
	b.link(in, out, beltLinkSlot)
	b.feed(main, in, 0)
	for _, id := range []int{in, out} {
		b.objs[id].b.Yaw = [2]float32{90, 90}
	}

	if signal && n.ItemID != 0 {
		label := params.BeltLabel(int32(n.ItemID), int32(n.Count))
		if n.Kind == graph.KindSource {
			b.objs[out].b.Params = label
		} else {
			b.objs[in].b.Params = label
		}
	}

	b.port[graph.SlotRef{Node: n.ID, Slot: graph.SlotIn}] = in
	b.port[graph.SlotRef{Node: n.ID, Slot: graph.SlotOut}] = out
	return &unit{
		node:    n,
		main:    main,
		belts:   []int{in, out},
		offsets: []layout.Vec3{{X: -1}, {X: 1}},
	}
}

func slotAt(n *graph.Node, i int) graph.Slot {
	if i < len(n.Slots) {
		return n.Slots[i]
	}
	return graph.Slot{}
}

// slotVector returns the unit step from a router's centre towards slot i.
// Persisted offsets win; otherwise slots go north, east, south, west.
func slotVector(i int, s graph.Slot) (float64, float64) {
	if l := math.Hypot(s.OffsetX, s.OffsetY); l > 0 {
		// Graph space grows downwards, blueprint space upwards.
		return snap(s.OffsetX / l), snap(-s.OffsetY / l)
	}
	switch i % 4 {
	case 0:
		return 0, 1
	case 1:
		return 1, 0
	case 2:
		return 0, -1
	default:
		return -1, 0
	}
}

// snap rounds a unit component to the nearest axis.
func snap(v float64) float64 {
	switch {
	case v > 0.5:
		return 1
	case v < -0.5:
		return -1
	default:
		return 0
	}
}

// heading converts a direction of travel to a yaw in degrees, clockwise from
// north.
func heading(dx, dy float64) float32 {
	deg := math.Atan2(dx, dy) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return float32(deg)
}
