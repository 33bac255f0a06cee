package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/beltwright/pkg/graph"
)

// HashVersion prefixes every address produced by [Hash].
const HashVersion = "v2"

// Version returns the format version of an address, or "" if it has none.
func Version(hash string) string {
	v, _, ok := strings.Cut(hash, ":")
	if !ok {
		return ""
	}
	return v
}

// IsStale reports whether hash was produced by another hashing scheme.
func IsStale(hash string) bool { return Version(hash) != HashVersion }

// Hash returns the content address of g.
//
// The address covers node kinds, slot shapes and connectivity. It ignores
// label nodes, positions and the order in which edges were created, but not
// the order of nodes.
func Hash(g *graph.Graph) string {
	sum := sha256.Sum256([]byte(Feature(g)))
	return HashVersion + ":" + hex.EncodeToString(sum[:])
}

// Feature returns the canonical string hashed by [Hash].
func Feature(g *graph.Graph) string {
	hashes := g.PackageHashes()
	ids := make(map[graph.NodeID]int)

	var nodes []string
	for _, n := range g.Nodes() {
		if n.Kind == graph.KindLabel {
			continue
		}
		id := len(ids) + 1
		ids[n.ID] = id
		nodes = append(nodes, nodeFeature(id, n, hashes))
	}

	edges := make([]string, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, endpoint(g, ids, e.Src)+","+endpoint(g, ids, e.Dst))
	}
	slices.Sort(edges)

	return strings.Join(nodes, ";") + "#" + strings.Join(edges, ";") + "#" + strings.Join(hashes, ";")
}

func nodeFeature(id int, n *graph.Node, hashes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-%s", id, n.Kind)
	if n.Kind == graph.KindPackage {
		i, _ := slices.BinarySearch(hashes, n.PackageHash)
		fmt.Fprintf(&b, ",p%d", i)
		return b.String()
	}
	if n.ItemID != 0 {
		fmt.Fprintf(&b, ",c%d", n.ItemID)
	}
	if n.Kind == graph.KindMonitor && n.Flow != 0 {
		fmt.Fprintf(&b, ",r%d", n.Flow)
	}
	if len(n.Slots) == 0 {
		return b.String()
	}
	slots := make([]string, len(n.Slots))
	for i, s := range n.Slots {
		f := string(s.Dir)
		if s.Tier != 0 {
			f += ",b" + strconv.Itoa(s.Tier)
		}
		switch {
		case s.Priority && s.FilterItem != 0:
			f += ",p" + strconv.Itoa(s.FilterItem)
		case s.Priority:
			f += ",p"
		case s.FilterItem != 0:
			f += ",f" + strconv.Itoa(s.FilterItem)
		}
		slots[i] = f
	}
	b.WriteString(",s")
	b.WriteString(strings.Join(slots, "|"))
	return b.String()
}

// endpoint renders one end of an edge. Package slots are named by the
// internal node they expose, not by their index.
func endpoint(g *graph.Graph, ids map[graph.NodeID]int, ref graph.SlotRef) string {
	id := ids[ref.Node]
	n, _ := g.Node(ref.Node)
	if n != nil && n.Kind == graph.KindPackage && ref.Slot < len(n.Slots) {
		return fmt.Sprintf("%d-n%d", id, n.Slots[ref.Slot].Port)
	}
	return fmt.Sprintf("%d-%d", id, ref.Slot)
}
