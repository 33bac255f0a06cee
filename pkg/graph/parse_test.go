package graph

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/beltwright/pkg/errors"
)

const malformed = `{
  "header": {"graphName": "malformed"},
  "data": {
    "nodes": [
      {"id": 10, "type": "source", "count": 2, "itemId": 1001},
      null,
      {"type": "monitor"},
      {"id": 10, "type": "monitor"},
      {"id": 11, "type": "warp"},
      {"id": 12, "type": "sink", "count": 5},
      {"id": 13, "type": "monitor", "x": 5}
    ],
    "lines": [
      {"from": 10, "fromSlot": 1, "to": 13, "toSlot": 0},
      {"from": 13, "fromSlot": 1, "to": 12, "toSlot": 0},
      null,
      {"from": 10, "fromSlot": 0, "to": 12, "toSlot": 0},
      {"from": 99, "fromSlot": 1, "to": 12, "toSlot": 0},
      {"from": 13, "fromSlot": 1, "to": 12, "toSlot": 0}
    ]
  }
}`

func TestParseSkipsMalformedElements(t *testing.T) {
	doc, err := Decode(strings.NewReader(malformed))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Parse(doc, ParseOptions{StartID: 100, OffsetX: 10})
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Graph.NodeCount(); got != 3 {
		t.Errorf("NodeCount = %d, want 3", got)
	}
	if got := res.Graph.EdgeCount(); got != 2 {
		t.Errorf("EdgeCount = %d, want 2", got)
	}
	if got := len(res.Diagnostics); got != 8 {
		t.Errorf("Diagnostics = %d, want 8: %v", got, res.Diagnostics)
	}
	if res.MaxID != 103 {
		t.Errorf("MaxID = %d, want 103", res.MaxID)
	}
	if res.Counters != (Counters{Source: 2, Sink: 5}) {
		t.Errorf("Counters = %+v", res.Counters)
	}
	n, ok := res.Graph.Node(103)
	if !ok || n.Kind != KindMonitor || n.X != 15 {
		t.Errorf("node 103 = %+v, want monitor at x=15", n)
	}
	if err := res.Graph.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseRejectsBadSlotShapes(t *testing.T) {
	tests := []struct {
		name string
		node string
		ok   bool
	}{
		{"monitor default", `{"id": 1, "type": "monitor"}`, true},
		{"monitor in out", `{"id": 1, "type": "monitor", "slots": [{"dir": "in"}, {"dir": "out"}]}`, true},
		{"monitor reversed", `{"id": 1, "type": "monitor", "slots": [{"dir": "out"}, {"dir": "in"}]}`, false},
		{"source one slot", `{"id": 1, "type": "source", "slots": [{"dir": "out"}]}`, false},
		{"sink three slots", `{"id": 1, "type": "sink", "slots": [{"dir": "in"}, {"dir": "out"}, {"dir": "out"}]}`, false},
		{"void out", `{"id": 1, "type": "void", "slots": [{"dir": "out"}]}`, false},
		{"router four", `{"id": 1, "type": "router", "slots": [{"dir": "in"}, {"dir": "out"}, {"dir": "out"}, {"dir": "out"}]}`, true},
		{"router two", `{"id": 1, "type": "router", "slots": [{"dir": "in"}, {"dir": "out"}]}`, false},
		{"router none", `{"id": 1, "type": "router"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `{"header": {"graphName": "slots"}, "data": {"nodes": [` + tt.node + `], "lines": []}}`
			doc, err := Decode(strings.NewReader(src))
			if err != nil {
				t.Fatal(err)
			}
			res, err := Parse(doc, ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Graph.NodeCount() == 1; got != tt.ok {
				t.Errorf("node kept = %v, want %v (diagnostics %v)", got, tt.ok, res.Diagnostics)
			}
			if !tt.ok && len(res.Diagnostics) != 1 {
				t.Errorf("Diagnostics = %v, want one", res.Diagnostics)
			}
		})
	}
}

func TestDecodeRejectsBadEnvelope(t *testing.T) {
	tests := []string{
		`{"data": []}`,
		`{"data": {"nodes": {}}}`,
		`{"data": {"lines": "x"}}`,
		`[1, 2]`,
		`{`,
	}
	for _, in := range tests {
		if _, err := Decode(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeInvalidGraph) {
			t.Errorf("Decode(%s) error = %v, want INVALID_GRAPH", in, err)
		}
	}
}

func TestParseNilDocument(t *testing.T) {
	if _, err := Parse(nil, ParseOptions{}); !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("Parse(nil) error = %v", err)
	}
}

// buildPackage returns a package whose graph is source -> monitor -> sink.
func buildPackage(t *testing.T, hash string, children ...string) *PackageModel {
	t.Helper()
	g := New(Header{Name: hash})
	mustAdd(t, g, NewSource(1, 1001, 1))
	mustAdd(t, g, NewMonitor(2, 30))
	mustAdd(t, g, NewSink(3, 1001, 1))
	mustConnect(t, g, SlotRef{1, SlotOut}, SlotRef{2, SlotIn})
	mustConnect(t, g, SlotRef{2, SlotOut}, SlotRef{3, SlotIn})
	return &PackageModel{Hash: hash, Name: hash, ChildHashes: children, Graph: g, Template: DeriveTemplate(g)}
}

func sampleGraph(t *testing.T, pkg *PackageModel) *Graph {
	t.Helper()
	g := New(Header{Name: "sample", Transform: Transform{K: 1}})
	mustAdd(t, g, NewSource(1, 1001, 4))
	mustAdd(t, g, NewPackageRef(2, pkg))
	mustAdd(t, g, NewSink(3, 1001, 7))
	mustAdd(t, g, NewLabel(4, "note"))
	mustConnect(t, g, SlotRef{1, SlotOut}, SlotRef{2, 0})
	mustConnect(t, g, SlotRef{2, 1}, SlotRef{3, SlotIn})
	return g
}

func TestSerializeParseRoundTrip(t *testing.T) {
	for _, simplify := range []bool{false, true} {
		a := buildPackage(t, "v2:aa", "v2:bb")
		b := buildPackage(t, "v2:bb")
		packages := map[string]*PackageModel{a.Hash: a, b.Hash: b}
		g := sampleGraph(t, a)

		opts := SerializeOptions{Simplify: simplify}
		first := g.Document(packages, opts)
		if simplify && (first.Data.Nodes[1].PackageIndex == nil || first.Data.Nodes[1].Package != "") {
			t.Errorf("simplified document should reference packages by index: %+v", first.Data.Nodes[1])
		}

		res, err := Parse(first, ParseOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Diagnostics) != 0 {
			t.Fatalf("Diagnostics = %v", res.Diagnostics)
		}
		if got := res.Packages["v2:aa"].ChildHashes; len(got) != 1 || got[0] != "v2:bb" {
			t.Errorf("child hashes = %v", got)
		}
		second := res.Graph.Document(res.Packages, opts)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("simplify=%v: serialize(parse(doc)) mismatch (-first +second):\n%s", simplify, diff)
		}
	}
}

func TestSerializePruneUnused(t *testing.T) {
	a := buildPackage(t, "v2:aa", "v2:bb")
	b := buildPackage(t, "v2:bb")
	c := buildPackage(t, "v2:cc")
	packages := map[string]*PackageModel{a.Hash: a, b.Hash: b, c.Hash: c}
	g := sampleGraph(t, a)

	full := g.Document(packages, SerializeOptions{})
	if len(full.Packages) != 3 {
		t.Errorf("unpruned packages = %d, want 3", len(full.Packages))
	}

	pruned := g.Document(packages, SerializeOptions{PruneUnused: true})
	var got []string
	for _, p := range pruned.Packages {
		got = append(got, p.Hash)
	}
	if diff := cmp.Diff([]string{"v2:aa", "v2:bb"}, got); diff != "" {
		t.Errorf("pruned packages mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeSubset(t *testing.T) {
	pkg := buildPackage(t, "v2:aa")
	g := sampleGraph(t, pkg)
	src, _ := g.Node(1)
	ref, _ := g.Node(2)
	src.X, src.Y = -10, 5
	ref.X, ref.Y = 100, 20

	doc := Serialize([]*Node{ref, src}, g.Edges(), g.Header, nil, SerializeOptions{})

	if got := len(doc.Data.Lines); got != 1 {
		t.Fatalf("lines = %d, want 1 (edge to the sink is outside the subset)", got)
	}
	if l := doc.Data.Lines[0]; *l.From != 2 || *l.To != 1 {
		t.Errorf("line = %d -> %d, want 2 -> 1 after dense renumbering", *l.From, *l.To)
	}
	want := BoundingBox{MinX: -10, MinY: 5, MaxX: 100 + ref.W, MaxY: 20 + ref.H, W: 110 + ref.W, H: 15 + ref.H}
	if doc.Header.BoundingBox != want {
		t.Errorf("BoundingBox = %+v, want %+v", doc.Header.BoundingBox, want)
	}
	if doc.Header.Counters != (Counters{Source: 4}) {
		t.Errorf("Counters = %+v, want source 4 only", doc.Header.Counters)
	}
}

func TestParseMergesWithoutCollisions(t *testing.T) {
	pkg := buildPackage(t, "v2:aa")
	doc := sampleGraph(t, pkg).Document(nil, SerializeOptions{})

	first, err := Parse(doc, ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(doc, ParseOptions{StartID: first.MaxID})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range second.Graph.Nodes() {
		if _, clash := first.Graph.Node(n.ID); clash {
			t.Errorf("node id %d reused across merged documents", n.ID)
		}
	}
	if second.MaxID != 2*first.MaxID {
		t.Errorf("second MaxID = %d, want %d", second.MaxID, 2*first.MaxID)
	}
}
