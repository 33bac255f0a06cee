package assembler

import (
	"testing"

	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/registry"
)

// passthrough is a package of source -> monitor -> sink.
func passthrough(t *testing.T) *graph.PackageModel {
	t.Helper()
	pg := graph.New(graph.Header{})
	mustAdd(t, pg, graph.NewSource(1, 1001, 1))
	mustAdd(t, pg, graph.NewMonitor(2, 60))
	mustAdd(t, pg, graph.NewSink(3, 1001, 2))
	mustConnect(t, pg, out(1), in(2))
	mustConnect(t, pg, out(2), in(3))
	return &graph.PackageModel{Hash: "v2:pass", Name: "pass", Graph: pg, Template: graph.DeriveTemplate(pg)}
}

// wrap places a reference to p between a top-level source and sink.
func wrap(t *testing.T, p *graph.PackageModel) *graph.Graph {
	t.Helper()
	g := graph.New(graph.Header{})
	mustAdd(t, g, graph.NewSource(1, 1001, 1))
	mustAdd(t, g, graph.NewPackageRef(2, p))
	mustAdd(t, g, graph.NewSink(3, 1001, 1))
	mustConnect(t, g, out(1), port(2, 0))
	mustConnect(t, g, port(2, 1), in(3))
	return g
}

func TestExpandSplicesPackage(t *testing.T) {
	p := passthrough(t)
	reg := registry.New()
	reg.Put(p)
	g := wrap(t, p)

	res := assemble(t, config.Default(), reg, g)

	if res.Sources != 1 || res.Sinks != 1 || res.Monitors != 3 || res.Sorters != 4 {
		t.Errorf("counts = %+v, want 1 source, 1 sink, 3 monitors, 4 sorters", res)
	}
	if got, want := len(res.Buildings), 5*3+4; got != want {
		t.Errorf("len(Buildings) = %d, want %d", got, want)
	}
	if n, ok := g.Node(2); !ok || n.Kind != graph.KindPackage {
		t.Error("input graph was modified")
	}
}

func TestExpandRewiresEdges(t *testing.T) {
	p := passthrough(t)
	reg := registry.New()
	reg.Put(p)
	work := wrap(t, p)

	if err := New(config.Default(), reg, nil).expand(work); err != nil {
		t.Fatalf("expand() error: %v", err)
	}
	if _, ok := work.Node(2); ok {
		t.Error("package reference survived expansion")
	}
	// Internal ids are offset past the top-level maximum of 3.
	for id, kind := range map[graph.NodeID]graph.Kind{4: graph.KindMonitor, 5: graph.KindMonitor, 6: graph.KindMonitor} {
		n, ok := work.Node(id)
		if !ok || n.Kind != kind {
			t.Errorf("node %d = %v, want %s", id, n, kind)
		}
	}
	if peer, _ := work.Peer(out(1)); peer != in(4) {
		t.Errorf("source feeds %v, want %v", peer, in(4))
	}
	if peer, _ := work.Peer(in(3)); peer != out(6) {
		t.Errorf("sink fed by %v, want %v", peer, out(6))
	}
	if got := work.EdgeCount(); got != 4 {
		t.Errorf("EdgeCount() = %d, want 4", got)
	}
}

func TestExpandNested(t *testing.T) {
	inner := passthrough(t)

	og := graph.New(graph.Header{})
	mustAdd(t, og, graph.NewSource(1, 1001, 1))
	mustAdd(t, og, graph.NewPackageRef(2, inner))
	mustAdd(t, og, graph.NewSink(3, 1001, 2))
	mustConnect(t, og, out(1), port(2, 0))
	mustConnect(t, og, port(2, 1), in(3))
	outer := &graph.PackageModel{Hash: "v2:outer", Name: "outer", ChildHashes: []string{inner.Hash}, Graph: og, Template: graph.DeriveTemplate(og)}

	reg := registry.New()
	reg.Put(inner)
	reg.Put(outer)

	res := assemble(t, config.Default(), reg, wrap(t, outer))
	// outer source and sink plus the three inner nodes become monitors.
	if res.Monitors != 5 || res.Sorters != 6 {
		t.Errorf("Monitors = %d, Sorters = %d, want 5, 6", res.Monitors, res.Sorters)
	}
}

func TestExpandErrors(t *testing.T) {
	corrupt := passthrough(t)
	corrupt.Template = graph.Template{Ports: []graph.Port{
		{Dir: graph.DirIn, NodeID: 2},
		{Dir: graph.DirOut, NodeID: 3},
	}}

	self := &graph.PackageModel{Hash: "v2:self", Name: "self"}
	sg := graph.New(graph.Header{})
	mustAdd(t, sg, graph.NewPackageRef(1, self))
	self.Graph = sg

	tests := []struct {
		name string
		reg  []*graph.PackageModel
		g    func() *graph.Graph
		code errors.Code
	}{
		{"missing package", nil, func() *graph.Graph { return wrap(t, passthrough(t)) }, errors.ErrCodePackageNotFound},
		{"port on monitor", []*graph.PackageModel{corrupt}, func() *graph.Graph { return wrap(t, corrupt) }, errors.ErrCodePackageDataCorrupt},
		{"self nesting", []*graph.PackageModel{self}, func() *graph.Graph {
			g := graph.New(graph.Header{})
			mustAdd(t, g, graph.NewPackageRef(1, self))
			return g
		}, errors.ErrCodePackageCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			for _, p := range tt.reg {
				reg.Put(p)
			}
			_, err := New(config.Default(), reg, nil).Assemble(tt.g())
			if !errors.Is(err, tt.code) {
				t.Errorf("Assemble() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDanglingEdgeModes(t *testing.T) {
	// Forget the sink's port belt so the edge has no destination.
	b := newBuild(New(config.Default(), registry.New(), nil), graph.New(graph.Header{}))
	g := graph.New(graph.Header{})
	mustAdd(t, g, graph.NewSource(1, 1001, 1))
	mustAdd(t, g, graph.NewSink(2, 1001, 1))
	mustConnect(t, g, out(1), in(2))
	b.g = g
	b.collate()
	delete(b.port, in(2))

	if err := b.route(); !errors.Is(err, errors.ErrCodeDanglingReference) {
		t.Errorf("sorter route() error = %v, want DANGLING_REFERENCE", err)
	}

	b.cfg = config.Default().WithGeneration(config.GenerationSplice)
	b.res = &Result{}
	if err := b.route(); err != nil {
		t.Fatalf("splice route() error: %v", err)
	}
	if b.res.DroppedEdges != 1 {
		t.Errorf("DroppedEdges = %d, want 1", b.res.DroppedEdges)
	}
}
