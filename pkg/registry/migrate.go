package registry

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
)

// MigrationResult holds the outcome of [Migrate]. The input registry and
// graph are left untouched.
type MigrationResult struct {
	Registry *Registry
	Graph    *graph.Graph
	// Rewrites maps every re-hashed address to its replacement.
	Rewrites map[string]string
}

// Migrate re-hashes every stale package and every package nesting one, on a
// snapshot of reg. Packages are processed children first: each package waits
// until all of its affected children have their new address. The complete
// rewrite map is built before it is applied to a fresh registry and to a copy
// of top. A package that never becomes ready indicates a nesting cycle and
// fails with PACKAGE_CYCLE.
func Migrate(reg *Registry, top *graph.Graph, logger *log.Logger) (*MigrationResult, error) {
	snap := reg.Snapshot()

	affected := affectedPackages(snap)
	pending := make(map[string]int, len(affected))
	waiting := make(map[string][]string)
	var queue []string
	for _, h := range affected {
		for _, c := range directChildren(snap.packages[h]) {
			if slices.Contains(affected, c) {
				pending[h]++
				waiting[c] = append(waiting[c], h)
			}
		}
		if pending[h] == 0 {
			queue = append(queue, h)
		}
	}

	rewrites := make(map[string]string, len(affected))
	migrated := make(map[string]*graph.PackageModel, len(affected))
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]

		p := snap.packages[old].Clone()
		rewriteRefs(p.Graph, rewrites)
		p.Hash = Hash(p.Graph)
		for i, c := range p.ChildHashes {
			if nh, ok := rewrites[c]; ok {
				p.ChildHashes[i] = nh
			}
		}
		slices.Sort(p.ChildHashes)
		p.ChildHashes = slices.Compact(p.ChildHashes)
		rewrites[old] = p.Hash
		migrated[old] = p
		if logger != nil {
			logger.Debug("rehashed package", "name", p.Name, "old", old, "new", p.Hash)
		}

		for _, parent := range waiting[old] {
			pending[parent]--
			if pending[parent] == 0 {
				queue = append(queue, parent)
			}
		}
	}

	if len(migrated) != len(affected) {
		var stuck []string
		for _, h := range affected {
			if _, ok := migrated[h]; !ok {
				stuck = append(stuck, h)
			}
		}
		if logger != nil {
			logger.Error("package migration incomplete", "processed", len(migrated), "total", len(affected), "stuck", stuck)
		}
		return nil, errors.New(errors.ErrCodePackageCycle,
			"migrated %d of %d packages; cyclic or disconnected references among %v", len(migrated), len(affected), stuck)
	}

	out := New()
	for h, p := range snap.packages {
		if m, ok := migrated[h]; ok {
			out.packages[m.Hash] = m
			continue
		}
		out.packages[h] = p
	}

	var g *graph.Graph
	if top != nil {
		g = top.Clone()
		rewriteRefs(g, rewrites)
	}
	return &MigrationResult{Registry: out, Graph: g, Rewrites: rewrites}, nil
}

// affectedPackages returns, sorted, every stale package and every package
// that nests an affected one.
func affectedPackages(r *Registry) []string {
	set := make(map[string]bool)
	for h := range r.packages {
		if IsStale(h) {
			set[h] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for h, p := range r.packages {
			if !set[h] && nestsAny(p, set) {
				set[h] = true
				changed = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

func directChildren(p *graph.PackageModel) []string {
	if p.Graph == nil {
		return nil
	}
	return p.Graph.PackageHashes()
}

func rewriteRefs(g *graph.Graph, rewrites map[string]string) {
	if g == nil {
		return
	}
	for _, n := range g.Nodes() {
		if n.Kind != graph.KindPackage {
			continue
		}
		if nh, ok := rewrites[n.PackageHash]; ok {
			n.PackageHash = nh
		}
	}
}
