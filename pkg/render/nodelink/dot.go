package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/beltwright/pkg/graph"
)

// Options configures circuit diagram rendering.
type Options struct {
	// Detailed adds node ids and per-slot settings to labels.
	// When false, only the node's role and main setting are shown.
	Detailed bool
}

// ToDOT converts a circuit graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Package references are drawn as 3D boxes, labels as notes without edges.
// Edges leaving a filtered slot carry the filter item; edges entering a
// prioritized slot are bold.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph circuit {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := []string{
			fmt.Sprintf("taillabel=\"%d\"", e.Src.Slot),
			fmt.Sprintf("headlabel=\"%d\"", e.Dst.Slot),
		}
		if s, ok := g.Slot(e.Src); ok && s.FilterItem != 0 {
			attrs = append(attrs, fmt.Sprintf("label=\"item %d\"", s.FilterItem))
		}
		if s, ok := g.Slot(e.Dst); ok && s.Priority {
			attrs = append(attrs, "style=bold")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", nodeName(e.Src.Node), nodeName(e.Dst.Node), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id graph.NodeID) string { return fmt.Sprintf("n%d", id) }

func fmtLabel(n *graph.Node, detailed bool) string {
	var head string
	switch n.Kind {
	case graph.KindRouter:
		head = "router"
	case graph.KindMonitor:
		head = fmt.Sprintf("monitor\n%d/min", n.Flow)
	case graph.KindSource, graph.KindSink:
		head = fmt.Sprintf("%s\nitem %d x%d", n.Kind, n.ItemID, n.Count)
	case graph.KindPackage:
		head = n.Text + "\n" + shortHash(n.PackageHash)
	case graph.KindLabel:
		return n.Text
	default:
		head = string(n.Kind)
	}
	if !detailed {
		return head
	}

	parts := []string{fmt.Sprintf("#%d", n.ID)}
	for i, s := range n.Slots {
		line := fmt.Sprintf("%d: %s", i, s.Dir)
		if s.Priority {
			line += " prio"
		}
		if s.FilterItem != 0 {
			line += fmt.Sprintf(" filter %d", s.FilterItem)
		}
		if s.Tier != 0 {
			line += fmt.Sprintf(" mk%d", s.Tier)
		}
		parts = append(parts, line)
	}
	return head + "\n" + strings.Join(parts, "\n")
}

// shortHash trims a versioned content hash for display.
func shortHash(h string) string {
	if i := strings.IndexByte(h, ':'); i >= 0 && len(h) > i+9 {
		return h[:i+9]
	}
	return h
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case graph.KindRouter:
		attrs = append(attrs, "shape=diamond", "style=filled", "fillcolor=khaki")
	case graph.KindSource:
		attrs = append(attrs, "shape=invhouse", "fillcolor=palegreen")
	case graph.KindSink:
		attrs = append(attrs, "shape=house", "fillcolor=lightsalmon")
	case graph.KindPackage:
		attrs = append(attrs, "shape=box3d", "style=filled", "fillcolor=lightblue")
	case graph.KindVoid:
		attrs = append(attrs, "shape=point", "width=0.2")
	case graph.KindLabel:
		attrs = append(attrs, "shape=note", "style=\"filled,dashed\"", "fillcolor=lightyellow")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
