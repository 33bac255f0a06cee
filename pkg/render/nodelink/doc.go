// Package nodelink renders circuit graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT uses left-to-right layout (rankdir=LR), so material
// flows from sources on the left to sinks on the right. Each node kind has
// its own shape; edge ends are labeled with slot indices.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no system Graphviz install is needed.
package nodelink
