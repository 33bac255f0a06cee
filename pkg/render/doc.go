// Package render groups the visual outputs of beltwright.
//
// Blueprints are the primary output and live in [blueprint]. This tree holds
// the secondary, human-facing views of a circuit graph:
//
//   - [nodelink]: Graphviz diagrams of the logical circuit
//
// [blueprint]: github.com/matzehuels/beltwright/pkg/blueprint
// [nodelink]: github.com/matzehuels/beltwright/pkg/render/nodelink
package render
