// Package assembler compiles a circuit graph into placed blueprint
// buildings.
//
// Assembly runs in fixed passes over a private copy of the graph:
//
//  1. expand: package references are replaced by their embedded graphs,
//     recursively, with external edges spliced onto the package's internal
//     sources and sinks.
//  2. collate: every connected node becomes a group of objects, a router or
//     monitor plus the connector belts of its ports. Unconnected nodes are
//     dropped.
//  3. place: routers, monitors, sources and sinks are laid out, each group
//     in its own region preset.
//  4. route: every edge becomes a physical link according to the configured
//     generation mode. Sorters created here are laid out last.
//  5. reindex: deleted objects are removed and the survivors numbered
//     densely, rewriting every cross-reference.
//
// The [Assembler] reads its settings from an explicit [config.Config] and
// never mutates its inputs.
package assembler
