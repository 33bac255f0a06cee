// Package graph models circuit graphs and their persisted JSON form.
//
// A [Graph] is an arena: nodes and edges are stored by integer id, and a
// [Slot] records only the [EdgeID] occupying it. Every slot that names an
// edge is listed by that edge, and every edge runs from an out slot to an in
// slot. [Graph.Connect] and [Graph.Disconnect] maintain both sides.
//
// # Node Kinds
//
//	label     free text, ignored by hashing and assembly
//	router    four ports, each an input or an output
//	monitor   rate monitor, slots [0]=in [1]=out
//	source    circuit input, same slots as monitor
//	sink      circuit output, same slots as monitor
//	package   reference to a [PackageModel], one slot per template port
//	void      zero-sink, a single in slot
//
// # Persisted Form
//
// A [Document] is the JSON envelope:
//
//	{
//	  "header": {"graphName": "...", "transform": {...}, "boundingBox": {...}},
//	  "data": {"nodes": [...], "lines": [...]},
//	  "packages": [...],
//	  "packageHashList": [...]
//	}
//
// [Parse] loads a document, renumbering nodes from a start id so that
// documents can be merged. Malformed nodes and lines are skipped and reported
// as [Diagnostic] values. [Serialize] writes a node set back with dense ids,
// optionally pruning unused packages and compacting package hashes to
// indices into packageHashList.
//
// # Packages
//
// A [PackageModel] embeds a graph. Its [Template] exposes one input port per
// internal source and one output port per internal sink; a package-reference
// node carries the internal node id of each port on its slots.
package graph
