// Package pkg provides the core libraries for Beltwright circuit compilation.
//
// # Overview
//
// Beltwright compiles a circuit graph (routers, rate monitors, signal sources
// and sinks, and references to nested packages) into a blueprint string that
// the game can paste. The pkg directory is organized into three areas:
//
//  1. Model - [graph], [registry], [params], [items], [config]
//  2. Compilation - [assembler], [layout], [blueprint]
//  3. Infrastructure - [pipeline], [cache], [library], [render/nodelink], [observability]
//
// # Architecture
//
// The typical data flow through Beltwright:
//
//	Circuit document (JSON)
//	         ↓
//	    [graph] package (parse nodes, edges and packages)
//	         ↓
//	    [assembler] package (expand packages, place, route)
//	         ↓
//	    [blueprint] package (binary payload + text envelope)
//	         ↓
//	    BLUEPRINT:... string
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/beltwright/pkg/assembler"
//	    "github.com/matzehuels/beltwright/pkg/blueprint"
//	    "github.com/matzehuels/beltwright/pkg/config"
//	    "github.com/matzehuels/beltwright/pkg/graph"
//	    "github.com/matzehuels/beltwright/pkg/registry"
//	)
//
//	// 1. Load the circuit
//	doc, _ := graph.ReadFile("circuit.json")
//	res, _ := graph.Parse(doc, graph.ParseOptions{})
//
//	// 2. Assemble buildings
//	reg := registry.FromMap(res.Packages)
//	out, _ := assembler.New(config.Default(), reg, nil).Assemble(res.Graph)
//
//	// 3. Encode
//	text, _ := blueprint.ToText(blueprint.New(out.Buildings, blueprint.Header{}))
//
// # Main Packages
//
// [graph] - The circuit model: nodes with typed slots, edges between slots,
// package references, and the JSON document format.
//
// [registry] - Content-addressed package store. Hashes are versioned so that
// packages from older schemes can be migrated.
//
// [assembler] - Turns a graph into buildings in five passes: expand, collate,
// place, route and reindex. The generation mode decides how edges become
// belts.
//
// [layout] - Packs objects into bounded regions, central-cube or sequential.
//
// [blueprint] - The blueprint binary payload and its text envelope with digest.
//
// [pipeline] - Load, export, import and render flows shared by all entry
// points, with content-hash caching.
//
// [library] - SQLite-backed package library.
//
// [cache] - File, redis and null result caches.
//
// [render/nodelink] - Graphviz diagrams of circuits.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/assembler/...          # Specific package
package pkg
