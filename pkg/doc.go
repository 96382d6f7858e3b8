// Package pkg provides the core libraries of slotgraph.
//
// # Overview
//
// Slotgraph models node graphs whose nodes expose typed input and output
// slots connected by links. The pkg directory is organized into:
//
//  1. [graph] - Nodes, slots, links, connect/disconnect, serialization,
//     migration of legacy data and execution ordering
//  2. [registry] - Node type registration, instantiation and lookup indices
//  3. [catalog] - Node types declared in TOML files
//  4. [render] - DOT generation and Graphviz SVG/PDF/PNG rendering
//  5. [cache] - Byte caches (null, file, Redis) for memoized orders
//  6. [pipeline] - Orchestration (load → order → run → render)
//  7. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	catalog.toml ──► [registry] ◄── graph.json
//	                    │
//	                    ▼
//	               [graph] Configure
//	                    │
//	                    ▼
//	     [graph] ComputeExecutionOrder ◄─► [cache]
//	                    │
//	                    ▼
//	       [render] DOT / SVG / PDF / PNG
//
// # Quick Start
//
//	r := registry.New()
//	if err := catalog.Load("nodes.toml", r); err != nil {
//	    return err
//	}
//	data, err := graph.ReadFile("graph.json")
//	if err != nil {
//	    return err
//	}
//	g := graph.New(r)
//	if err := g.Configure(data); err != nil {
//	    return err
//	}
//	for _, n := range g.ComputeExecutionOrder() {
//	    fmt.Println(n.ID, n.Type)
//	}
package pkg
