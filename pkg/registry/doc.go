// Package registry maps node type keys to the blueprints that build them.
//
// # Overview
//
// A [Blueprint] replaces prototype inheritance with an explicit factory: an
// Init function declares the node's slots, an optional Behavior constructor
// supplies the capability object the graph engine calls into. Blueprints are
// stored under slash separated keys:
//
//	reg := registry.New(registry.WithLogger(logger))
//	reg.Register("math/sum", &registry.Blueprint{
//	    Name: "Sum",
//	    Init: func(n *graph.Node) {
//	        n.AddInput("a", "number")
//	        n.AddInput("b", "number")
//	        n.AddOutput("sum", "number")
//	    },
//	})
//
// The part of the key before the last "/" is the category ("math"). The title
// is the blueprint's Title, else its Name, else the last key segment.
//
// # Replacement
//
// Registering a key twice replaces the entry. The registry logs
// "replacing node type <key>" at info level and fires the replaced hook
// instead of the registered hook.
//
// # Indices
//
// Two read-only indices are maintained:
//   - Slot types, enabled with [WithAutoIndexSlotTypes]: which types accept or
//     produce a slot type tag.
//   - File extensions: which type opens a file extension. Extensions are
//     lower-cased and the last registration wins.
//
// # Graph Integration
//
// [Registry] implements graph.Factory, so it is passed to graph.New and used
// by Graph.Configure to instantiate serialized nodes.
package registry
