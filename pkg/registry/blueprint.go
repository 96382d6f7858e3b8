package registry

import "github.com/matzehuels/slotgraph/pkg/graph"

// Blueprint describes how to build nodes of one type.
//
// A Blueprint is registered under a type key with [Registry.Register]. The
// registry keeps the pointer, so changes to Shape after registration affect
// nodes created afterwards.
type Blueprint struct {
	// Name is the blueprint's own name (e.g., "Sum"). It is used as the
	// type title when Title is empty. May be empty.
	Name string

	// Title is the explicit display title. Takes precedence over Name.
	Title string

	// Shape is the shape name resolved for every created node with
	// [graph.ResolveShape]: "box", "round", "circle" and "card" map to the
	// enum, "" and "default" leave the shape unset, and any other name is
	// kept verbatim as a custom shape.
	Shape string

	// SupportedExtensions lists file extensions this type can open. Entries
	// are lower-cased when indexed; empty entries are ignored.
	SupportedExtensions []string

	// Properties are default property values copied into each new node.
	Properties map[string]any

	// Init declares the node's slots and properties. Required: a blueprint
	// without Init cannot construct nodes and is rejected.
	Init func(n *graph.Node)

	// Behavior creates the per-node capability object stored in
	// [graph.Node.Behavior]. Optional.
	Behavior func() any
}

// NodeType is a registry entry.
type NodeType struct {
	// Type is the full type key, e.g. "math/sum".
	Type string

	// Title is Blueprint.Title, else Blueprint.Name, else the last segment
	// of Type.
	Title string

	// Category is the part of Type before the last "/", or "" when the key
	// has no "/".
	Category string

	// Blueprint is the registered blueprint.
	Blueprint *Blueprint

	// InputTypes and OutputTypes are the slot type tags of a freshly
	// created node, in slot order.
	InputTypes  []string
	OutputTypes []string

	seq int // registration sequence, for extension ownership
}
