// Package graph provides the in-memory node graph: typed slots, nodes, links,
// execution ordering and the versioned serialization format.
//
// # Overview
//
// A [Graph] owns a set of [Node] values kept in insertion order and a link
// table mapping a [LinkID] to a [Link]. Every node exposes ordered input and
// output slots; the slot index is the addressing scheme for [Node.Connect],
// [Node.DisconnectInput] and [Node.DisconnectOutput].
//
// Nodes are not constructed directly by callers in most cases. A [Factory]
// (usually a registry.Registry) instantiates them by type key, which is what
// [Graph.Configure] uses when loading serialized data.
//
// # Links
//
// A link id is referenced twice: once from the origin output slot and once
// from the target input slot. Both references are maintained together by
// connect, disconnect, [Graph.RemoveLink] and [Graph.Remove]; callers must
// never edit the Links slices of a slot directly. [Graph.Validate] checks the
// invariant.
//
// Inputs accept a single link unless [InputSlot.AllowMultiple] is set, in
// which case every distinct origin output may connect once and the input keeps
// its links in connection order:
//
//	target.AddInput("deps", "number", graph.WithAllowMultiple())
//	src1.Connect(0, target, 0)
//	src2.Connect(0, target, 0)
//	target.GetInputNodes(0) // [src1 src2]
//
// An unconnected input has a nil Links slice. Outputs always carry a non-nil
// (possibly empty) slice.
//
// # Callbacks
//
// Node behavior is attached through [Node.Behavior]. The engine type-asserts
// for optional capabilities before calling them: [Executor],
// [ConnectionsChangeHandler], [InputConnectValidator],
// [PropertyChangedHandler], [AddedHandler] and [RemovedHandler].
//
// # Serialization
//
// [Graph.Serialize] produces a [Data] value whose JSON form is
//
//	{
//	  "last_node_id": 3, "last_link_id": 2,
//	  "nodes": [{"id": 1, "type": "math/sum", "inputs": [{"name": "a", "type": "number", "links": [1]}], ...}],
//	  "links": [[1, 2, 0, 1, 0, "number"]],
//	  "groups": [], "config": {}, "extra": {}, "version": 0.5
//	}
//
// [Graph.Configure] runs [Migrate] first, which rewrites the pre-0.5 single
// "link" field of inputs into a one element "links" array, so the rest of the
// loader only handles the current shape.
//
// # Execution Order
//
// [Graph.ComputeExecutionOrder] is a Kahn topological sort in which every
// link counts toward the in-degree of its target. Ready nodes are emitted in
// insertion order. Nodes that never become ready (cycles) are appended in
// insertion order after all resolvable nodes.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. All operations run to
// completion synchronously; callers must ensure a single writer.
package graph
