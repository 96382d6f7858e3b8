package graph

import "context"

// Executor is implemented by behaviors that run when the graph is stepped.
type Executor interface {
	OnExecute(ctx context.Context, n *Node) error
}

// ConnectionsChangeHandler receives a notification for every link attached to
// or detached from one of the node's slots.
type ConnectionsChangeHandler interface {
	OnConnectionsChange(kind SlotKind, slot int, connected bool, link *Link)
}

// InputConnectValidator may veto an incoming connection. Returning false
// rejects the connection before anything is modified.
type InputConnectValidator interface {
	OnConnectInput(slot int, outputType string, origin *Node, originSlot int) bool
}

// PropertyChangedHandler observes [Node.SetProperty]. Returning false reverts
// the property to its previous value.
type PropertyChangedHandler interface {
	OnPropertyChanged(name string, value, prev any) bool
}

// LegacyPropertyChangeHandler is the old single argument property hook.
//
// Deprecated: implement [PropertyChangedHandler] instead. The registry logs a
// warning for types whose behavior still implements this.
type LegacyPropertyChangeHandler interface {
	OnPropertyChange(name string)
}

// AddedHandler is called after the node joins a graph.
type AddedHandler interface {
	OnAdded(g *Graph)
}

// RemovedHandler is called after the node left its graph.
type RemovedHandler interface {
	OnRemoved()
}

// Factory creates nodes by type key. registry.Registry implements it.
type Factory interface {
	CreateNode(typ string) (*Node, error)
}

func notifyConnections(n *Node, kind SlotKind, slot int, connected bool, link *Link) {
	if n == nil {
		return
	}
	if h, ok := n.Behavior.(ConnectionsChangeHandler); ok {
		h.OnConnectionsChange(kind, slot, connected, link)
	}
}
