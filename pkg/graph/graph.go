package graph

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/slotgraph/pkg/errors"
)

// Graph owns a set of nodes and the link table connecting their slots.
//
// The zero value is not usable - use New to create a Graph.
type Graph struct {
	// ID identifies the graph instance across serialization round trips.
	ID string

	Groups []map[string]any
	Config map[string]any
	Extra  map[string]any

	nodes      []*Node
	byID       map[int]*Node
	links      map[LinkID]*Link
	lastNodeID int
	lastLinkID int

	order   []*Node // cached by UpdateExecutionOrder, reset on topology changes
	factory Factory
	logger  *log.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithID overrides the generated graph id.
func WithID(id string) Option {
	return func(g *Graph) { g.ID = id }
}

// New creates an empty graph. The factory is used by Configure to
// instantiate nodes by type and may be nil for graphs built by hand.
func New(factory Factory, opts ...Option) *Graph {
	g := &Graph{
		ID:      uuid.NewString(),
		Config:  map[string]any{},
		Extra:   map[string]any{},
		byID:    make(map[int]*Node),
		links:   make(map[LinkID]*Link),
		factory: factory,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Factory returns the factory the graph instantiates nodes with.
func (g *Graph) Factory() Factory { return g.factory }

// LastNodeID returns the highest node id handed out so far.
func (g *Graph) LastNodeID() int { return g.lastNodeID }

// LastLinkID returns the highest link id handed out so far.
func (g *Graph) LastLinkID() int { return g.lastLinkID }

// Add attaches a detached node and assigns it the next node id.
func (g *Graph) Add(n *Node) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot add nil node")
	}
	if n.graph != nil {
		return errors.New(errors.ErrCodeInvalidInput, "node %d already belongs to a graph", n.ID)
	}
	g.lastNodeID++
	n.ID = g.lastNodeID
	g.attach(n)
	return nil
}

// CreateNode instantiates a node of the given type through the factory and
// adds it to the graph.
func (g *Graph) CreateNode(typ string) (*Node, error) {
	if g.factory == nil {
		return nil, errors.New(errors.ErrCodeMissingType, "graph has no node factory for type %s", typ)
	}
	n, err := g.factory.CreateNode(typ)
	if err != nil {
		return nil, err
	}
	if err := g.Add(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (g *Graph) attach(n *Node) {
	n.graph = g
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	g.invalidate()
	if h, ok := n.Behavior.(AddedHandler); ok {
		h.OnAdded(g)
	}
}

// Remove detaches a node after removing every link touching it. Removing a
// node that is not part of g is a no-op.
func (g *Graph) Remove(n *Node) {
	if n == nil || n.graph != g {
		return
	}
	for i := range n.Inputs {
		n.DisconnectInput(i)
	}
	for i := range n.Outputs {
		n.DisconnectOutput(i, nil)
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x == n })
	delete(g.byID, n.ID)
	n.graph = nil
	g.invalidate()
	g.logger.Debug("removed node", "id", n.ID, "type", n.Type)
	if h, ok := n.Behavior.(RemovedHandler); ok {
		h.OnRemoved()
	}
}

// RemoveLink removes a single link from both of its slots and the link
// table. Unknown ids are ignored.
func (g *Graph) RemoveLink(id LinkID) {
	if l := g.links[id]; l != nil {
		g.unlink(l)
	}
}

// unlink drops the link from the table and from both endpoint slots, then
// notifies the target and the origin.
func (g *Graph) unlink(l *Link) {
	delete(g.links, l.ID)
	origin := g.byID[l.OriginID]
	target := g.byID[l.TargetID]
	if origin != nil && l.OriginSlot >= 0 && l.OriginSlot < len(origin.Outputs) {
		origin.Outputs[l.OriginSlot].removeLink(l.ID)
	}
	if target != nil && l.TargetSlot >= 0 && l.TargetSlot < len(target.Inputs) {
		target.Inputs[l.TargetSlot].removeLink(l.ID)
	}
	g.invalidate()
	g.logger.Debug("removed link", "link", l.ID, "origin", l.OriginID, "target", l.TargetID)

	notifyConnections(target, SlotInput, l.TargetSlot, false, l)
	notifyConnections(origin, SlotOutput, l.OriginSlot, false, l)
}

func (g *Graph) invalidate() { g.order = nil }

// Link returns the link with the given id.
func (g *Graph) Link(id LinkID) (*Link, bool) {
	l, ok := g.links[id]
	return l, ok
}

// LookupLink returns the link with the given id or a NOT_FOUND error.
func (g *Graph) LookupLink(id LinkID) (*Link, error) {
	if l, ok := g.links[id]; ok {
		return l, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "link not found: %d", id)
}

// Links returns all links ordered by id.
func (g *Graph) Links() []*Link {
	links := slices.Collect(maps.Values(g.links))
	slices.SortFunc(links, func(a, b *Link) int { return int(a.ID) - int(b.ID) })
	return links
}

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Nodes returns the nodes in insertion order. The slice is a copy; the node
// pointers are shared with the graph.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id int) *Node { return g.byID[id] }

// FindNodesByType returns the nodes of a type in insertion order.
func (g *Graph) FindNodesByType(typ string) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// Clear removes every node and link and resets the id counters.
func (g *Graph) Clear() {
	for _, n := range g.nodes {
		n.graph = nil
		if h, ok := n.Behavior.(RemovedHandler); ok {
			h.OnRemoved()
		}
	}
	g.nodes = nil
	g.byID = make(map[int]*Node)
	g.links = make(map[LinkID]*Link)
	g.lastNodeID = 0
	g.lastLinkID = 0
	g.Groups = nil
	g.Config = map[string]any{}
	g.Extra = map[string]any{}
	g.invalidate()
}

// Validate checks that every link id referenced from a slot exists in the
// link table with matching endpoints, and that every link in the table is
// referenced exactly once by its origin output and once by its target input.
func (g *Graph) Validate() error {
	for _, l := range g.Links() {
		origin, target := g.byID[l.OriginID], g.byID[l.TargetID]
		if origin == nil || target == nil {
			return errors.New(errors.ErrCodeInternal, "link %d references a missing node", l.ID)
		}
		if l.OriginSlot < 0 || l.OriginSlot >= len(origin.Outputs) {
			return errors.New(errors.ErrCodeInternal, "link %d references missing output %d", l.ID, l.OriginSlot)
		}
		if l.TargetSlot < 0 || l.TargetSlot >= len(target.Inputs) {
			return errors.New(errors.ErrCodeInternal, "link %d references missing input %d", l.ID, l.TargetSlot)
		}
		if c := count(origin.Outputs[l.OriginSlot].Links, l.ID); c != 1 {
			return errors.New(errors.ErrCodeInternal, "link %d referenced %d times by its output", l.ID, c)
		}
		if c := count(target.Inputs[l.TargetSlot].Links, l.ID); c != 1 {
			return errors.New(errors.ErrCodeInternal, "link %d referenced %d times by its input", l.ID, c)
		}
	}
	for _, n := range g.nodes {
		for i, in := range n.Inputs {
			if in.Links != nil && len(in.Links) == 0 {
				return errors.New(errors.ErrCodeInternal, "node %d input %d has empty non-nil links", n.ID, i)
			}
			if !in.AllowMultiple && len(in.Links) > 1 {
				return errors.New(errors.ErrCodeInternal, "node %d input %d holds %d links", n.ID, i, len(in.Links))
			}
			for _, id := range in.Links {
				if l := g.links[id]; l == nil || l.TargetID != n.ID || l.TargetSlot != i {
					return errors.New(errors.ErrCodeInternal, "node %d input %d holds dangling link %d", n.ID, i, id)
				}
			}
		}
		for i, out := range n.Outputs {
			if out.Links == nil {
				return errors.New(errors.ErrCodeInternal, "node %d output %d has nil links", n.ID, i)
			}
			for _, id := range out.Links {
				if l := g.links[id]; l == nil || l.OriginID != n.ID || l.OriginSlot != i {
					return errors.New(errors.ErrCodeInternal, "node %d output %d holds dangling link %d", n.ID, i, id)
				}
			}
		}
	}
	return nil
}

func count(ids []LinkID, id LinkID) int {
	c := 0
	for _, x := range ids {
		if x == id {
			c++
		}
	}
	return c
}
