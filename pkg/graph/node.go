package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/slotgraph/pkg/errors"
)

// Node is a vertex of a [Graph] with ordered input and output slots.
//
// A node created with [NewNode] has ID 0 and no graph; it can declare slots
// but cannot take part in links until [Graph.Add] attaches it.
type Node struct {
	ID    int
	Type  string
	Title string

	Inputs  []*InputSlot
	Outputs []*OutputSlot

	Pos        [2]float64
	Size       [2]float64
	Flags      map[string]any
	Order      int
	Mode       Mode
	Properties map[string]any

	Shape       Shape
	CustomShape string // raw shape name when Shape is ShapeCustom

	// Behavior holds the node's callbacks. The engine only calls the
	// capability interfaces it implements.
	Behavior any

	newBehavior func() any
	graph       *Graph
}

// NewNode creates a detached node of the given type.
func NewNode(typ string) *Node {
	return &Node{
		Type:       typ,
		Title:      typ,
		Flags:      map[string]any{},
		Properties: map[string]any{},
	}
}

// Graph returns the graph the node belongs to, or nil.
func (n *Node) Graph() *Graph { return n.graph }

// UseBehavior installs a behavior constructor. The node gets a fresh behavior
// immediately and every [Node.Clone] gets its own instance.
func (n *Node) UseBehavior(newBehavior func() any) {
	n.newBehavior = newBehavior
	if newBehavior != nil {
		n.Behavior = newBehavior()
	}
}

// SetShape resolves and stores a shape name. See [ResolveShape].
func (n *Node) SetShape(name string) {
	n.Shape, n.CustomShape = ResolveShape(name)
}

// AddInput appends an input slot and returns it.
func (n *Node) AddInput(name, typ string, opts ...SlotOption) *InputSlot {
	o := applySlotOptions(opts)
	in := &InputSlot{Name: name, Type: typ, Label: o.label, AllowMultiple: o.allowMultiple}
	n.Inputs = append(n.Inputs, in)
	return in
}

// AddOutput appends an output slot and returns it.
func (n *Node) AddOutput(name, typ string, opts ...SlotOption) *OutputSlot {
	o := applySlotOptions(opts)
	out := &OutputSlot{Name: name, Type: typ, Label: o.label, Links: []LinkID{}}
	n.Outputs = append(n.Outputs, out)
	return out
}

// RemoveInput disconnects and removes an input slot. Links into later inputs
// are re-addressed to their new index.
func (n *Node) RemoveInput(slot int) error {
	if slot < 0 || slot >= len(n.Inputs) {
		return errors.New(errors.ErrCodeInvalidSlot, "input slot %d out of range on node %d", slot, n.ID)
	}
	if n.graph != nil {
		n.DisconnectInput(slot)
	}
	n.Inputs = slices.Delete(n.Inputs, slot, slot+1)
	if n.graph == nil {
		return nil
	}
	for i := slot; i < len(n.Inputs); i++ {
		for _, id := range n.Inputs[i].Links {
			if l := n.graph.links[id]; l != nil {
				l.TargetSlot--
			}
		}
	}
	n.graph.invalidate()
	return nil
}

// RemoveOutput disconnects and removes an output slot. Links from later
// outputs are re-addressed to their new index.
func (n *Node) RemoveOutput(slot int) error {
	if slot < 0 || slot >= len(n.Outputs) {
		return errors.New(errors.ErrCodeInvalidSlot, "output slot %d out of range on node %d", slot, n.ID)
	}
	if n.graph != nil {
		n.DisconnectOutput(slot, nil)
	}
	n.Outputs = slices.Delete(n.Outputs, slot, slot+1)
	if n.graph == nil {
		return nil
	}
	for i := slot; i < len(n.Outputs); i++ {
		for _, id := range n.Outputs[i].Links {
			if l := n.graph.links[id]; l != nil {
				l.OriginSlot--
			}
		}
	}
	n.graph.invalidate()
	return nil
}

// FindInputSlot returns the index of the input with the given name, or -1.
func (n *Node) FindInputSlot(name string) int {
	return slices.IndexFunc(n.Inputs, func(s *InputSlot) bool { return s.Name == name })
}

// FindOutputSlot returns the index of the output with the given name, or -1.
func (n *Node) FindOutputSlot(name string) int {
	return slices.IndexFunc(n.Outputs, func(s *OutputSlot) bool { return s.Name == name })
}

// FindInputSlotFree returns the first input that can take a new link: one
// with no links, or any input with AllowMultiple set. Returns -1 if none.
func (n *Node) FindInputSlotFree() int {
	return slices.IndexFunc(n.Inputs, func(s *InputSlot) bool { return s.AllowMultiple || len(s.Links) == 0 })
}

// FindOutputSlotFree returns the first output without links, or -1.
func (n *Node) FindOutputSlotFree() int {
	return slices.IndexFunc(n.Outputs, func(s *OutputSlot) bool { return len(s.Links) == 0 })
}

// IsInputConnected reports whether the input at slot holds any link.
func (n *Node) IsInputConnected(slot int) bool {
	return slot >= 0 && slot < len(n.Inputs) && n.Inputs[slot].IsConnected()
}

// IsOutputConnected reports whether the output at slot feeds any link.
func (n *Node) IsOutputConnected(slot int) bool {
	return slot >= 0 && slot < len(n.Outputs) && n.Outputs[slot].IsConnected()
}

// GetInputLinksArray returns the links of an input in connection order.
func (n *Node) GetInputLinksArray(slot int) []*Link {
	if n.graph == nil || slot < 0 || slot >= len(n.Inputs) {
		return nil
	}
	links := make([]*Link, 0, len(n.Inputs[slot].Links))
	for _, id := range n.Inputs[slot].Links {
		if l := n.graph.links[id]; l != nil {
			links = append(links, l)
		}
	}
	return links
}

// GetInputLink returns the first link of an input, or nil.
func (n *Node) GetInputLink(slot int) *Link {
	if links := n.GetInputLinksArray(slot); len(links) > 0 {
		return links[0]
	}
	return nil
}

// GetInputNodes returns the origin nodes feeding an input, in connection order.
func (n *Node) GetInputNodes(slot int) []*Node {
	links := n.GetInputLinksArray(slot)
	nodes := make([]*Node, 0, len(links))
	for _, l := range links {
		if origin := n.graph.byID[l.OriginID]; origin != nil {
			nodes = append(nodes, origin)
		}
	}
	return nodes
}

// GetInputNode returns the first-connected origin node of an input, or nil.
func (n *Node) GetInputNode(slot int) *Node {
	if nodes := n.GetInputNodes(slot); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// GetOutputNodes returns the target nodes fed by an output, in link order.
func (n *Node) GetOutputNodes(slot int) []*Node {
	if n.graph == nil || slot < 0 || slot >= len(n.Outputs) {
		return nil
	}
	var nodes []*Node
	for _, id := range n.Outputs[slot].Links {
		if l := n.graph.links[id]; l != nil {
			if target := n.graph.byID[l.TargetID]; target != nil {
				nodes = append(nodes, target)
			}
		}
	}
	return nodes
}

// SetOutputData stores a value on an output and on every link leaving it.
func (n *Node) SetOutputData(slot int, v any) {
	if slot < 0 || slot >= len(n.Outputs) {
		return
	}
	out := n.Outputs[slot]
	out.data = v
	if n.graph == nil {
		return
	}
	for _, id := range out.Links {
		if l := n.graph.links[id]; l != nil {
			l.Data = v
		}
	}
}

// GetInputData returns the value carried by the first link of an input.
func (n *Node) GetInputData(slot int) (any, bool) {
	l := n.GetInputLink(slot)
	if l == nil {
		return nil, false
	}
	return l.Data, true
}

// GetInputDataAll returns the values of every link of an input, in
// connection order.
func (n *Node) GetInputDataAll(slot int) []any {
	links := n.GetInputLinksArray(slot)
	values := make([]any, len(links))
	for i, l := range links {
		values[i] = l.Data
	}
	return values
}

// SetProperty sets a property and notifies a [PropertyChangedHandler]. The
// change is reverted, and false returned, when the handler rejects it.
func (n *Node) SetProperty(name string, value any) bool {
	if n.Properties == nil {
		n.Properties = map[string]any{}
	}
	prev, had := n.Properties[name]
	n.Properties[name] = value
	h, ok := n.Behavior.(PropertyChangedHandler)
	if !ok || h.OnPropertyChanged(name, value, prev) {
		return true
	}
	if had {
		n.Properties[name] = prev
	} else {
		delete(n.Properties, name)
	}
	return false
}

// Clone returns a detached copy with the same slot declarations and no
// connections: inputs have nil links and outputs have empty links.
func (n *Node) Clone() *Node {
	c := &Node{
		Type:        n.Type,
		Title:       n.Title,
		Pos:         n.Pos,
		Size:        n.Size,
		Mode:        n.Mode,
		Flags:       maps.Clone(n.Flags),
		Properties:  maps.Clone(n.Properties),
		Shape:       n.Shape,
		CustomShape: n.CustomShape,
		Inputs:      make([]*InputSlot, len(n.Inputs)),
		Outputs:     make([]*OutputSlot, len(n.Outputs)),
	}
	if c.Flags == nil {
		c.Flags = map[string]any{}
	}
	if c.Properties == nil {
		c.Properties = map[string]any{}
	}
	for i, in := range n.Inputs {
		c.Inputs[i] = in.clone()
	}
	for i, out := range n.Outputs {
		c.Outputs[i] = out.clone()
	}
	if n.newBehavior != nil {
		c.UseBehavior(n.newBehavior)
	} else {
		c.Behavior = n.Behavior
	}
	return c
}
