package graph

import (
	"slices"

	"github.com/matzehuels/slotgraph/pkg/errors"
)

// Connect links output slot of n to input targetSlot of target and returns
// the new link.
//
// Without AllowMultiple on the target input any existing link there is
// removed first. With AllowMultiple a second link from the same origin
// output to the same input fails with DUPLICATE_LINK. Both nodes must belong
// to the same graph (DISCONNECTED otherwise) and the slot types must be
// compatible (TYPE_MISMATCH). A failed connect leaves the graph unchanged.
func (n *Node) Connect(slot int, target *Node, targetSlot int) (*Link, error) {
	g := n.graph
	if g == nil {
		return nil, errors.New(errors.ErrCodeDisconnected, "node %q is not attached to a graph", n.Type)
	}
	if target == nil || target.graph != g {
		return nil, errors.New(errors.ErrCodeDisconnected, "target node is not attached to the graph of node %d", n.ID)
	}
	if slot < 0 || slot >= len(n.Outputs) {
		return nil, errors.New(errors.ErrCodeInvalidSlot, "output slot %d out of range on node %d", slot, n.ID)
	}
	if targetSlot < 0 || targetSlot >= len(target.Inputs) {
		return nil, errors.New(errors.ErrCodeInvalidSlot, "input slot %d out of range on node %d", targetSlot, target.ID)
	}

	output := n.Outputs[slot]
	input := target.Inputs[targetSlot]
	if !TypesCompatible(output.Type, input.Type) {
		return nil, errors.New(errors.ErrCodeTypeMismatch, "cannot connect %q output to %q input", output.Type, input.Type)
	}

	if input.AllowMultiple {
		for _, id := range input.Links {
			if l := g.links[id]; l != nil && l.OriginID == n.ID && l.OriginSlot == slot {
				return nil, errors.New(errors.ErrCodeDuplicateLink,
					"node %d output %d is already linked to node %d input %d", n.ID, slot, target.ID, targetSlot)
			}
		}
	}

	if v, ok := target.Behavior.(InputConnectValidator); ok && !v.OnConnectInput(targetSlot, output.Type, n, slot) {
		return nil, errors.New(errors.ErrCodeRejected, "node %d rejected connection on input %d", target.ID, targetSlot)
	}

	if !input.AllowMultiple && len(input.Links) > 0 {
		target.DisconnectInput(targetSlot)
	}

	g.lastLinkID++
	link := &Link{
		ID:         LinkID(g.lastLinkID),
		OriginID:   n.ID,
		OriginSlot: slot,
		TargetID:   target.ID,
		TargetSlot: targetSlot,
		Type:       input.Type,
	}
	g.links[link.ID] = link
	output.Links = append(output.Links, link.ID)
	input.Links = append(input.Links, link.ID)
	g.invalidate()
	g.logger.Debug("connected", "link", link.ID, "origin", n.ID, "target", target.ID)

	notifyConnections(n, SlotOutput, slot, true, link)
	notifyConnections(target, SlotInput, targetSlot, true, link)
	return link, nil
}

// ConnectByType links output slot to the first input of target whose type is
// compatible with typ, preferring inputs that can still take a link.
func (n *Node) ConnectByType(slot int, target *Node, typ string) (*Link, error) {
	if target == nil {
		return nil, errors.New(errors.ErrCodeDisconnected, "target node is nil")
	}
	compatible := func(s *InputSlot) bool { return TypesCompatible(typ, s.Type) }
	idx := slices.IndexFunc(target.Inputs, func(s *InputSlot) bool {
		return compatible(s) && (s.AllowMultiple || len(s.Links) == 0)
	})
	if idx < 0 {
		idx = slices.IndexFunc(target.Inputs, compatible)
	}
	if idx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidSlot, "node %d has no input of type %q", target.ID, typ)
	}
	return n.Connect(slot, target, idx)
}

// DisconnectOutput removes the links leaving an output. When target is
// non-nil only links into that node are removed. Disconnecting an unconnected
// output is a no-op.
func (n *Node) DisconnectOutput(slot int, target *Node) error {
	if n.graph == nil {
		return errors.New(errors.ErrCodeDisconnected, "node %q is not attached to a graph", n.Type)
	}
	if slot < 0 || slot >= len(n.Outputs) {
		return errors.New(errors.ErrCodeInvalidSlot, "output slot %d out of range on node %d", slot, n.ID)
	}
	g := n.graph
	out := n.Outputs[slot]
	for _, id := range slices.Clone(out.Links) {
		l := g.links[id]
		if l == nil {
			out.removeLink(id)
			continue
		}
		if target != nil && l.TargetID != target.ID {
			continue
		}
		g.unlink(l)
	}
	return nil
}

// DisconnectInput removes every link into an input and leaves its Links nil.
// Disconnecting an unconnected input is a no-op.
func (n *Node) DisconnectInput(slot int) error {
	if n.graph == nil {
		return errors.New(errors.ErrCodeDisconnected, "node %q is not attached to a graph", n.Type)
	}
	if slot < 0 || slot >= len(n.Inputs) {
		return errors.New(errors.ErrCodeInvalidSlot, "input slot %d out of range on node %d", slot, n.ID)
	}
	g := n.graph
	in := n.Inputs[slot]
	for _, id := range slices.Clone(in.Links) {
		if l := g.links[id]; l != nil {
			g.unlink(l)
		}
	}
	in.Links = nil
	return nil
}
