package graph

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/slotgraph/pkg/errors"
	"github.com/matzehuels/slotgraph/pkg/observability"
)

// CurrentVersion is the format version written by Serialize. Version 0.5
// replaced the single "link" field of inputs with a "links" array.
const CurrentVersion = 0.5

// Data is the portable form of a graph.
type Data struct {
	ID         string           `json:"id,omitempty"`
	LastNodeID int              `json:"last_node_id"`
	LastLinkID int              `json:"last_link_id"`
	Nodes      []NodeData       `json:"nodes"`
	Links      LinkList         `json:"links"`
	Groups     []map[string]any `json:"groups"`
	Config     map[string]any   `json:"config"`
	Extra      map[string]any   `json:"extra"`
	Version    float64          `json:"version"`
}

// NodeData is the portable form of a node.
type NodeData struct {
	ID         int            `json:"id"`
	Type       string         `json:"type"`
	Title      string         `json:"title,omitempty"`
	Pos        [2]float64     `json:"pos"`
	Size       [2]float64     `json:"size"`
	Flags      map[string]any `json:"flags"`
	Order      int            `json:"order"`
	Mode       Mode           `json:"mode"`
	Shape      any            `json:"shape,omitempty"` // enum number or custom name
	Properties map[string]any `json:"properties,omitempty"`
	Inputs     []InputData    `json:"inputs,omitempty"`
	Outputs    []OutputData   `json:"outputs,omitempty"`
}

// InputData is the portable form of an input slot. Link is the pre-0.5
// single link field; it is only read, never written.
type InputData struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Label         string   `json:"label,omitempty"`
	AllowMultiple bool     `json:"allow_multiple,omitempty"`
	Links         []LinkID `json:"links"`
	Link          *LinkID  `json:"link,omitempty"`
}

// OutputData is the portable form of an output slot.
type OutputData struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Label string   `json:"label,omitempty"`
	Links []LinkID `json:"links"`
}

// Serialize returns the portable form of the graph. Nodes keep insertion
// order and links are sorted by id.
func (g *Graph) Serialize() *Data {
	d := &Data{
		ID:         g.ID,
		LastNodeID: g.lastNodeID,
		LastLinkID: g.lastLinkID,
		Nodes:      make([]NodeData, len(g.nodes)),
		Links:      make(LinkList, 0, len(g.links)),
		Groups:     cloneGroups(g.Groups),
		Config:     cloneMap(g.Config),
		Extra:      cloneMap(g.Extra),
		Version:    CurrentVersion,
	}
	for i, n := range g.nodes {
		d.Nodes[i] = n.Serialize()
	}
	for _, l := range g.Links() {
		d.Links = append(d.Links, Link{
			ID:         l.ID,
			OriginID:   l.OriginID,
			OriginSlot: l.OriginSlot,
			TargetID:   l.TargetID,
			TargetSlot: l.TargetSlot,
			Type:       l.Type,
		})
	}
	return d
}

// Serialize returns the portable form of the node.
func (n *Node) Serialize() NodeData {
	nd := NodeData{
		ID:         n.ID,
		Type:       n.Type,
		Pos:        n.Pos,
		Size:       n.Size,
		Flags:      cloneMap(n.Flags),
		Order:      n.Order,
		Mode:       n.Mode,
		Properties: maps.Clone(n.Properties),
	}
	if n.Title != n.Type {
		nd.Title = n.Title
	}
	switch n.Shape {
	case ShapeUnset:
	case ShapeCustom:
		nd.Shape = n.CustomShape
	default:
		nd.Shape = int(n.Shape)
	}
	if len(n.Properties) == 0 {
		nd.Properties = nil
	}
	for _, in := range n.Inputs {
		nd.Inputs = append(nd.Inputs, InputData{
			Name:          in.Name,
			Type:          in.Type,
			Label:         in.Label,
			AllowMultiple: in.AllowMultiple,
			Links:         slices.Clone(in.Links),
		})
	}
	for _, out := range n.Outputs {
		links := slices.Clone(out.Links)
		if links == nil {
			links = []LinkID{}
		}
		nd.Outputs = append(nd.Outputs, OutputData{
			Name:  out.Name,
			Type:  out.Type,
			Label: out.Label,
			Links: links,
		})
	}
	return nd
}

// Configure replaces the graph's contents with data.
//
// The data is first normalized with [Migrate]. Every node is instantiated
// through the graph's factory; an unknown type fails with MISSING_TYPE naming
// the type, and the graph is left untouched. Links whose endpoints do not
// exist are dropped together with their slot references, and an input that
// allows one link keeps only the last one it lists, so the loaded graph
// always passes [Graph.Validate]. The caller's data is not modified.
func (g *Graph) Configure(data *Data) (err error) {
	start := time.Now()
	var report MigrationReport
	defer func() {
		observability.Graph().OnConfigure(len(g.nodes), len(g.links), report.Migrated(), time.Since(start), err)
	}()

	if data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot configure graph from nil data")
	}
	data, report = Migrate(data)
	if report.Migrated() > 0 {
		g.logger.Debug("migrated legacy graph data",
			"from", report.FromVersion,
			"inputs", report.LegacyInputs,
			"outputs", report.NullOutputs)
	}

	nodes := make([]*Node, 0, len(data.Nodes))
	byID := make(map[int]*Node, len(data.Nodes))
	maxNodeID := 0
	for _, nd := range data.Nodes {
		if nd.ID <= 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "node of type %s has invalid id %d", nd.Type, nd.ID)
		}
		if _, dup := byID[nd.ID]; dup {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate node id %d", nd.ID)
		}
		if g.factory == nil {
			return errors.New(errors.ErrCodeMissingType, "node type not registered: %s", nd.Type)
		}
		n, err := g.factory.CreateNode(nd.Type)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMissingType, err, "node type not registered: %s", nd.Type)
		}
		n.configure(nd)
		nodes = append(nodes, n)
		byID[n.ID] = n
		maxNodeID = max(maxNodeID, n.ID)
	}

	links := make(map[LinkID]*Link, len(data.Links))
	maxLinkID := 0
	for _, l := range data.Links {
		origin, target := byID[l.OriginID], byID[l.TargetID]
		if origin == nil || target == nil ||
			l.OriginSlot < 0 || l.OriginSlot >= len(origin.Outputs) ||
			l.TargetSlot < 0 || l.TargetSlot >= len(target.Inputs) {
			g.logger.Warn("dropping link with missing endpoint", "link", l.ID)
			continue
		}
		link := l
		link.Data = nil
		links[link.ID] = &link
		maxLinkID = max(maxLinkID, int(link.ID))
	}
	for _, n := range nodes {
		reconcileSlots(n, links)
	}
	trimSingleInputs(nodes, byID, links)
	restoreBackRefs(byID, links)

	g.Clear()
	if data.ID != "" {
		g.ID = data.ID
	}
	g.lastNodeID = max(data.LastNodeID, maxNodeID)
	g.lastLinkID = max(data.LastLinkID, maxLinkID)
	g.links = links
	g.Groups = cloneGroups(data.Groups)
	g.Config = cloneMap(data.Config)
	g.Extra = cloneMap(data.Extra)
	for _, n := range nodes {
		g.attach(n)
	}
	return nil
}

// configure applies serialized state on top of a freshly created node.
// Serialized slots replace declared ones by index; declared AllowMultiple
// flags survive when the data does not carry them.
func (n *Node) configure(nd NodeData) {
	n.ID = nd.ID
	if nd.Title != "" {
		n.Title = nd.Title
	}
	n.Pos = nd.Pos
	n.Size = nd.Size
	n.Order = nd.Order
	n.Mode = nd.Mode
	if nd.Flags != nil {
		n.Flags = cloneMap(nd.Flags)
	}
	if n.Properties == nil {
		n.Properties = map[string]any{}
	}
	maps.Copy(n.Properties, nd.Properties)
	switch v := nd.Shape.(type) {
	case string:
		n.SetShape(v)
	case float64:
		n.Shape, n.CustomShape = Shape(v), ""
	case int:
		n.Shape, n.CustomShape = Shape(v), ""
	}

	if nd.Inputs != nil {
		inputs := make([]*InputSlot, len(nd.Inputs))
		for i, in := range nd.Inputs {
			declaredMulti := i < len(n.Inputs) && n.Inputs[i].AllowMultiple
			inputs[i] = &InputSlot{
				Name:          in.Name,
				Type:          in.Type,
				Label:         in.Label,
				AllowMultiple: in.AllowMultiple || declaredMulti,
				Links:         slices.Clone(in.Links),
			}
		}
		n.Inputs = inputs
	}
	if nd.Outputs != nil {
		outputs := make([]*OutputSlot, len(nd.Outputs))
		for i, out := range nd.Outputs {
			links := slices.Clone(out.Links)
			if links == nil {
				links = []LinkID{}
			}
			outputs[i] = &OutputSlot{Name: out.Name, Type: out.Type, Label: out.Label, Links: links}
		}
		n.Outputs = outputs
	}
}

// reconcileSlots drops slot references to links that are missing from the
// table or that point elsewhere.
func reconcileSlots(n *Node, links map[LinkID]*Link) {
	for i, in := range n.Inputs {
		in.Links = slices.DeleteFunc(in.Links, func(id LinkID) bool {
			l := links[id]
			return l == nil || l.TargetID != n.ID || l.TargetSlot != i
		})
		if len(in.Links) == 0 {
			in.Links = nil
		}
	}
	for i, out := range n.Outputs {
		out.Links = slices.DeleteFunc(out.Links, func(id LinkID) bool {
			l := links[id]
			return l == nil || l.OriginID != n.ID || l.OriginSlot != i
		})
		if out.Links == nil {
			out.Links = []LinkID{}
		}
	}
}

// trimSingleInputs keeps only the last link of an input that does not allow
// multiple links, matching the replace behavior of [Node.Connect]. The other
// links leave the table and their origin outputs.
func trimSingleInputs(nodes []*Node, byID map[int]*Node, links map[LinkID]*Link) {
	for _, n := range nodes {
		for _, in := range n.Inputs {
			if in.AllowMultiple || len(in.Links) <= 1 {
				continue
			}
			last := len(in.Links) - 1
			for _, id := range in.Links[:last] {
				l := links[id]
				delete(links, id)
				byID[l.OriginID].Outputs[l.OriginSlot].removeLink(id)
			}
			in.Links = in.Links[last:]
		}
	}
}

// restoreBackRefs adds slot references that older files omitted, such as a
// null output link list next to a valid link. A link that would overfill a
// single-link input is dropped.
func restoreBackRefs(byID map[int]*Node, links map[LinkID]*Link) {
	ids := slices.Sorted(maps.Keys(links))
	for _, id := range ids {
		l := links[id]
		in := byID[l.TargetID].Inputs[l.TargetSlot]
		out := byID[l.OriginID].Outputs[l.OriginSlot]
		if !slices.Contains(in.Links, id) {
			if len(in.Links) > 0 && !in.AllowMultiple {
				delete(links, id)
				out.removeLink(id)
				continue
			}
			in.Links = append(in.Links, id)
		}
		if !slices.Contains(out.Links, id) {
			out.Links = append(out.Links, id)
		}
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(m)
}

func cloneGroups(groups []map[string]any) []map[string]any {
	out := make([]map[string]any, len(groups))
	for i, grp := range groups {
		out[i] = maps.Clone(grp)
	}
	return out
}
