package registry

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slotgraph/pkg/errors"
	"github.com/matzehuels/slotgraph/pkg/graph"
)

// Registry maps type keys to node types. It implements [graph.Factory].
//
// A Registry is not safe for concurrent mutation.
type Registry struct {
	types map[string]*NodeType
	index *index
	seq   int

	autoIndexSlotTypes bool
	onRegistered       func(*NodeType)
	onReplaced         func(old, nt *NodeType)
	logger             *log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for registration diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithAutoIndexSlotTypes enables the slot-type index. When off (the
// default) SlotInTypes and SlotOutTypes stay empty.
func WithAutoIndexSlotTypes(on bool) Option {
	return func(r *Registry) { r.autoIndexSlotTypes = on }
}

// WithOnTypeRegistered sets a hook fired when a new key is registered.
func WithOnTypeRegistered(fn func(nt *NodeType)) Option {
	return func(r *Registry) { r.onRegistered = fn }
}

// WithOnTypeReplaced sets a hook fired when a key is registered again.
func WithOnTypeReplaced(fn func(old, nt *NodeType)) Option {
	return func(r *Registry) { r.onReplaced = fn }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		types:  make(map[string]*NodeType),
		index:  newIndex(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces the node type stored under key.
//
// The blueprint must have an Init function (INVALID_TYPE otherwise) and the
// key must pass [errors.ValidateTypeKey] (INVALID_INPUT). Registering an
// existing key logs "replacing node type <key>", swaps the entry and fires
// the replaced hook; a new key fires the registered hook instead. A
// blueprint whose behavior still implements the deprecated OnPropertyChange
// hook is accepted with a warning.
func (r *Registry) Register(key string, bp *Blueprint) (*NodeType, error) {
	if bp == nil || bp.Init == nil {
		return nil, errors.New(errors.ErrCodeInvalidType, "cannot register a simple object as node type %s: blueprint has no Init", key)
	}
	if err := errors.ValidateTypeKey(key); err != nil {
		return nil, err
	}

	nt := &NodeType{
		Type:      key,
		Title:     titleFor(key, bp),
		Category:  categoryOf(key),
		Blueprint: bp,
	}
	r.seq++
	nt.seq = r.seq
	probe := r.instantiate(nt)
	for _, in := range probe.Inputs {
		nt.InputTypes = append(nt.InputTypes, in.Type)
	}
	for _, out := range probe.Outputs {
		nt.OutputTypes = append(nt.OutputTypes, out.Type)
	}
	if _, ok := probe.Behavior.(graph.LegacyPropertyChangeHandler); ok {
		r.logger.Warnf("node type %s has OnPropertyChange method, it must be called OnPropertyChanged", key)
	}

	old, replacing := r.types[key]
	if replacing {
		r.logger.Infof("replacing node type %s", key)
		r.index.remove(old, r.types)
	}
	r.types[key] = nt
	if r.autoIndexSlotTypes {
		r.index.addSlotTypes(nt)
	}
	r.index.addExtensions(nt)

	if replacing {
		if r.onReplaced != nil {
			r.onReplaced(old, nt)
		}
	} else if r.onRegistered != nil {
		r.onRegistered(nt)
	}
	return nt, nil
}

// Unregister removes the type stored under key.
func (r *Registry) Unregister(key string) error {
	nt, ok := r.types[key]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node type not found: %s", key)
	}
	r.remove(nt)
	return nil
}

// UnregisterBlueprint removes every type registered with bp. It matches by
// pointer, so nameless blueprints can be removed too.
func (r *Registry) UnregisterBlueprint(bp *Blueprint) error {
	if bp == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot unregister nil blueprint")
	}
	found := false
	for _, nt := range r.types {
		if nt.Blueprint == bp {
			r.remove(nt)
			found = true
		}
	}
	if !found {
		return errors.New(errors.ErrCodeNotFound, "node type not found for blueprint %q", bp.Name)
	}
	return nil
}

func (r *Registry) remove(nt *NodeType) {
	delete(r.types, nt.Type)
	r.index.remove(nt, r.types)
	r.logger.Debug("unregistered node type", "type", nt.Type)
}

// Lookup returns the type stored under key.
func (r *Registry) Lookup(key string) (*NodeType, bool) {
	nt, ok := r.types[key]
	return nt, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }

// Types returns all registered types sorted by key.
func (r *Registry) Types() []*NodeType {
	keys := slices.Sorted(maps.Keys(r.types))
	out := make([]*NodeType, len(keys))
	for i, k := range keys {
		out[i] = r.types[k]
	}
	return out
}

// Categories returns the distinct categories, sorted. The empty category
// appears when a type key has no "/".
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	for _, nt := range r.types {
		seen[nt.Category] = true
	}
	return slices.Sorted(maps.Keys(seen))
}

// TypesInCategory returns the types of one category sorted by key.
func (r *Registry) TypesInCategory(category string) []*NodeType {
	var out []*NodeType
	for _, nt := range r.Types() {
		if nt.Category == category {
			out = append(out, nt)
		}
	}
	return out
}

// Reset removes every type and clears the indices.
func (r *Registry) Reset() {
	r.types = make(map[string]*NodeType)
	r.index = newIndex()
}

// Create instantiates a detached node of the given type. The shape is
// resolved from the blueprint at call time.
func (r *Registry) Create(key string) (*graph.Node, error) {
	nt, ok := r.types[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node type not found: %s", key)
	}
	return r.instantiate(nt), nil
}

// CreateNode implements [graph.Factory].
func (r *Registry) CreateNode(typ string) (*graph.Node, error) {
	return r.Create(typ)
}

func (r *Registry) instantiate(nt *NodeType) *graph.Node {
	bp := nt.Blueprint
	n := graph.NewNode(nt.Type)
	n.Title = nt.Title
	maps.Copy(n.Properties, bp.Properties)
	if bp.Behavior != nil {
		n.UseBehavior(bp.Behavior)
	}
	bp.Init(n)
	if bp.Shape != "" {
		n.SetShape(bp.Shape)
	}
	return n
}

func titleFor(key string, bp *Blueprint) string {
	switch {
	case bp.Title != "":
		return bp.Title
	case bp.Name != "":
		return bp.Name
	}
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

func categoryOf(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[:i]
	}
	return ""
}
