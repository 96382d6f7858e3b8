package registry

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/slotgraph/pkg/graph"
)

// index holds the slot-type and file-extension lookups derived from the
// registered types.
type index struct {
	slotIn  map[string][]string // slot type tag -> type keys accepting it
	slotOut map[string][]string // slot type tag -> type keys producing it
	byExt   map[string]string   // normalized extension -> type key
}

func newIndex() *index {
	return &index{
		slotIn:  make(map[string][]string),
		slotOut: make(map[string][]string),
		byExt:   make(map[string]string),
	}
}

// slotTags splits a slot type into its index tags. "a,b" yields both tags
// and an empty type is indexed under the wildcard.
func slotTags(typ string) []string {
	if typ == "" {
		return []string{graph.AnyType}
	}
	tags := strings.Split(typ, ",")
	for i, t := range tags {
		if t == "" {
			tags[i] = graph.AnyType
		}
	}
	return tags
}

func addKey(m map[string][]string, tag, key string) {
	if !slices.Contains(m[tag], key) {
		m[tag] = append(m[tag], key)
	}
}

func (ix *index) addSlotTypes(nt *NodeType) {
	for _, typ := range nt.InputTypes {
		for _, tag := range slotTags(typ) {
			addKey(ix.slotIn, tag, nt.Type)
		}
	}
	for _, typ := range nt.OutputTypes {
		for _, tag := range slotTags(typ) {
			addKey(ix.slotOut, tag, nt.Type)
		}
	}
}

// normalizeExt lower-cases ext and strips one leading ".".
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func (ix *index) addExtensions(nt *NodeType) {
	for _, ext := range nt.Blueprint.SupportedExtensions {
		if ext = normalizeExt(ext); ext != "" {
			ix.byExt[ext] = nt.Type
		}
	}
}

// remove drops nt from every index. An extension owned by nt passes to the
// most recently registered type in types, other than nt, that declares it.
func (ix *index) remove(nt *NodeType, types map[string]*NodeType) {
	for _, m := range []map[string][]string{ix.slotIn, ix.slotOut} {
		for tag, keys := range m {
			keys = slices.DeleteFunc(keys, func(k string) bool { return k == nt.Type })
			if len(keys) == 0 {
				delete(m, tag)
			} else {
				m[tag] = keys
			}
		}
	}
	for ext, key := range ix.byExt {
		if key != nt.Type {
			continue
		}
		delete(ix.byExt, ext)
		var owner *NodeType
		for _, other := range types {
			if other == nt || (owner != nil && other.seq < owner.seq) {
				continue
			}
			if slices.ContainsFunc(other.Blueprint.SupportedExtensions, func(e string) bool { return normalizeExt(e) == ext }) {
				owner = other
			}
		}
		if owner != nil {
			ix.byExt[ext] = owner.Type
		}
	}
}

// SlotInTypes returns the keys of types with an input accepting tag, in
// registration order. Empty unless slot-type indexing is on.
func (r *Registry) SlotInTypes(tag string) []string {
	return slices.Clone(r.index.slotIn[tag])
}

// SlotOutTypes returns the keys of types with an output producing tag, in
// registration order. Empty unless slot-type indexing is on.
func (r *Registry) SlotOutTypes(tag string) []string {
	return slices.Clone(r.index.slotOut[tag])
}

// SlotTypesIn returns every indexed input tag, lower-cased and sorted.
func (r *Registry) SlotTypesIn() []string { return sortedTags(r.index.slotIn) }

// SlotTypesOut returns every indexed output tag, lower-cased and sorted.
func (r *Registry) SlotTypesOut() []string { return sortedTags(r.index.slotOut) }

func sortedTags(m map[string][]string) []string {
	var tags []string
	for tag := range m {
		tag = strings.ToLower(tag)
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

// TypeForExtension returns the type registered last for a file extension.
// The lookup is case-insensitive and ignores a leading ".".
func (r *Registry) TypeForExtension(ext string) (*NodeType, bool) {
	key, ok := r.index.byExt[normalizeExt(ext)]
	if !ok {
		return nil, false
	}
	return r.Lookup(key)
}

// FileExtensions returns the indexed extensions mapped to type keys.
func (r *Registry) FileExtensions() map[string]string {
	return maps.Clone(r.index.byExt)
}
