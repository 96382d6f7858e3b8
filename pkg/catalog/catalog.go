// Package catalog loads node type declarations from TOML files.
//
// A catalog declares node types without Go code:
//
//	[[type]]
//	key = "math/sum"
//	title = "Sum"
//	shape = "box"
//	behavior = "sum"
//
//	  [[type.input]]
//	  name = "terms"
//	  type = "number"
//	  allow_multiple = true
//
//	  [[type.output]]
//	  name = "total"
//	  type = "number"
//
// Behaviors are chosen by name from a fixed set (see [Behaviors]); a type
// without a behavior is inert and never runs during a step.
package catalog

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slotgraph/pkg/errors"
	"github.com/matzehuels/slotgraph/pkg/graph"
	"github.com/matzehuels/slotgraph/pkg/registry"
)

// Catalog is a decoded catalog file.
type Catalog struct {
	Types []TypeSpec `toml:"type"`
}

// TypeSpec declares one node type.
type TypeSpec struct {
	Key        string         `toml:"key"`
	Name       string         `toml:"name"`
	Title      string         `toml:"title"`
	Shape      string         `toml:"shape"`
	Extensions []string       `toml:"extensions"`
	Behavior   string         `toml:"behavior"`
	Properties map[string]any `toml:"properties"`
	Inputs     []SlotSpec     `toml:"input"`
	Outputs    []SlotSpec     `toml:"output"`
}

// SlotSpec declares one slot. AllowMultiple only applies to inputs.
type SlotSpec struct {
	Name          string `toml:"name"`
	Type          string `toml:"type"`
	Label         string `toml:"label"`
	AllowMultiple bool   `toml:"allow_multiple"`
}

// Parse decodes a catalog. Unknown keys are rejected so typos such as
// "allow_multi" do not silently produce single-link inputs.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown catalog keys: %s", strings.Join(keys, ", "))
	}
	return &c, nil
}

// LoadFile reads and decodes a catalog file.
func LoadFile(path string) (*Catalog, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Blueprint builds the registry blueprint for a catalog entry.
func (s TypeSpec) Blueprint() (*registry.Blueprint, error) {
	var behavior func() any
	if s.Behavior != "" {
		var ok bool
		if behavior, ok = behaviors[s.Behavior]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown behavior %q for node type %s", s.Behavior, s.Key)
		}
	}
	inputs, outputs := s.Inputs, s.Outputs
	return &registry.Blueprint{
		Name:                s.Name,
		Title:               s.Title,
		Shape:               s.Shape,
		SupportedExtensions: s.Extensions,
		Properties:          maps.Clone(s.Properties),
		Behavior:            behavior,
		Init: func(n *graph.Node) {
			for _, in := range inputs {
				opts := []graph.SlotOption{graph.WithLabel(in.Label)}
				if in.AllowMultiple {
					opts = append(opts, graph.WithAllowMultiple())
				}
				n.AddInput(in.Name, in.Type, opts...)
			}
			for _, out := range outputs {
				n.AddOutput(out.Name, out.Type, graph.WithLabel(out.Label))
			}
		},
	}, nil
}

// Register registers every type of the catalog. It stops at the first
// failing type; types registered before it stay registered.
func (c *Catalog) Register(r *registry.Registry) error {
	for _, ts := range c.Types {
		bp, err := ts.Blueprint()
		if err != nil {
			return err
		}
		if _, err := r.Register(ts.Key, bp); err != nil {
			return fmt.Errorf("register %s: %w", ts.Key, err)
		}
	}
	return nil
}

// Load reads a catalog file and registers its types.
func Load(path string, r *registry.Registry) error {
	c, err := LoadFile(path)
	if err != nil {
		return err
	}
	return c.Register(r)
}
