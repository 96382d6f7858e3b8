package catalog

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/slotgraph/pkg/graph"
)

// behaviors maps catalog behavior names to constructors.
var behaviors = map[string]func() any{
	"const":       func() any { return constant{} },
	"sum":         func() any { return &reducer{op: "sum", fold: func(a, b float64) float64 { return a + b }} },
	"product":     func() any { return &reducer{op: "product", seed: 1, fold: func(a, b float64) float64 { return a * b }} },
	"passthrough": func() any { return passthrough{} },
}

// Behaviors returns the behavior names a catalog may reference, sorted.
func Behaviors() []string {
	return slices.Sorted(maps.Keys(behaviors))
}

// constant writes its "value" property to every output.
type constant struct{}

func (constant) OnExecute(_ context.Context, n *graph.Node) error {
	v := n.Properties["value"]
	for i := range n.Outputs {
		n.SetOutputData(i, v)
	}
	return nil
}

// reducer folds every numeric value arriving on any input and writes the
// result to output 0. Unconnected inputs contribute nothing.
type reducer struct {
	op   string
	seed float64
	fold func(acc, v float64) float64
}

func (r *reducer) OnExecute(_ context.Context, n *graph.Node) error {
	acc := r.seed
	for i := range n.Inputs {
		for _, v := range n.GetInputDataAll(i) {
			if v == nil {
				continue
			}
			f, err := toFloat(v)
			if err != nil {
				return fmt.Errorf("%s input %d: %w", r.op, i, err)
			}
			acc = r.fold(acc, f)
		}
	}
	if len(n.Outputs) > 0 {
		n.SetOutputData(0, acc)
	}
	return nil
}

// passthrough copies input i to output i.
type passthrough struct{}

func (passthrough) OnExecute(_ context.Context, n *graph.Node) error {
	for i := range min(len(n.Inputs), len(n.Outputs)) {
		v, _ := n.GetInputData(i)
		n.SetOutputData(i, v)
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not a number", v, v)
	}
}
