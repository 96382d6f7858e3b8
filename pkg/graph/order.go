package graph

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/slotgraph/pkg/errors"
	"github.com/matzehuels/slotgraph/pkg/observability"
)

// ComputeExecutionOrder returns every node exactly once so that, for each
// link, the origin precedes the target.
//
// # Algorithm
//
// ComputeExecutionOrder is Kahn's algorithm:
//  1. Count the in-degree of each node as the number of links held by its
//     inputs. Two links into one AllowMultiple input count as two.
//  2. Mark every zero in-degree node ready.
//  3. Emit the ready node that was inserted first, then decrement the
//     in-degree of every link target fed by its outputs; targets reaching
//     zero become ready.
//  4. Repeat until nothing is ready.
//
// # Cycles
//
// Nodes on or behind a cycle never become ready. They are appended after all
// resolvable nodes, in insertion order, so the result always has NodeCount
// entries.
//
// Time complexity is O((V + E) log V).
func (g *Graph) ComputeExecutionOrder() []*Node {
	start := time.Now()
	index := make(map[int]int, len(g.nodes))
	for i, n := range g.nodes {
		index[n.ID] = i
	}

	inDegree := make([]int, len(g.nodes))
	for i, n := range g.nodes {
		for _, in := range n.Inputs {
			for _, id := range in.Links {
				if l := g.links[id]; l != nil && g.byID[l.OriginID] != nil {
					inDegree[i]++
				}
			}
		}
	}

	ready := &indexHeap{}
	for i, d := range inDegree {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]*Node, 0, len(g.nodes))
	emitted := make([]bool, len(g.nodes))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		n := g.nodes[i]
		order = append(order, n)
		emitted[i] = true
		for _, out := range n.Outputs {
			for _, id := range out.Links {
				l := g.links[id]
				if l == nil {
					continue
				}
				t, ok := index[l.TargetID]
				if !ok || emitted[t] {
					continue
				}
				inDegree[t]--
				if inDegree[t] == 0 {
					heap.Push(ready, t)
				}
			}
		}
	}

	unresolved := 0
	for i, n := range g.nodes {
		if !emitted[i] {
			order = append(order, n)
			unresolved++
		}
	}
	if unresolved > 0 {
		g.logger.Debug("execution order has unresolved nodes", "count", unresolved)
	}
	observability.Graph().OnExecutionOrder(len(order), unresolved, time.Since(start))
	return order
}

// UpdateExecutionOrder computes the execution order, stores it for
// [Graph.RunStep] and writes each node's position into Node.Order.
func (g *Graph) UpdateExecutionOrder() []*Node {
	order := g.ComputeExecutionOrder()
	for i, n := range order {
		n.Order = i
	}
	g.order = order
	return order
}

// SetExecutionOrder installs a precomputed order, typically one restored
// from a cache. The order must name every node of g exactly once.
func (g *Graph) SetExecutionOrder(ids []int) ([]*Node, error) {
	if len(ids) != len(g.nodes) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "order has %d nodes, graph has %d", len(ids), len(g.nodes))
	}
	order := make([]*Node, len(ids))
	seen := make(map[int]bool, len(ids))
	for i, id := range ids {
		n := g.byID[id]
		if n == nil || seen[id] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "order entry %d: node %d is unknown or repeated", i, id)
		}
		seen[id] = true
		order[i] = n
	}
	for i, n := range order {
		n.Order = i
	}
	g.order = order
	return order, nil
}

// RunStep executes every ModeAlways node whose behavior implements
// [Executor], in execution order. It stops at the first error or when ctx is
// cancelled between two nodes.
func (g *Graph) RunStep(ctx context.Context) (err error) {
	start := time.Now()
	executed := 0
	defer func() {
		observability.Graph().OnStep(ctx, executed, time.Since(start), err)
	}()

	order := g.order
	if order == nil {
		order = g.UpdateExecutionOrder()
	}
	for _, n := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.Mode != ModeAlways {
			continue
		}
		ex, ok := n.Behavior.(Executor)
		if !ok {
			continue
		}
		if err := ex.OnExecute(ctx, n); err != nil {
			return fmt.Errorf("execute node %d (%s): %w", n.ID, n.Type, err)
		}
		executed++
	}
	return nil
}

// indexHeap is a min-heap of insertion indices.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
