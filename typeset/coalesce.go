package typeset

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// batchResult is what one pass over a change batch produced.
type batchResult struct {
	nodes       []Node
	mutations   map[MutationKind]int
	invalidated int
	stale       int
	errs        []error
}

// coalesce reduces a batch to the deduplicated, still-connected nodes that
// need a render. Removed and text-changed nodes are invalidated as they are
// met, so a node removed and re-added later in the batch never renders from
// a stale cache.
func coalesce(batch []Mutation, invalidate func([]Node)) batchResult {
	res := batchResult{mutations: map[MutationKind]int{}}

	dirty := mapset.NewThreadUnsafeSet[Node]()
	invalidated := mapset.NewThreadUnsafeSet[Node]()
	var order []Node

	invalidateOnce := func(nodes []Node) {
		fresh := make([]Node, 0, len(nodes))
		for _, n := range nodes {
			if n != nil && invalidated.Add(n) {
				fresh = append(fresh, n)
			}
		}
		if len(fresh) == 0 {
			return
		}
		res.invalidated += len(fresh)
		invalidate(fresh)
	}
	enqueue := func(n Node) {
		if n != nil && dirty.Add(n) {
			order = append(order, n)
		}
	}

	for i, m := range batch {
		res.mutations[m.Kind]++
		switch m.Kind {
		case NodesRemoved:
			invalidateOnce(m.Removed)
		case NodesAdded:
			for _, n := range m.Added {
				enqueue(n)
			}
		case TextChanged:
			if m.Target != nil {
				invalidateOnce([]Node{m.Target})
			}
			enqueue(m.Target)
		default:
			res.errs = append(res.errs, fmt.Errorf("%w %s at batch index %d", ErrUnknownMutation, m.Kind, i))
		}
	}

	res.nodes = make([]Node, 0, len(order))
	for _, n := range order {
		if !n.IsConnected() {
			res.stale++
			continue
		}
		res.nodes = append(res.nodes, n)
	}
	return res
}
