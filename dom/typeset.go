package dom

import (
	"fmt"
	"sync"

	"github.com/delaneyj/retypeset/typeset"
)

// TypesetObserver adapts a MutationObserver to typeset.Observer.
type TypesetObserver struct {
	mo *MutationObserver

	mu sync.Mutex
	fn typeset.BatchFunc
}

func NewTypesetObserver(doc *Document) *TypesetObserver {
	o := &TypesetObserver{}
	o.mo = doc.NewMutationObserver(func(records []MutationRecord, _ *MutationObserver) {
		o.mu.Lock()
		fn := o.fn
		o.mu.Unlock()
		if fn != nil {
			fn(Mutations(records))
		}
	})
	return o
}

func (o *TypesetObserver) Observe(root typeset.Node, cfg typeset.ObserveConfig, fn typeset.BatchFunc) error {
	n, ok := root.(*Node)
	if !ok || n == nil {
		return fmt.Errorf("dom: cannot observe %T", root)
	}
	o.mu.Lock()
	o.fn = fn
	o.mu.Unlock()
	return o.mo.Observe(n, ObserveOptions(cfg))
}

func (o *TypesetObserver) Disconnect() {
	o.mo.Disconnect()
}

// Mutations converts records to scheduler mutations. A child-list record
// carrying both removals and additions becomes a removal followed by an
// addition.
func Mutations(records []MutationRecord) []typeset.Mutation {
	out := make([]typeset.Mutation, 0, len(records))
	for _, r := range records {
		switch r.Kind {
		case ChildList:
			if len(r.Removed) > 0 {
				out = append(out, typeset.Mutation{Kind: typeset.NodesRemoved, Target: r.Target, Removed: nodes(r.Removed)})
			}
			if len(r.Added) > 0 {
				out = append(out, typeset.Mutation{Kind: typeset.NodesAdded, Target: r.Target, Added: nodes(r.Added)})
			}
		case CharacterData:
			out = append(out, typeset.Mutation{Kind: typeset.TextChanged, Target: r.Target})
		case Attributes:
			out = append(out, typeset.Mutation{Kind: typeset.AttributesChanged, Target: r.Target})
		default:
			out = append(out, typeset.Mutation{Kind: typeset.MutationKind(0), Target: r.Target})
		}
	}
	return out
}

func nodes(in []*Node) []typeset.Node {
	out := make([]typeset.Node, len(in))
	for i, n := range in {
		out[i] = n
	}
	return out
}
