package typeset_test

import (
	"context"
	"strings"
	"sync"

	"github.com/delaneyj/retypeset/typeset"
)

type fakeNode struct {
	name string

	mu        sync.Mutex
	connected bool
}

func newNode(name string) *fakeNode {
	return &fakeNode{name: name, connected: true}
}

func (n *fakeNode) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.connected
}

func (n *fakeNode) detach() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connected = false
}

func names(nodes []typeset.Node) string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.(*fakeNode).name
	}
	return strings.Join(out, ",")
}

type fakeObserver struct {
	mu          sync.Mutex
	fn          typeset.BatchFunc
	root        typeset.Node
	cfg         typeset.ObserveConfig
	observing   bool
	observes    int
	disconnects int
}

func (o *fakeObserver) Observe(root typeset.Node, cfg typeset.ObserveConfig, fn typeset.BatchFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.root, o.cfg, o.fn = root, cfg, fn
	o.observing = true
	o.observes++
	return nil
}

func (o *fakeObserver) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observing = false
	o.disconnects++
}

// deliver hands batch to the callback the way a real observer would: only
// while observing. It reports whether the batch was delivered.
func (o *fakeObserver) deliver(batch ...typeset.Mutation) bool {
	o.mu.Lock()
	fn, ok := o.fn, o.observing
	o.mu.Unlock()
	if !ok {
		return false
	}
	fn(batch)
	return true
}

func (o *fakeObserver) counts() (observes, disconnects int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.observes, o.disconnects
}

type fakeRenderer struct {
	mu     sync.Mutex
	events []string
	err    error
	panics any
	gate   chan struct{}
}

func (r *fakeRenderer) Invalidate(nodes []typeset.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "invalidate:"+names(nodes))
}

func (r *fakeRenderer) Render(ctx context.Context, nodes []typeset.Node) error {
	r.mu.Lock()
	r.events = append(r.events, "render:"+names(nodes))
	gate, err, p := r.gate, r.err, r.panics
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if p != nil {
		panic(p)
	}
	return err
}

func (r *fakeRenderer) log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *fakeRenderer) renders() []string {
	var out []string
	for _, e := range r.log() {
		if strings.HasPrefix(e, "render:") {
			out = append(out, e)
		}
	}
	return out
}

type diagnostics struct {
	mu   sync.Mutex
	errs []error
}

func (d *diagnostics) onError(_ *typeset.Scheduler, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs = append(d.errs, err)
}

func (d *diagnostics) all() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]error(nil), d.errs...)
}

func added(parent typeset.Node, nodes ...typeset.Node) typeset.Mutation {
	return typeset.Mutation{Kind: typeset.NodesAdded, Target: parent, Added: nodes}
}

func removed(parent typeset.Node, nodes ...typeset.Node) typeset.Mutation {
	return typeset.Mutation{Kind: typeset.NodesRemoved, Target: parent, Removed: nodes}
}

func textChanged(n typeset.Node) typeset.Mutation {
	return typeset.Mutation{Kind: typeset.TextChanged, Target: n}
}
