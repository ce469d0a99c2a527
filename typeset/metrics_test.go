package typeset_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/retypeset/typeset"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCountCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := typeset.NewMetrics(reg, "test")
	r := &fakeRenderer{}
	s, obs, _, root := setup(t, r, typeset.WithMetrics(m))

	a, b, gone := newNode("a"), newNode("b"), newNode("gone")
	gone.detach()
	obs.deliver(added(root, a, b, gone), textChanged(a), removed(root, gone))
	s.Wait()

	r.mu.Lock()
	r.err = errors.New("boom")
	r.mu.Unlock()
	obs.deliver(typeset.Mutation{Kind: typeset.AttributesChanged, Target: a}, textChanged(b))
	s.Wait()

	obs.deliver(removed(root, gone))
	s.Wait()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Batches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("NodesAdded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("TextChanged")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("NodesRemoved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleNodes))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Invalidated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("error")))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	r := &fakeRenderer{}
	s, obs, _, root := setup(t, r, typeset.WithMetrics(nil))

	obs.deliver(added(root, newNode("a")))
	s.Wait()

	assert.Equal(t, []string{"render:a"}, r.renders())
}
