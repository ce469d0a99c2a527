package dom_test

import (
	"testing"

	"github.com/delaneyj/retypeset/dom"
	"github.com/delaneyj/retypeset/typeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	batches [][]dom.MutationRecord
}

func (r *recorder) callback(records []dom.MutationRecord, _ *dom.MutationObserver) {
	r.batches = append(r.batches, records)
}

var allOptions = dom.ObserveOptions{Subtree: true, ChildList: true, CharacterData: true, Attributes: true}

func TestObserverBatchesUntilFlush(t *testing.T) {
	doc := dom.NewDocument()
	rec := &recorder{}
	mo := doc.NewMutationObserver(rec.callback)
	require.NoError(t, mo.Observe(doc.Body(), allOptions))

	p := doc.CreateElement("p")
	text := doc.CreateText("a")
	require.NoError(t, doc.Body().AppendChild(p))
	require.NoError(t, p.AppendChild(text))
	require.NoError(t, text.SetText("b"))
	require.NoError(t, p.SetAttribute("class", "x"))
	assert.Empty(t, rec.batches)

	assert.Equal(t, 1, doc.Flush())
	require.Len(t, rec.batches, 1)
	batch := rec.batches[0]
	require.Len(t, batch, 4)
	assert.Equal(t, dom.ChildList, batch[0].Kind)
	assert.Same(t, doc.Body(), batch[0].Target)
	assert.Equal(t, []*dom.Node{p}, batch[0].Added)
	assert.Equal(t, dom.ChildList, batch[1].Kind)
	assert.Same(t, p, batch[1].Target)
	assert.Equal(t, dom.CharacterData, batch[2].Kind)
	assert.Same(t, text, batch[2].Target)
	assert.Equal(t, "a", batch[2].OldValue)
	assert.Equal(t, dom.Attributes, batch[3].Kind)
	assert.Equal(t, "class", batch[3].AttributeName)

	assert.Equal(t, 0, doc.Flush())
}

func TestObserverHonorsOptions(t *testing.T) {
	doc := dom.NewDocument()
	p := doc.CreateElement("p")
	text := doc.CreateText("a")
	require.NoError(t, doc.Body().AppendChild(p))
	require.NoError(t, p.AppendChild(text))

	rec := &recorder{}
	mo := doc.NewMutationObserver(rec.callback)
	require.NoError(t, mo.Observe(doc.Body(), dom.ObserveOptions{ChildList: true}))

	require.NoError(t, text.SetText("b"))
	require.NoError(t, p.AppendChild(doc.CreateText("deep")))
	require.NoError(t, doc.Body().AppendChild(doc.CreateText("direct")))
	doc.Flush()

	require.Len(t, rec.batches, 1)
	require.Len(t, rec.batches[0], 1)
	assert.Same(t, doc.Body(), rec.batches[0][0].Target)

	assert.ErrorIs(t, mo.Observe(doc.Body(), dom.ObserveOptions{Subtree: true}), dom.ErrNoOptions)
	assert.ErrorIs(t, mo.Observe(dom.NewDocument().Body(), allOptions), dom.ErrWrongDocument)
}

func TestDisconnectDiscardsPendingRecords(t *testing.T) {
	doc := dom.NewDocument()
	rec := &recorder{}
	mo := doc.NewMutationObserver(rec.callback)
	require.NoError(t, mo.Observe(doc.Body(), allOptions))

	require.NoError(t, doc.Body().AppendChild(doc.CreateText("before")))
	mo.Disconnect()
	require.NoError(t, doc.Body().AppendChild(doc.CreateText("during")))
	assert.Equal(t, 0, doc.Flush())

	require.NoError(t, mo.Observe(doc.Body(), allOptions))
	require.NoError(t, doc.Body().AppendChild(doc.CreateText("after")))
	assert.Equal(t, 1, doc.Flush())
	require.Len(t, rec.batches, 1)
	assert.Equal(t, "after", rec.batches[0][0].Added[0].Text())
}

// a callback that disconnects its own observer stops further delivery even
// for changes it makes itself
func TestDisconnectInsideCallback(t *testing.T) {
	doc := dom.NewDocument()
	calls := 0
	mo := doc.NewMutationObserver(func(records []dom.MutationRecord, o *dom.MutationObserver) {
		calls++
		o.Disconnect()
		require.NoError(t, doc.Body().AppendChild(doc.CreateText("self")))
	})
	require.NoError(t, mo.Observe(doc.Body(), allOptions))

	require.NoError(t, doc.Body().AppendChild(doc.CreateText("x")))
	assert.Equal(t, 1, doc.Flush())
	assert.Equal(t, 1, calls)
}

func TestTakeRecords(t *testing.T) {
	doc := dom.NewDocument()
	rec := &recorder{}
	mo := doc.NewMutationObserver(rec.callback)
	require.NoError(t, mo.Observe(doc.Body(), allOptions))

	require.NoError(t, doc.Body().AppendChild(doc.CreateText("x")))
	assert.Len(t, mo.TakeRecords(), 1)
	assert.Equal(t, 0, doc.Flush())
}

func TestMutationsConversion(t *testing.T) {
	doc := dom.NewDocument()
	p := doc.CreateElement("p")
	a, b := doc.CreateText("a"), doc.CreateText("b")
	require.NoError(t, doc.Body().AppendChild(p))
	require.NoError(t, p.AppendChild(a))

	rec := &recorder{}
	mo := doc.NewMutationObserver(rec.callback)
	require.NoError(t, mo.Observe(doc.Body(), allOptions))
	require.NoError(t, p.ReplaceChildren(b))
	require.NoError(t, b.SetText("c"))
	require.NoError(t, p.SetAttribute("id", "p"))
	doc.Flush()
	require.Len(t, rec.batches, 1)

	muts := dom.Mutations(rec.batches[0])
	require.Len(t, muts, 4)
	assert.Equal(t, typeset.NodesRemoved, muts[0].Kind)
	assert.Equal(t, []typeset.Node{a}, muts[0].Removed)
	assert.Equal(t, typeset.NodesAdded, muts[1].Kind)
	assert.Equal(t, []typeset.Node{b}, muts[1].Added)
	assert.Equal(t, typeset.TextChanged, muts[2].Kind)
	assert.Equal(t, typeset.Node(b), muts[2].Target)
	assert.Equal(t, typeset.AttributesChanged, muts[3].Kind)
}

func TestTypesetObserver(t *testing.T) {
	doc := dom.NewDocument()
	o := dom.NewTypesetObserver(doc)
	var got [][]typeset.Mutation
	fn := func(batch []typeset.Mutation) { got = append(got, batch) }

	assert.Error(t, o.Observe(nil, typeset.DefaultObserveConfig, fn))
	require.NoError(t, o.Observe(doc.Body(), typeset.DefaultObserveConfig, fn))

	text := doc.CreateText("x")
	require.NoError(t, doc.Body().AppendChild(text))
	require.NoError(t, doc.Body().SetAttribute("class", "ignored"))
	doc.Flush()
	require.Len(t, got, 1)
	require.Len(t, got[0], 1)
	assert.Equal(t, typeset.NodesAdded, got[0][0].Kind)

	o.Disconnect()
	require.NoError(t, text.SetText("y"))
	assert.Equal(t, 0, doc.Flush())
}
