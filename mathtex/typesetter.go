package mathtex

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/retypeset/dom"
	"github.com/delaneyj/retypeset/typeset"
)

type Stats struct {
	Renders  int
	Typeset  int
	Skipped  int
	Formulas int
}

// Typesetter replaces inline formulas in text nodes with generated
// containers. Text nodes it has already handled are remembered by a content
// fingerprint and skipped until invalidated or changed.
type Typesetter struct {
	doc *dom.Document
	cfg Config

	mu    sync.Mutex
	cache map[*dom.Node]uint64
	// plain holds literal text nodes this typesetter produced. They survive
	// Invalidate so that unescaped delimiters are never read as math.
	plain map[*dom.Node]uint64
	stats Stats
}

var _ typeset.Renderer = (*Typesetter)(nil)

func New(doc *dom.Document, cfg Config) *Typesetter {
	return &Typesetter{
		doc:   doc,
		cfg:   cfg.withDefaults(),
		cache: map[*dom.Node]uint64{},
		plain: map[*dom.Node]uint64{},
	}
}

func (t *Typesetter) Config() Config {
	return t.cfg
}

func (t *Typesetter) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Cached reports whether n has a cache entry.
func (t *Typesetter) Cached(n *dom.Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.cache[n]
	return ok
}

func (t *Typesetter) Invalidate(nodes []typeset.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, n := range nodes {
		dn, ok := n.(*dom.Node)
		if !ok {
			continue
		}
		dn.Walk(func(c *dom.Node) bool {
			delete(t.cache, c)
			return true
		})
	}
}

func (t *Typesetter) Render(ctx context.Context, nodes []typeset.Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Renders++
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		dn, ok := n.(*dom.Node)
		if !ok {
			return fmt.Errorf("mathtex: cannot render %T", n)
		}
		if dn.Document() != t.doc {
			return fmt.Errorf("mathtex: %w", dom.ErrWrongDocument)
		}
		for _, text := range t.textNodes(dn, nil) {
			if err := t.typesetText(text); err != nil {
				return err
			}
		}
	}

	for n := range t.plain {
		if !n.IsConnected() {
			delete(t.plain, n)
		}
	}
	return nil
}

// textNodes collects text descendants of n, skipping generated containers.
func (t *Typesetter) textNodes(n *dom.Node, acc []*dom.Node) []*dom.Node {
	switch n.Kind() {
	case dom.TextNode:
		return append(acc, n)
	case dom.ElementNode:
		if n.Tag() == t.cfg.ContainerTag {
			return acc
		}
		for _, c := range n.Children() {
			acc = t.textNodes(c, acc)
		}
	}
	return acc
}

func (t *Typesetter) typesetText(n *dom.Node) error {
	if !n.IsConnected() {
		return nil
	}
	text := n.Text()
	h := xxhash.Sum64String(text)
	if cached, ok := t.cache[n]; ok && cached == h {
		t.stats.Skipped++
		return nil
	}
	if plain, ok := t.plain[n]; ok && plain == h {
		t.cache[n] = h
		t.stats.Skipped++
		return nil
	}

	segs := split(text, t.cfg)
	if !hasMath(segs) {
		t.cache[n] = h
		return nil
	}

	replacement := make([]*dom.Node, 0, len(segs))
	for _, seg := range segs {
		if !seg.math {
			lit := t.doc.CreateText(seg.text)
			sum := xxhash.Sum64String(seg.text)
			t.plain[lit] = sum
			t.cache[lit] = sum
			replacement = append(replacement, lit)
			continue
		}
		el := t.doc.CreateElement(t.cfg.ContainerTag)
		if err := el.SetAttribute("data-tex", seg.text); err != nil {
			return err
		}
		if err := el.AppendChild(t.doc.CreateRaw(Formula(seg.text, t.cfg.FontCache))); err != nil {
			return err
		}
		replacement = append(replacement, el)
		t.stats.Formulas++
	}
	if err := n.ReplaceWith(replacement...); err != nil {
		return fmt.Errorf("mathtex: replace text node: %w", err)
	}
	delete(t.cache, n)
	delete(t.plain, n)
	t.stats.Typeset++
	return nil
}
