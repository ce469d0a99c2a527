package dom

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/valyala/quicktemplate"
)

var (
	ErrNotChild      = errors.New("node is not a child of this parent")
	ErrCycle         = errors.New("node would become its own ancestor")
	ErrWrongDocument = errors.New("node belongs to another document")
	ErrLeaf          = errors.New("node cannot have children")
	ErrNotText       = errors.New("node is not a text node")
	ErrNotElement    = errors.New("node is not an element")
	ErrDuplicate     = errors.New("node passed more than once")
)

type NodeKind uint8

const (
	ElementNode NodeKind = iota
	TextNode
	// RawNode holds pre-rendered markup that is serialized verbatim.
	RawNode
)

type Node struct {
	doc      *Document
	kind     NodeKind
	tag      string
	text     string
	attrs    map[string]string
	parent   *Node
	children []*Node
}

// Document owns a tree rooted at Body. Every read and write of the tree goes
// through the document mutex.
type Document struct {
	mu        sync.Mutex
	flushMu   sync.Mutex
	body      *Node
	observers []*MutationObserver
}

func NewDocument() *Document {
	d := &Document{}
	d.body = &Node{doc: d, kind: ElementNode, tag: "body"}
	return d
}

func (d *Document) Body() *Node {
	return d.body
}

func (d *Document) CreateElement(tag string) *Node {
	return &Node{doc: d, kind: ElementNode, tag: strings.ToLower(tag)}
}

func (d *Document) CreateText(text string) *Node {
	return &Node{doc: d, kind: TextNode, text: text}
}

func (d *Document) CreateRaw(markup string) *Node {
	return &Node{doc: d, kind: RawNode, text: markup}
}

func (d *Document) String() string {
	return d.body.String()
}

func (n *Node) Document() *Document { return n.doc }
func (n *Node) Kind() NodeKind      { return n.kind }
func (n *Node) Tag() string         { return n.tag }

func (n *Node) Parent() *Node {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.parent
}

func (n *Node) Children() []*Node {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return append([]*Node(nil), n.children...)
}

// Text returns the data of a text or raw node.
func (n *Node) Text() string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.text
}

func (n *Node) Attribute(name string) (string, bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	v, ok := n.attrs[name]
	return v, ok
}

// IsConnected reports whether the node is reachable from the document body.
func (n *Node) IsConnected() bool {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.connected()
}

func (n *Node) connected() bool {
	top := n
	for top.parent != nil {
		top = top.parent
	}
	return top == n.doc.body
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.contains(other)
}

func (n *Node) contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in document order. The tree is
// snapshotted first, so fn may mutate it.
func (n *Node) Walk(fn func(*Node) bool) {
	n.doc.mu.Lock()
	var nodes []*Node
	var collect func(*Node)
	collect = func(c *Node) {
		nodes = append(nodes, c)
		for _, cc := range c.children {
			collect(cc)
		}
	}
	collect(n)
	n.doc.mu.Unlock()

	for _, c := range nodes {
		if !fn(c) {
			return
		}
	}
}

// TextContent concatenates the data of all text descendants.
func (n *Node) TextContent() string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	var sb strings.Builder
	var visit func(*Node)
	visit = func(c *Node) {
		if c.kind == TextNode {
			sb.WriteString(c.text)
		}
		for _, cc := range c.children {
			visit(cc)
		}
	}
	visit(n)
	return sb.String()
}

// ByID finds the first element under n whose id attribute equals id.
func (n *Node) ByID(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if v, ok := c.Attribute("id"); ok && v == id {
			found = c
			return false
		}
		return true
	})
	return found
}

func (n *Node) String() string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	bb := quicktemplate.AcquireByteBuffer()
	qw := quicktemplate.AcquireWriter(bb)
	n.streamMarkup(qw)
	quicktemplate.ReleaseWriter(qw)
	s := string(bb.B)
	quicktemplate.ReleaseByteBuffer(bb)
	return s
}

func (n *Node) streamMarkup(qw *quicktemplate.Writer) {
	switch n.kind {
	case TextNode:
		qw.E().S(n.text)
		return
	case RawNode:
		qw.N().S(n.text)
		return
	}

	qw.N().S("<" + n.tag)
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		qw.N().S(" " + k + `="`)
		qw.E().S(n.attrs[k])
		qw.N().S(`"`)
	}
	qw.N().S(">")
	for _, c := range n.children {
		c.streamMarkup(qw)
	}
	qw.N().S("</" + n.tag + ">")
}
