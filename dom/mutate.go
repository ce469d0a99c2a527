package dom

import mapset "github.com/deckarep/golang-set/v2"

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore moves child in front of ref, or to the end when ref is nil.
// A child that already has a parent is removed from it first, which is
// reported as its own record.
func (n *Node) InsertBefore(child, ref *Node) error {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if child.doc != d || (ref != nil && ref.doc != d) {
		return ErrWrongDocument
	}
	if n.kind != ElementNode {
		return ErrLeaf
	}
	if child.contains(n) {
		return ErrCycle
	}
	if ref != nil && ref.parent != n {
		return ErrNotChild
	}
	if ref == child {
		return nil
	}

	if old := child.parent; old != nil {
		old.detach(child)
		d.queue(MutationRecord{Kind: ChildList, Target: old, Removed: []*Node{child}})
	}
	n.attach(child, ref)
	d.queue(MutationRecord{Kind: ChildList, Target: n, Added: []*Node{child}})
	return nil
}

func (n *Node) RemoveChild(child *Node) error {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if child.parent != n {
		return ErrNotChild
	}
	n.detach(child)
	d.queue(MutationRecord{Kind: ChildList, Target: n, Removed: []*Node{child}})
	return nil
}

// Remove detaches n from its parent, if it has one.
func (n *Node) Remove() {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	p := n.parent
	if p == nil {
		return
	}
	p.detach(n)
	d.queue(MutationRecord{Kind: ChildList, Target: p, Removed: []*Node{n}})
}

// ReplaceWith puts nodes where n is and detaches n, as one record.
func (n *Node) ReplaceWith(nodes ...*Node) error {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	p := n.parent
	if p == nil {
		return ErrNotChild
	}
	if err := checkInserts(d, nodes); err != nil {
		return err
	}
	for _, c := range nodes {
		if c == n || c.contains(p) {
			return ErrCycle
		}
	}

	idx := p.indexOf(n)
	for _, c := range nodes {
		if c.parent != nil {
			old := c.parent
			old.detach(c)
			d.queue(MutationRecord{Kind: ChildList, Target: old, Removed: []*Node{c}})
			idx = p.indexOf(n)
		}
	}
	p.detach(n)
	added := make([]*Node, 0, len(nodes))
	for i, c := range nodes {
		p.children = append(p.children, nil)
		copy(p.children[idx+i+1:], p.children[idx+i:])
		p.children[idx+i] = c
		c.parent = p
		added = append(added, c)
	}
	d.queue(MutationRecord{Kind: ChildList, Target: p, Removed: []*Node{n}, Added: added})
	return nil
}

// ReplaceChildren swaps all of n's children for nodes, as one record.
func (n *Node) ReplaceChildren(nodes ...*Node) error {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if n.kind != ElementNode {
		return ErrLeaf
	}
	if err := checkInserts(d, nodes); err != nil {
		return err
	}
	for _, c := range nodes {
		if c.contains(n) {
			return ErrCycle
		}
	}

	removed := n.children
	for _, c := range removed {
		c.parent = nil
	}
	n.children = nil
	for _, c := range nodes {
		if old := c.parent; old != nil {
			old.detach(c)
			d.queue(MutationRecord{Kind: ChildList, Target: old, Removed: []*Node{c}})
		}
		n.attach(c, nil)
	}
	if len(removed) == 0 && len(nodes) == 0 {
		return nil
	}
	d.queue(MutationRecord{Kind: ChildList, Target: n, Removed: removed, Added: append([]*Node(nil), nodes...)})
	return nil
}

// SetText replaces the data of a text node.
func (n *Node) SetText(text string) error {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if n.kind != TextNode {
		return ErrNotText
	}
	old := n.text
	n.text = text
	d.queue(MutationRecord{Kind: CharacterData, Target: n, OldValue: old})
	return nil
}

func (n *Node) SetAttribute(name, value string) error {
	d := n.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if n.kind != ElementNode {
		return ErrNotElement
	}
	if n.attrs == nil {
		n.attrs = map[string]string{}
	}
	old := n.attrs[name]
	n.attrs[name] = value
	d.queue(MutationRecord{Kind: Attributes, Target: n, AttributeName: name, OldValue: old})
	return nil
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	child.parent = nil
}

func (n *Node) attach(child, ref *Node) {
	child.parent = n
	if ref == nil {
		n.children = append(n.children, child)
		return
	}
	i := n.indexOf(ref)
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

// checkInserts rejects nodes from another document and nodes listed twice.
func checkInserts(d *Document, nodes []*Node) error {
	seen := mapset.NewThreadUnsafeSet[*Node]()
	for _, c := range nodes {
		if c.doc != d {
			return ErrWrongDocument
		}
		if !seen.Add(c) {
			return ErrDuplicate
		}
	}
	return nil
}
