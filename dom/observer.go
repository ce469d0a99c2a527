package dom

import "errors"

var ErrNoOptions = errors.New("observe needs at least one of ChildList, CharacterData or Attributes")

type RecordKind uint8

const (
	ChildList RecordKind = iota + 1
	CharacterData
	Attributes
)

func (k RecordKind) String() string {
	switch k {
	case ChildList:
		return "childList"
	case CharacterData:
		return "characterData"
	case Attributes:
		return "attributes"
	default:
		return "unknown"
	}
}

// MutationRecord is one observed change. For ChildList, Target is the parent
// whose children changed.
type MutationRecord struct {
	Kind          RecordKind
	Target        *Node
	Added         []*Node
	Removed       []*Node
	AttributeName string
	OldValue      string
}

type ObserveOptions struct {
	Subtree       bool
	ChildList     bool
	CharacterData bool
	Attributes    bool
}

type Callback func(records []MutationRecord, o *MutationObserver)

// MutationObserver queues records for changes under its root and hands them
// over on Document.Flush. Disconnect discards anything still queued.
type MutationObserver struct {
	doc     *Document
	cb      Callback
	root    *Node
	opts    ObserveOptions
	active  bool
	pending []MutationRecord
}

func (d *Document) NewMutationObserver(cb Callback) *MutationObserver {
	return &MutationObserver{doc: d, cb: cb}
}

// Observe starts, or retargets, observation of root.
func (o *MutationObserver) Observe(root *Node, opts ObserveOptions) error {
	if root == nil || root.doc != o.doc {
		return ErrWrongDocument
	}
	if !opts.ChildList && !opts.CharacterData && !opts.Attributes {
		return ErrNoOptions
	}

	d := o.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	o.root = root
	o.opts = opts
	if !o.active {
		o.active = true
		d.observers = append(d.observers, o)
	}
	return nil
}

func (o *MutationObserver) Disconnect() {
	d := o.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if !o.active {
		return
	}
	o.active = false
	o.pending = nil
	for i, other := range d.observers {
		if other == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			break
		}
	}
}

// TakeRecords empties the queue without delivering it.
func (o *MutationObserver) TakeRecords() []MutationRecord {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	recs := o.pending
	o.pending = nil
	return recs
}

func (o *MutationObserver) wants(rec MutationRecord) bool {
	switch rec.Kind {
	case ChildList:
		if !o.opts.ChildList {
			return false
		}
	case CharacterData:
		if !o.opts.CharacterData {
			return false
		}
	case Attributes:
		if !o.opts.Attributes {
			return false
		}
	}
	if rec.Target == o.root {
		return true
	}
	return o.opts.Subtree && o.root.contains(rec.Target)
}

// queue must be called with d.mu held.
func (d *Document) queue(rec MutationRecord) {
	for _, o := range d.observers {
		if o.wants(rec) {
			o.pending = append(o.pending, rec)
		}
	}
}

// Flush delivers each observer's queued records as one batch, outside the
// document lock. Records queued by a callback are delivered in the same
// flush. It returns the number of batches delivered.
func (d *Document) Flush() int {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	delivered := 0
	for {
		d.mu.Lock()
		var (
			next *MutationObserver
			recs []MutationRecord
		)
		for _, o := range d.observers {
			if len(o.pending) > 0 {
				next, recs = o, o.pending
				o.pending = nil
				break
			}
		}
		d.mu.Unlock()

		if next == nil {
			return delivered
		}
		if next.cb != nil {
			next.cb(recs, next)
		}
		delivered++
	}
}
