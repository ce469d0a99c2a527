package typeset

import (
	"context"
	"strconv"
)

// Node is a handle to a location in an observed tree. Implementations must be
// comparable by identity (pointer types), since nodes are deduplicated in sets.
type Node interface {
	IsConnected() bool
}

type MutationKind uint8

const (
	NodesAdded MutationKind = iota + 1
	NodesRemoved
	TextChanged
	// AttributesChanged is delivered by observers watching attributes. The
	// scheduler does not coalesce it and reports it as unknown.
	AttributesChanged
)

func (k MutationKind) String() string {
	switch k {
	case NodesAdded:
		return "NodesAdded"
	case NodesRemoved:
		return "NodesRemoved"
	case TextChanged:
		return "TextChanged"
	case AttributesChanged:
		return "AttributesChanged"
	default:
		return "MutationKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Mutation is a single change notification. Target is the parent for
// NodesAdded and NodesRemoved and the changed node for TextChanged.
type Mutation struct {
	Kind    MutationKind
	Target  Node
	Added   []Node
	Removed []Node
}

// ObserveConfig selects what an Observer reports.
type ObserveConfig struct {
	Subtree       bool
	ChildList     bool
	CharacterData bool
	Attributes    bool
}

var DefaultObserveConfig = ObserveConfig{
	Subtree:       true,
	ChildList:     true,
	CharacterData: true,
}

// BatchFunc receives one change batch, in the order the changes occurred.
type BatchFunc func(batch []Mutation)

// Observer delivers change batches for the tree under root. Disconnect must
// stop delivery synchronously and discard any records not yet delivered, so
// no callback fires until Observe is called again.
type Observer interface {
	Observe(root Node, cfg ObserveConfig, fn BatchFunc) error
	Disconnect()
}

// Renderer is the expensive operation driven by the scheduler. Invalidate is
// synchronous and clears cached render state for the nodes and their
// descendants. Render may mutate the tree it renders.
type Renderer interface {
	Invalidate(nodes []Node)
	Render(ctx context.Context, nodes []Node) error
}

type State uint8

const (
	Idle State = iota
	Observing
	Rendering
	Closed
)

// Suspended is the observer's view of Rendering.
const Suspended = Rendering

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Observing:
		return "Observing"
	case Rendering:
		return "Rendering"
	case Closed:
		return "Closed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}
