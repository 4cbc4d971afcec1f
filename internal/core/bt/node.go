package bt

import (
	"fmt"
	"time"
)

// Actor is the engine's only requirement on agent state: access to its resumption slots.
type Actor interface {
	Slots() *Memory
}

// Context bundles the acting agent and the shared world for one tick.
// It is built by the caller per agent per tick and is never retained by nodes.
type Context[A Actor, W any] struct {
	Self  A
	World W
}

// Node is a behavior tree node. Implementations are immutable after construction and keep
// no per-agent state; anything that must survive a tick lives in the Context.
type Node[A Actor, W any] interface {
	// Tick evaluates the node once for ctx.Self. dt is simulation time, never wall-clock time.
	Tick(ctx *Context[A, W], dt time.Duration) Status
	// Name returns a human-readable name for debugging.
	Name() string
}

// parent is implemented by nodes that have children, so the brain can walk the tree.
type parent[A Actor, W any] interface {
	Children() []Node[A, W]
}

type baseNode struct{ name string }

func (b baseNode) Name() string { return b.name }

func mustChildren[A Actor, W any](kind, name string, children []Node[A, W]) []Node[A, W] {
	if len(children) == 0 {
		panic(fmt.Sprintf("bt: %s %q has no children", kind, name))
	}
	for i, ch := range children {
		if ch == nil {
			panic(fmt.Sprintf("bt: %s %q child %d is nil", kind, name, i))
		}
	}
	out := make([]Node[A, W], len(children))
	copy(out, children)
	return out
}
