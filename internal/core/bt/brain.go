package bt

import (
	"fmt"
	"time"
)

// Brain owns a tree root and is the single entry point for ticking an agent.
// One Brain may be shared by any number of agents and ticked concurrently for distinct agents.
type Brain[A Actor, W any] struct {
	root  Node[A, W]
	slots int
}

// NewBrain validates the tree under root and wraps it. It panics when root is nil or when two
// distinct memory sequences claim the same slot.
func NewBrain[A Actor, W any](root Node[A, W]) *Brain[A, W] {
	if root == nil {
		panic("bt: brain root is nil")
	}
	owners := make(map[Slot]Node[A, W])
	var walk func(n Node[A, W])
	walk = func(n Node[A, W]) {
		if ms, ok := n.(interface{ Slot() Slot }); ok {
			// The same node reached twice through a shared subtree keeps its slot.
			if prev, taken := owners[ms.Slot()]; taken && prev != n {
				panic(fmt.Sprintf("bt: slot %d shared by %q and %q", ms.Slot(), prev.Name(), n.Name()))
			}
			owners[ms.Slot()] = n
		}
		if p, ok := n.(parent[A, W]); ok {
			for _, ch := range p.Children() {
				walk(ch)
			}
		}
	}
	walk(root)
	return &Brain[A, W]{root: root, slots: len(owners)}
}

// Root returns the tree root.
func (b *Brain[A, W]) Root() Node[A, W] { return b.root }

// SlotsUsed reports how many memory slots the tree occupies.
func (b *Brain[A, W]) SlotsUsed() int { return b.slots }

// Tick evaluates the whole tree once for ctx.Self.
func (b *Brain[A, W]) Tick(ctx *Context[A, W], dt time.Duration) Status {
	return b.root.Tick(ctx, dt)
}
