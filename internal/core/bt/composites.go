package bt

import (
	"fmt"
	"slices"
	"time"
)

// Composite nodes: Sequence, Selector, MemorySequence

// Sequence ticks children left to right from the first child on every call.
// It fails on the first failure, reports Running on the first running child without
// remembering its position, and succeeds only when every child succeeds in the same call.
type Sequence[A Actor, W any] struct {
	baseNode
	children []Node[A, W]
}

func NewSequence[A Actor, W any](name string, children ...Node[A, W]) *Sequence[A, W] {
	return &Sequence[A, W]{baseNode: baseNode{name: name}, children: mustChildren("sequence", name, children)}
}

func (s *Sequence[A, W]) Children() []Node[A, W] { return slices.Clone(s.children) }

func (s *Sequence[A, W]) Tick(ctx *Context[A, W], dt time.Duration) Status {
	for _, ch := range s.children {
		switch ch.Tick(ctx, dt) {
		case StatusFailure:
			return StatusFailure
		case StatusRunning:
			return StatusRunning
		}
	}
	return StatusSuccess
}

// Selector ticks children left to right from the first child on every call.
// It succeeds on the first success, reports Running on the first running child and fails only
// when every child fails. Children are ordered from highest to lowest priority.
type Selector[A Actor, W any] struct {
	baseNode
	children []Node[A, W]
}

func NewSelector[A Actor, W any](name string, children ...Node[A, W]) *Selector[A, W] {
	return &Selector[A, W]{baseNode: baseNode{name: name}, children: mustChildren("selector", name, children)}
}

func (s *Selector[A, W]) Children() []Node[A, W] { return slices.Clone(s.children) }

func (s *Selector[A, W]) Tick(ctx *Context[A, W], dt time.Duration) Status {
	for _, ch := range s.children {
		switch ch.Tick(ctx, dt) {
		case StatusSuccess:
			return StatusSuccess
		case StatusRunning:
			return StatusRunning
		}
	}
	return StatusFailure
}

// MemorySequence is a Sequence that resumes, per agent, from the child that was running on the
// previous tick. The resumption index lives in the agent's Memory under the node's slot.
//
// Succeeded children are not re-ticked while a later child is running. The slot returns to 0
// when any child fails and when the last child succeeds.
type MemorySequence[A Actor, W any] struct {
	baseNode
	slot     Slot
	children []Node[A, W]
}

func NewMemorySequence[A Actor, W any](name string, slot Slot, children ...Node[A, W]) *MemorySequence[A, W] {
	if !slot.Valid() {
		panic(fmt.Sprintf("bt: memory sequence %q slot %d outside [0, %d)", name, slot, MemorySlots))
	}
	return &MemorySequence[A, W]{
		baseNode: baseNode{name: name},
		slot:     slot,
		children: mustChildren("memory sequence", name, children),
	}
}

// Slot returns the memory slot owned by this node.
func (s *MemorySequence[A, W]) Slot() Slot { return s.slot }

func (s *MemorySequence[A, W]) Children() []Node[A, W] { return slices.Clone(s.children) }

func (s *MemorySequence[A, W]) Tick(ctx *Context[A, W], dt time.Duration) Status {
	mem := ctx.Self.Slots()
	i := mem.Get(s.slot)
	if i < 0 || i >= len(s.children) {
		// Out of range for this node; start over.
		i = 0
	}
	for i < len(s.children) {
		switch s.children[i].Tick(ctx, dt) {
		case StatusRunning:
			mem.Set(s.slot, i)
			return StatusRunning
		case StatusFailure:
			mem.Set(s.slot, 0)
			return StatusFailure
		}
		i++
	}
	mem.Set(s.slot, 0)
	return StatusSuccess
}
