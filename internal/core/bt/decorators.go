package bt

import (
	"fmt"
	"time"
)

// RepeatForever ticks its child once per call and always reports Running, discarding the
// child's Success or Failure. It performs no reset of its own; a stateful child must reset
// itself before it returns a terminal status.
type RepeatForever[A Actor, W any] struct {
	baseNode
	child Node[A, W]
}

func NewRepeatForever[A Actor, W any](name string, child Node[A, W]) *RepeatForever[A, W] {
	if child == nil {
		panic(fmt.Sprintf("bt: repeat forever %q child is nil", name))
	}
	return &RepeatForever[A, W]{baseNode: baseNode{name: name}, child: child}
}

func (r *RepeatForever[A, W]) Children() []Node[A, W] { return []Node[A, W]{r.child} }

func (r *RepeatForever[A, W]) Tick(ctx *Context[A, W], dt time.Duration) Status {
	_ = r.child.Tick(ctx, dt)
	return StatusRunning
}
