package bt

import (
	"fmt"
	"time"
)

// LeafFunc is a condition or action. It must not retain state between calls: anything that has
// to persist across ticks belongs on the agent or in the world, never in the function's closure.
type LeafFunc[A Actor, W any] func(ctx *Context[A, W], dt time.Duration) Status

// Leaf adapts a LeafFunc to Node.
type Leaf[A Actor, W any] struct {
	baseNode
	fn LeafFunc[A, W]
}

func NewLeaf[A Actor, W any](name string, fn LeafFunc[A, W]) *Leaf[A, W] {
	if fn == nil {
		panic(fmt.Sprintf("bt: leaf %q func is nil", name))
	}
	return &Leaf[A, W]{baseNode: baseNode{name: name}, fn: fn}
}

func (l *Leaf[A, W]) Tick(ctx *Context[A, W], dt time.Duration) Status { return l.fn(ctx, dt) }

// Succeed always succeeds.
func Succeed[A Actor, W any](*Context[A, W], time.Duration) Status { return StatusSuccess }

// Fail always fails.
func Fail[A Actor, W any](*Context[A, W], time.Duration) Status { return StatusFailure }

// Running never resolves.
func Running[A Actor, W any](*Context[A, W], time.Duration) Status { return StatusRunning }
