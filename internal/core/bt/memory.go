package bt

import "fmt"

// MemorySlots is the number of resumption slots every agent carries.
const MemorySlots = 8

// Slot identifies one cell of an agent's Memory. Each stateful composite owns exactly one slot,
// assigned while the tree is assembled.
type Slot int

// Valid reports whether the slot fits inside Memory.
func (s Slot) Valid() bool { return s >= 0 && s < MemorySlots }

// Memory is the per-agent array of resumption indices. The zero value is ready to use.
type Memory [MemorySlots]int

// Get returns the child index stored in slot.
func (m *Memory) Get(slot Slot) int { return m[slot] }

// Set stores a child index in slot.
func (m *Memory) Set(slot Slot, index int) { m[slot] = index }

// Reset zeroes every slot.
func (m *Memory) Reset() { *m = Memory{} }

// SlotAllocator hands out distinct slots while a tree is built.
// It is not safe for concurrent use; trees are assembled once, on one goroutine.
type SlotAllocator struct {
	next Slot
}

// Next returns the next free slot. It panics once all MemorySlots are taken.
func (a *SlotAllocator) Next() Slot {
	if !a.next.Valid() {
		panic(fmt.Sprintf("bt: slot allocator exhausted (%d slots)", MemorySlots))
	}
	s := a.next
	a.next++
	return s
}

// Used returns how many slots were handed out.
func (a *SlotAllocator) Used() int { return int(a.next) }
