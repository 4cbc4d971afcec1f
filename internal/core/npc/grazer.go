package npc

import (
	"github.com/zeusync/herd/internal/core/bt"
	"github.com/zeusync/herd/internal/core/world"
)

type (
	// Brain is a behavior tree over grazers.
	Brain = bt.Brain[*world.Entity, *world.World]
	// Node is a grazer tree node.
	Node = bt.Node[*world.Entity, *world.World]
)

func leaf(name string, fn bt.LeafFunc[*world.Entity, *world.World]) Node {
	return bt.NewLeaf(name, fn)
}

// NewGrazerBrain assembles the grazer tree:
//
//	Selector
//	├── Sequence: ThreatNearby → Flee
//	├── Sequence: CheckHunger → SeekFood
//	└── RepeatForever
//	    └── MemorySequence: MoveToWaypoint → AdvanceWaypoint
//
// The brain avoids threats first, eats when hungry and otherwise patrols the waypoints.
// It is immutable and may be shared by every grazer.
func NewGrazerBrain() *Brain {
	var slots bt.SlotAllocator

	flee := bt.NewSequence("flee", leaf("threat nearby", ThreatNearby), leaf("flee", Flee))
	food := bt.NewSequence("food", leaf("hungry", CheckHunger), leaf("seek food", SeekFood))

	patrol := bt.NewMemorySequence("patrol", slots.Next(),
		leaf("move to waypoint", MoveToWaypoint),
		leaf("advance waypoint", AdvanceWaypoint),
	)
	loop := bt.NewRepeatForever[*world.Entity, *world.World]("patrol loop", patrol)

	root := bt.NewSelector[*world.Entity, *world.World]("grazer", flee, food, loop)
	return bt.NewBrain[*world.Entity, *world.World](root)
}
