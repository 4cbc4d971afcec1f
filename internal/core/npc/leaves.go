package npc

import (
	"time"

	"github.com/zeusync/herd/internal/core/bt"
	"github.com/zeusync/herd/internal/core/systems/physics"
	"github.com/zeusync/herd/internal/core/world"
)

// Context is the tick context of a grazer: the entity being ticked and the shared world.
type Context = bt.Context[*world.Entity, *world.World]

// Leaf functions: conditions the entity checks and actions it takes. They are plain functions
// so they cannot carry state; everything persistent lives on the entity or the world.

// ThreatNearby succeeds while the wolf is active and within the threat radius.
func ThreatNearby(ctx *Context, _ time.Duration) bt.Status {
	w := ctx.World
	if !w.WolfActive {
		return bt.StatusFailure
	}
	if ctx.Self.Position.Distance(w.Wolf) < w.Params.ThreatRadius {
		return bt.StatusSuccess
	}
	return bt.StatusFailure
}

// CheckHunger succeeds while the entity is hungry. Hunger has hysteresis: the entity becomes
// hungry above HungerEnter and stays hungry until it drops below HungerExit.
func CheckHunger(ctx *Context, _ time.Duration) bt.Status {
	e, p := ctx.Self, ctx.World.Params
	if !e.Hungry && e.Hunger > p.HungerEnter {
		e.Hungry = true
	}
	if e.Hungry && e.Hunger < p.HungerExit {
		e.Hungry = false
	}
	if e.Hungry {
		return bt.StatusSuccess
	}
	return bt.StatusFailure
}

// Flee steers away from the wolf. It never resolves on its own; the threat check in front of it
// decides when fleeing stops.
func Flee(ctx *Context, _ time.Duration) bt.Status {
	e, w := ctx.Self, ctx.World
	e.Activity = world.ActivityFlee
	e.Acceleration = e.Acceleration.
		Add(physics.Flee(e, w.Wolf, w.Params.MaxSpeed, w.Params.FleeWeight)).
		Add(physics.Drag(e, w.Params.Drag))
	return bt.StatusRunning
}

// MoveToWaypoint seeks the current waypoint and succeeds once inside the waypoint radius.
func MoveToWaypoint(ctx *Context, _ time.Duration) bt.Status {
	e, w := ctx.Self, ctx.World
	e.Activity = world.ActivityPatrol
	target := w.Waypoint(e.WaypointIndex)
	e.Acceleration = physics.Seek(e, target, w.Params.MaxSpeed*w.Params.PatrolSpeedFactor, w.Params.SeekWeight).
		Add(physics.Drag(e, w.Params.Drag))
	if e.Position.Distance(target) <= w.Params.WaypointRadius {
		return bt.StatusSuccess
	}
	return bt.StatusRunning
}

// AdvanceWaypoint moves on to the next waypoint in order.
func AdvanceWaypoint(ctx *Context, _ time.Duration) bt.Status {
	e := ctx.Self
	e.WaypointIndex = (e.WaypointIndex + 1) % len(ctx.World.Waypoints)
	return bt.StatusSuccess
}

// SeekFood steers to the food. Eating resets hunger to zero and clears the hungry flag.
func SeekFood(ctx *Context, _ time.Duration) bt.Status {
	e, w := ctx.Self, ctx.World
	e.Activity = world.ActivitySeekFood
	e.Acceleration = physics.Seek(e, w.Food, w.Params.MaxSpeed*w.Params.FoodSpeedFactor, w.Params.SeekWeight).
		Add(physics.Drag(e, w.Params.Drag))
	if e.Position.Distance(w.Food) < w.Params.FoodRadius {
		e.Hunger = 0
		e.Hungry = false
		return bt.StatusSuccess
	}
	return bt.StatusRunning
}
