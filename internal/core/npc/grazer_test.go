package npc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/herd/internal/core/bt"
	"github.com/zeusync/herd/internal/core/systems/physics"
	"github.com/zeusync/herd/internal/core/world"
)

const frame = time.Second / 60

func calmWorld() *world.World {
	p := world.DefaultParams()
	p.HungerPerSecond = 0
	w := world.New(p)
	w.WolfActive = false
	return w
}

func TestThreatNearby(t *testing.T) {
	w := world.New(world.DefaultParams())
	e := &world.Entity{Position: w.Wolf.Add(physics.Vec2{X: 179})}
	ctx := &Context{Self: e, World: w}

	assert.Equal(t, bt.StatusSuccess, ThreatNearby(ctx, frame))

	e.Position = w.Wolf.Add(physics.Vec2{X: 181})
	assert.Equal(t, bt.StatusFailure, ThreatNearby(ctx, frame))

	e.Position = w.Wolf
	w.WolfActive = false
	assert.Equal(t, bt.StatusFailure, ThreatNearby(ctx, frame))
}

func TestCheckHungerHysteresis(t *testing.T) {
	w := calmWorld()
	e := &world.Entity{Hunger: 0.5}
	ctx := &Context{Self: e, World: w}

	assert.Equal(t, bt.StatusFailure, CheckHunger(ctx, frame))

	e.Hunger = 0.66
	assert.Equal(t, bt.StatusSuccess, CheckHunger(ctx, frame))
	assert.True(t, e.Hungry)

	e.Hunger = 0.5
	assert.Equal(t, bt.StatusSuccess, CheckHunger(ctx, frame), "stays hungry above the exit threshold")

	e.Hunger = 0.44
	assert.Equal(t, bt.StatusFailure, CheckHunger(ctx, frame))
	assert.False(t, e.Hungry)
}

func TestFleeAccumulatesAwayFromWolf(t *testing.T) {
	w := world.New(world.DefaultParams())
	e := &world.Entity{Position: w.Wolf.Sub(physics.Vec2{X: 50}), Acceleration: physics.Vec2{Y: 1}}
	ctx := &Context{Self: e, World: w}

	assert.Equal(t, bt.StatusRunning, Flee(ctx, frame))
	assert.Equal(t, world.ActivityFlee, e.Activity)
	assert.Less(t, e.Acceleration.X, 0.0)
	assert.Equal(t, 1.0, e.Acceleration.Y, "flee adds to the accumulated acceleration")
}

func TestFleeOnTopOfWolfHasDirection(t *testing.T) {
	w := world.New(world.DefaultParams())
	e := &world.Entity{Position: w.Wolf}
	Flee(&Context{Self: e, World: w}, frame)
	assert.Greater(t, e.Acceleration.X, 0.0)
}

func TestSeekFoodResetsHungerOnArrival(t *testing.T) {
	w := calmWorld()
	e := &world.Entity{Position: w.Food.Add(physics.Vec2{X: 100}), Hunger: 0.9, Hungry: true}
	ctx := &Context{Self: e, World: w}

	assert.Equal(t, bt.StatusRunning, SeekFood(ctx, frame))
	assert.Equal(t, world.ActivitySeekFood, e.Activity)
	assert.Less(t, e.Acceleration.X, 0.0)

	e.Position = w.Food.Add(physics.Vec2{X: 15})
	assert.Equal(t, bt.StatusSuccess, SeekFood(ctx, frame))
	assert.Equal(t, 0.0, e.Hunger)
	assert.False(t, e.Hungry)
}

func TestAdvanceWaypointWraps(t *testing.T) {
	w := calmWorld()
	e := &world.Entity{WaypointIndex: 3}
	assert.Equal(t, bt.StatusSuccess, AdvanceWaypoint(&Context{Self: e, World: w}, frame))
	assert.Equal(t, 0, e.WaypointIndex)
}

func TestGrazerBrainUsesOneSlot(t *testing.T) {
	assert.Equal(t, 1, NewGrazerBrain().SlotsUsed())
}

func TestGrazerPrefersFleeOverFood(t *testing.T) {
	brain := NewGrazerBrain()
	w := world.New(world.DefaultParams())
	e := &world.Entity{Position: w.Wolf.Add(physics.Vec2{X: 10}), Hunger: 0.9}

	assert.Equal(t, bt.StatusRunning, brain.Tick(&Context{Self: e, World: w}, frame))
	assert.Equal(t, world.ActivityFlee, e.Activity)
	assert.False(t, e.Hungry, "hunger branch is not evaluated while fleeing")
}

func TestGrazerEatsThenPatrols(t *testing.T) {
	brain := NewGrazerBrain()
	w := calmWorld()
	e := &world.Entity{Position: w.Food, Hunger: 0.9}
	ctx := &Context{Self: e, World: w}

	assert.Equal(t, bt.StatusSuccess, brain.Tick(ctx, frame))
	assert.Equal(t, world.ActivitySeekFood, e.Activity)
	assert.Equal(t, 0.0, e.Hunger)

	assert.Equal(t, bt.StatusRunning, brain.Tick(ctx, frame))
	assert.Equal(t, world.ActivityPatrol, e.Activity)
}

// With no threat and no hunger, the waypoint index advances by exactly one each time the
// entity arrives, and never while it is still travelling.
func TestGrazerPatrolAdvancesOncePerArrival(t *testing.T) {
	brain := NewGrazerBrain()
	w := calmWorld()
	e := &world.Entity{Position: physics.Vec2{X: 640, Y: 360}}
	ctx := &Context{Self: e, World: w}

	for i := 0; i < 10; i++ {
		require.Equal(t, bt.StatusRunning, brain.Tick(ctx, frame))
	}
	assert.Equal(t, 0, e.WaypointIndex)
	assert.Equal(t, world.ActivityPatrol, e.Activity)

	for arrival := 1; arrival <= 9; arrival++ {
		e.Position = w.Waypoint(e.WaypointIndex)
		require.Equal(t, bt.StatusRunning, brain.Tick(ctx, frame))
		assert.Equal(t, arrival%len(w.Waypoints), e.WaypointIndex)
		assert.Equal(t, 0, e.Memory.Get(0), "patrol resets its slot after advancing")

		// Still standing on the old waypoint, now far from the new one: no further advance.
		require.Equal(t, bt.StatusRunning, brain.Tick(ctx, frame))
		assert.Equal(t, arrival%len(w.Waypoints), e.WaypointIndex)
	}
}

func TestGrazerPatrolUnderIntegration(t *testing.T) {
	brain := NewGrazerBrain()
	w := calmWorld()
	e := world.NewSpawner(1, w.Params, len(w.Waypoints)).Spawn("walker")
	e.Hunger = 0
	ctx := &Context{Self: e, World: w}

	advances := 0
	for i := 0; i < 120*60; i++ {
		before := e.WaypointIndex
		brain.Tick(ctx, frame)
		if e.WaypointIndex != before {
			require.Equal(t, (before+1)%len(w.Waypoints), e.WaypointIndex, "waypoint skipped at tick %d", i)
			advances++
		}
		e.Integrate(frame, w.Params)
		w.Update(frame)
	}
	assert.Positive(t, advances)
}

func TestGrazersShareOneBrain(t *testing.T) {
	brain := NewGrazerBrain()
	w := calmWorld()
	a := &world.Entity{Position: w.Waypoint(0)}
	b := &world.Entity{Position: physics.Vec2{X: 640, Y: 360}}

	brain.Tick(&Context{Self: a, World: w}, frame)
	brain.Tick(&Context{Self: b, World: w}, frame)

	assert.Equal(t, 1, a.WaypointIndex)
	assert.Equal(t, 0, b.WaypointIndex)
	assert.Equal(t, bt.Memory{}, b.Memory)
}
