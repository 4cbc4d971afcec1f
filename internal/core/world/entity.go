package world

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/herd/internal/core/bt"
	"github.com/zeusync/herd/internal/core/systems/physics"
)

// Activity is a human-readable tag of what an entity is doing, set by action leaves.
type Activity string

const (
	ActivityNone     Activity = "None"
	ActivityFlee     Activity = "FLEE"
	ActivityPatrol   Activity = "PATROL"
	ActivitySeekFood Activity = "SEEK FOOD"
)

// Entity is one grazing agent. Leaves write Acceleration and domain fields during a tick;
// Integrate applies them afterwards.
type Entity struct {
	ID   uuid.UUID
	Name string

	// Memory holds resumption indices for the brain's memory sequences.
	Memory bt.Memory

	WaypointIndex int
	Hunger        float64
	Hungry        bool
	Activity      Activity

	Position     physics.Vec2
	Velocity     physics.Vec2
	Acceleration physics.Vec2
}

func (e *Entity) Slots() *bt.Memory { return &e.Memory }
func (e *Entity) Pos() physics.Vec2 { return e.Position }
func (e *Entity) Vel() physics.Vec2 { return e.Velocity }

// Integrate applies the accumulated acceleration, clamps speed, moves and wraps the entity,
// clears acceleration for the next tick and grows hunger.
func (e *Entity) Integrate(dt time.Duration, p Params) {
	s := dt.Seconds()
	e.Velocity = e.Velocity.Add(e.Acceleration.Scale(s)).ClampLength(p.MinSpeed, p.MaxSpeed)
	e.Position = Wrap(e.Position.Add(e.Velocity.Scale(s)), p)
	e.Acceleration = physics.Zero
	e.Hunger = min(max(e.Hunger+p.HungerPerSecond*s, 0), 1)
}
