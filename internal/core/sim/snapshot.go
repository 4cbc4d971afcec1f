package sim

import (
	"github.com/zeusync/herd/internal/core/systems/physics"
	"github.com/zeusync/herd/internal/core/world"
)

// Snapshot is a read-only copy of the simulation, safe to hand to other goroutines.
type Snapshot struct {
	Tick       uint64         `json:"tick"`
	Elapsed    float64        `json:"elapsed"`
	Paused     bool           `json:"paused"`
	Stage      physics.Vec2   `json:"stage"`
	Food       physics.Vec2   `json:"food"`
	Wolf       physics.Vec2   `json:"wolf"`
	WolfActive bool           `json:"wolf_active"`
	Waypoints  []physics.Vec2 `json:"waypoints"`
	Agents     []AgentView    `json:"agents"`
}

// AgentView is the observable state of one agent.
type AgentView struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Activity world.Activity `json:"activity"`
	Position physics.Vec2   `json:"position"`
	Velocity physics.Vec2   `json:"velocity"`
	Hunger   float64        `json:"hunger"`
	Hungry   bool           `json:"hungry"`
	Waypoint int            `json:"waypoint"`
}

func viewOf(e *world.Entity) AgentView {
	return AgentView{
		ID:       e.ID.String(),
		Name:     e.Name,
		Activity: e.Activity,
		Position: e.Position,
		Velocity: e.Velocity,
		Hunger:   e.Hunger,
		Hungry:   e.Hungry,
		Waypoint: e.WaypointIndex,
	}
}
