package sim

import "github.com/zeusync/herd/internal/core/world"

// Event types published on the bus after each step.
const (
	EventActivityChanged = "agent.activity_changed"
	EventWaypointReached = "agent.waypoint_reached"
	EventAte             = "agent.ate"
)

// ActivityChanged is published when an agent's activity tag differs from the previous tick.
type ActivityChanged struct {
	Agent string         `json:"agent"`
	Tick  uint64         `json:"tick"`
	From  world.Activity `json:"from"`
	To    world.Activity `json:"to"`
}

// WaypointReached is published when an agent advances its patrol.
type WaypointReached struct {
	Agent    string `json:"agent"`
	Tick     uint64 `json:"tick"`
	Waypoint int    `json:"waypoint"`
	Next     int    `json:"next"`
}

// Ate is published when an agent reaches the food and its hunger resets.
type Ate struct {
	Agent string `json:"agent"`
	Tick  uint64 `json:"tick"`
}
