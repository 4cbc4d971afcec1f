package world

import (
	"math"
	"time"

	"github.com/zeusync/herd/internal/core/systems/physics"
)

// World is the state shared by every agent: points of interest and the wolf.
// Agents only read it while ticking; the simulation loop mutates it between ticks.
type World struct {
	Params     Params
	Food       physics.Vec2
	Wolf       physics.Vec2
	WolfActive bool
	Waypoints  []physics.Vec2
	// Elapsed is simulation time, advanced only through Update.
	Elapsed time.Duration
}

// New places food, the wolf and four corner waypoints on the stage.
func New(p Params) *World {
	m := p.Margin()
	w := &World{
		Params:     p,
		Food:       physics.Vec2{X: p.StageWidth * 0.25, Y: p.StageHeight * 0.5},
		WolfActive: true,
		Waypoints: []physics.Vec2{
			{X: m, Y: m},
			{X: p.StageWidth - m, Y: m},
			{X: p.StageWidth - m, Y: p.StageHeight - m},
			{X: m, Y: p.StageHeight - m},
		},
	}
	w.Wolf = w.wolfAt(0)
	return w
}

// Update advances simulation time by dt and moves the wolf along its path.
func (w *World) Update(dt time.Duration) {
	w.Elapsed += dt
	w.Wolf = w.wolfAt(w.Elapsed.Seconds())
}

func (w *World) wolfAt(t float64) physics.Vec2 {
	p := w.Params
	cx, cy := p.StageWidth*0.5, p.StageHeight*0.5
	return physics.Vec2{
		X: cx + math.Cos(t*p.WolfSpeed.X)*p.StageWidth*p.WolfRange.X,
		Y: cy + math.Sin(t*p.WolfSpeed.Y)*p.StageHeight*p.WolfRange.Y,
	}
}

// ToggleWolf flips the wolf on or off and returns the new state.
func (w *World) ToggleWolf() bool {
	w.WolfActive = !w.WolfActive
	return w.WolfActive
}

// SetFood moves the food to pos.
func (w *World) SetFood(pos physics.Vec2) { w.Food = pos }

// Waypoint returns waypoint i, wrapping the index around the waypoint list.
func (w *World) Waypoint(i int) physics.Vec2 {
	n := len(w.Waypoints)
	return w.Waypoints[((i%n)+n)%n]
}

// Wrap teleports a position that left the stage to the opposite edge.
func Wrap(pos physics.Vec2, p Params) physics.Vec2 {
	if pos.X < p.EntitySize {
		pos.X += p.StageWidth
	}
	if pos.Y < p.EntitySize {
		pos.Y += p.StageHeight
	}
	if pos.X >= p.StageWidth {
		pos.X -= p.StageWidth + p.EntitySize
	}
	if pos.Y >= p.StageHeight {
		pos.Y -= p.StageHeight + p.EntitySize
	}
	return pos
}
