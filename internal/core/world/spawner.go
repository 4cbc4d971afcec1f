package world

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/herd/internal/core/systems/physics"
)

// Spawner creates entities with reproducible random initial state. The same seed and name
// always yield the same entity.
type Spawner struct {
	seed   uint64
	params Params
	// waypoints is the number of waypoints an initial index is drawn from.
	waypoints int
}

func NewSpawner(seed uint64, p Params, waypoints int) *Spawner {
	return &Spawner{seed: seed, params: p, waypoints: max(waypoints, 1)}
}

// Spawn returns a new entity named name.
func (s *Spawner) Spawn(name string) *Entity {
	rng := rand.New(rand.NewPCG(s.seed, xxhash.Sum64String(name)))
	p := s.params
	return &Entity{
		ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatUint(s.seed, 10)+"/"+name)),
		Name:          name,
		WaypointIndex: rng.IntN(s.waypoints),
		Hunger:        rng.Float64(),
		Activity:      ActivityNone,
		Position:      physics.Vec2{X: rng.Float64() * p.StageWidth, Y: rng.Float64() * p.StageHeight},
		Velocity:      physics.FromAngle(rng.Float64()*2*math.Pi, p.MinSpeed),
	}
}
