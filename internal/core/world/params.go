package world

import "github.com/zeusync/herd/internal/core/systems/physics"

// Params tunes the world and the grazer leaves. It is fixed for the duration of a run.
type Params struct {
	StageWidth  float64 `yaml:"stage_width" validate:"gt=0"`
	StageHeight float64 `yaml:"stage_height" validate:"gt=0"`
	EntitySize  float64 `yaml:"entity_size" validate:"gt=0"`

	MinSpeed        float64 `yaml:"min_speed" validate:"gte=0"`
	MaxSpeed        float64 `yaml:"max_speed" validate:"gtfield=MinSpeed"`
	HungerPerSecond float64 `yaml:"hunger_per_second" validate:"gte=0"`
	Drag            float64 `yaml:"drag" validate:"gte=0"`
	SeekWeight      float64 `yaml:"seek_weight" validate:"gt=0"`
	FleeWeight      float64 `yaml:"flee_weight" validate:"gt=0"`

	ThreatRadius      float64 `yaml:"threat_radius" validate:"gt=0"`
	HungerEnter       float64 `yaml:"hunger_enter" validate:"gt=0,lte=1"`
	HungerExit        float64 `yaml:"hunger_exit" validate:"gte=0,ltfield=HungerEnter"`
	FoodRadius        float64 `yaml:"food_radius" validate:"gt=0"`
	WaypointRadius    float64 `yaml:"waypoint_radius" validate:"gt=0"`
	PatrolSpeedFactor float64 `yaml:"patrol_speed_factor" validate:"gt=0,lte=1"`
	FoodSpeedFactor   float64 `yaml:"food_speed_factor" validate:"gt=0,lte=1"`

	// WolfSpeed is the angular speed of the wolf's Lissajous path per axis, in radians per second.
	WolfSpeed physics.Vec2 `yaml:"wolf_speed"`
	// WolfRange is the path amplitude per axis as a fraction of the stage size.
	WolfRange physics.Vec2 `yaml:"wolf_range"`
}

// DefaultParams returns the tuning of the reference demo.
func DefaultParams() Params {
	return Params{
		StageWidth:        1280,
		StageHeight:       720,
		EntitySize:        10,
		MinSpeed:          24,
		MaxSpeed:          200,
		HungerPerSecond:   0.04,
		Drag:              0.01,
		SeekWeight:        1.0,
		FleeWeight:        1.2,
		ThreatRadius:      180,
		HungerEnter:       0.65,
		HungerExit:        0.45,
		FoodRadius:        16,
		WaypointRadius:    12,
		PatrolSpeedFactor: 0.65,
		FoodSpeedFactor:   0.7,
		WolfSpeed:         physics.Vec2{X: 0.7, Y: 1.1},
		WolfRange:         physics.Vec2{X: 0.28, Y: 0.22},
	}
}

// Stage returns the stage size as a vector.
func (p Params) Stage() physics.Vec2 { return physics.Vec2{X: p.StageWidth, Y: p.StageHeight} }

// Margin is the waypoint inset from the stage edges.
func (p Params) Margin() float64 { return p.EntitySize * 10 }
