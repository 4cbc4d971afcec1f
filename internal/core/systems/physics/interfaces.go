package physics

// Body is anything with a position and a velocity that steering can act on.
type Body interface {
	Pos() Vec2
	Vel() Vec2
}
