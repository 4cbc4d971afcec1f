package physics

// Steering forces return an acceleration to be added to a body's accumulated acceleration.

// coincident is the squared distance under which a flee direction is undefined.
const coincident = 0.0001

// Seek steers b toward target at up to maxSpeed.
func Seek(b Body, target Vec2, maxSpeed, weight float64) Vec2 {
	desired := target.Sub(b.Pos()).Normalize().Scale(maxSpeed)
	return desired.Sub(b.Vel()).Scale(weight)
}

// Flee steers b away from threat at up to maxSpeed. When b sits on top of the threat the
// direction falls back to +X.
func Flee(b Body, threat Vec2, maxSpeed, weight float64) Vec2 {
	d := b.Pos().Sub(threat)
	if d.LenSqr() < coincident {
		d = Vec2{X: 1}
	}
	desired := d.Normalize().Scale(maxSpeed)
	return desired.Sub(b.Vel()).Scale(weight)
}

// Drag opposes b's velocity.
func Drag(b Body, coefficient float64) Vec2 {
	return b.Vel().Scale(-coefficient)
}
