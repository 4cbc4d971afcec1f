package physics

import "math"

// Lightweight 2D vector math shared by the world and the steering helpers.

// Vec2 is a 2D vector value.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Zero is the zero vector.
var Zero = Vec2{}

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2    { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) LenSqr() float64         { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Distance(o Vec2) float64 { return Distance2(v.X, v.Y, o.X, o.Y) }

// Normalize returns the unit vector in v's direction. The zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return Vec2{v.X / l, v.Y / l}
}

// ClampLength keeps v's direction and clamps its length to [min, max].
// A zero vector has no direction and is returned unchanged.
func (v Vec2) ClampLength(min, max float64) Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	switch {
	case l < min:
		return v.Scale(min / l)
	case l > max:
		return v.Scale(max / l)
	}
	return v
}

// FromAngle builds a vector of the given magnitude pointing at angle radians.
func FromAngle(angle, magnitude float64) Vec2 {
	return Vec2{math.Cos(angle) * magnitude, math.Sin(angle) * magnitude}
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }
