package model

import "math"

// Vector is a point or direction in world space (centimeters).
// Value type, passed by value.
type Vector struct {
	X float64
	Y float64
	Z float64
}

// NewVector creates a Vector with the given coordinates.
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normal returns v scaled to unit length, or the zero vector if v is zero.
func (v Vector) Normal() Vector {
	l := v.Length()
	if l == 0 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// DistanceSquared returns the squared distance to another point (no sqrt on the hot path).
func (v Vector) DistanceSquared(o Vector) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance2DSquared ignores Z. Used by fog of war and projectile hit checks.
func (v Vector) Distance2DSquared(o Vector) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Rotator is an orientation in degrees.
type Rotator struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Vector returns the unit forward direction for the rotation.
func (r Rotator) Vector() Vector {
	pitch := r.Pitch * math.Pi / 180
	yaw := r.Yaw * math.Pi / 180
	cp := math.Cos(pitch)
	return Vector{
		X: cp * math.Cos(yaw),
		Y: cp * math.Sin(yaw),
		Z: math.Sin(pitch),
	}
}

// RotatorFromDirection returns the yaw/pitch rotation that faces dir.
func RotatorFromDirection(dir Vector) Rotator {
	return Rotator{
		Yaw:   math.Atan2(dir.Y, dir.X) * 180 / math.Pi,
		Pitch: math.Atan2(dir.Z, math.Sqrt(dir.X*dir.X+dir.Y*dir.Y)) * 180 / math.Pi,
	}
}
