// Package vmath provides the 2D vector type used by the solver.
package vmath

import "math"

// Vec2 is a 2D vector value.
type Vec2 struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
}

func V(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

func Zero() Vec2 { return Vec2{} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Div divides both components by s. A zero divisor yields Inf or NaN
// components; callers guard against it.
func (v Vec2) Div(s float32) Vec2 { return Vec2{v.X / s, v.Y / s} }

func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) LenSq() float32 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// FromAngle returns a unit vector pointing at angle radians.
func FromAngle(angle float32) Vec2 {
	s, c := math.Sincos(float64(angle))
	return Vec2{float32(c), float32(s)}
}

func isFinite(f float32) bool {
	x := float64(f)
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
