// Package geom holds the planar and spatial vector types used across the
// swarm, and the affine map between world meters and grid cells.
package geom

import "math"

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2             { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2             { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2        { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64          { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Norm() float64               { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64         { return v.Sub(o).Norm() }
func (v Vec2) WithZ(z float64) Vec3        { return Vec3{v.X, v.Y, z} }
func (v Vec2) IsZero() bool                { return v.X == 0 && v.Y == 0 }
func (v Vec2) Equal(o Vec2) bool           { return v.X == o.X && v.Y == o.Y }
func (v Vec2) Perp() Vec2                  { return Vec2{-v.Y, v.X} }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

// Unit returns v scaled to length one, and false when v has zero length.
func (v Vec2) Unit() (Vec2, bool) {
	n := v.Norm()
	if n == 0 {
		return Vec2{}, false
	}
	return v.Scale(1 / n), true
}

// Heading returns the unit vector pointing along yaw (radians, CCW from +x).
func Heading(yaw float64) Vec2 {
	return Vec2{math.Cos(yaw), math.Sin(yaw)}
}

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }
func (v Vec3) Norm() float64        { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) XY() Vec2             { return Vec2{v.X, v.Y} }

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
