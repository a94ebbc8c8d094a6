package entities

import "math"

// Vec3 is a position or direction in stage space. Y is up.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Add returns v + o
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Len is the euclidean length
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Dist is the euclidean distance to o
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// HorizontalDist ignores height
func (v Vec3) HorizontalDist(o Vec3) float64 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Flat drops the vertical component
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Dot product
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Normalize returns the unit vector, or the zero vector for zero input
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// YawToward returns the heading (radians around Y) that faces from v to o.
// Yaw 0 faces +Z.
func (v Vec3) YawToward(o Vec3) float64 {
	return math.Atan2(o.X-v.X, o.Z-v.Z)
}

// Forward is the horizontal unit vector for a yaw
func Forward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}
