// Package geom holds the vector, polygon and rotation helpers shared by the
// collision, movement and effect code. Vectors are mgl64 values; every helper
// here is total: degenerate input yields the zero vector instead of NaN.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec2 = mgl64.Vec2
	Vec3 = mgl64.Vec3
)

// Dim selects how a scenario interprets a Vec3 position.
type Dim uint8

const (
	// Dim2 uses X,Y as the plane; Z is ignored.
	Dim2 Dim = iota
	// Dim3 uses X,Z as the ground plane; Y is height.
	Dim3
)

func (d Dim) String() string {
	if d == Dim3 {
		return "3d"
	}
	return "2d"
}

// ParseDim accepts "2d"/"3d"; anything else is Dim2.
func ParseDim(s string) Dim {
	if s == "3d" || s == "3D" {
		return Dim3
	}
	return Dim2
}

// Ground projects p onto the scenario's movement plane.
func Ground(p Vec3, d Dim) Vec2 {
	if d == Dim3 {
		return Vec2{p[0], p[2]}
	}
	return Vec2{p[0], p[1]}
}

// Lift maps a plane vector back into world space with zero height.
func Lift(v Vec2, d Dim) Vec3 {
	if d == Dim3 {
		return Vec3{v[0], 0, v[1]}
	}
	return Vec3{v[0], v[1], 0}
}

// PlaneDistance is the distance between a and b measured in the plane of d
// (XY for 2D, XZ for 3D).
func PlaneDistance(a, b Vec3, d Dim) float64 {
	return Ground(b, d).Sub(Ground(a, d)).Len()
}

// DistanceSq is the full squared distance between a and b.
func DistanceSq(a, b Vec3) float64 {
	diff := b.Sub(a)
	return diff.Dot(diff)
}

func Normalize2(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return Vec2{}
	}
	return v.Mul(1 / l)
}

func Normalize3(v Vec3) Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// IsZero3 reports whether all components are exactly zero.
func IsZero3(v Vec3) bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

// Slide removes the component of v pointing along mtv so motion continues
// tangentially to the obstacle. A zero mtv leaves v unchanged.
func Slide(v, mtv Vec3) Vec3 {
	n := Normalize3(mtv)
	if IsZero3(n) {
		return v
	}
	return v.Sub(n.Mul(v.Dot(n)))
}

// Toward returns the unit direction from -> to in the plane of d, lifted back
// to world space, scaled by speed. Coincident points give the zero vector.
func Toward(from, to Vec3, d Dim, speed float64) Vec3 {
	dir := Normalize2(Ground(to, d).Sub(Ground(from, d)))
	return Lift(dir, d).Mul(speed)
}

// Toward3 is Toward without plane projection, used for projectiles.
func Toward3(from, to Vec3, speed float64) Vec3 {
	return Normalize3(to.Sub(from)).Mul(speed)
}
