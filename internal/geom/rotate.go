package geom

import "github.com/go-gl/mathgl/mgl64"

// DefaultAxis is the normal of the plane orbitals are laid out in (XZ).
var DefaultAxis = Vec3{0, 1, 0}

// ShortestArc returns the rotation taking direction from onto direction to.
// Equal directions give the identity; opposite directions give a half turn
// about some axis perpendicular to from. A zero input gives the identity.
func ShortestArc(from, to Vec3) mgl64.Quat {
	f := Normalize3(from)
	t := Normalize3(to)
	if IsZero3(f) || IsZero3(t) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(f, t)
}

// AlignFromDefault rotates v, expressed relative to DefaultAxis, so that
// DefaultAxis maps onto axis.
func AlignFromDefault(v, axis Vec3) Vec3 {
	if IsZero3(axis) {
		return v
	}
	return ShortestArc(DefaultAxis, axis).Rotate(v)
}
