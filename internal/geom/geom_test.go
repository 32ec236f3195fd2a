package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlide(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		mtv  Vec3
		want Vec3
	}{
		{"head-on cancels", Vec3{1, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 0}},
		{"opposing mtv also cancels", Vec3{1, 0, 0}, Vec3{-3, 0, 0}, Vec3{0, 0, 0}},
		{"orthogonal unchanged", Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{1, 0, 0}},
		{"zero mtv unchanged", Vec3{2, 3, 0}, Vec3{}, Vec3{2, 3, 0}},
		{"diagonal keeps tangent", Vec3{1, 1, 0}, Vec3{0, -0.5, 0}, Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slide(tt.v, tt.mtv)
			assert.InDelta(t, tt.want[0], got[0], 1e-9)
			assert.InDelta(t, tt.want[1], got[1], 1e-9)
			assert.InDelta(t, tt.want[2], got[2], 1e-9)
		})
	}
}

func TestNormalizeZeroIsZero(t *testing.T) {
	assert.Equal(t, Vec2{}, Normalize2(Vec2{}))
	assert.Equal(t, Vec3{}, Normalize3(Vec3{}))
	assert.Equal(t, Vec3{}, Toward(Vec3{1, 1, 0}, Vec3{1, 1, 0}, Dim2, 5))
}

func TestPlaneDistance3DIgnoresHeight(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{3, 100, 4}
	assert.InDelta(t, 5.0, PlaneDistance(a, b, Dim3), 1e-9)
	assert.InDelta(t, math.Sqrt(9+10000), PlaneDistance(a, b, Dim2), 1e-9)
}

func TestIntersect(t *testing.T) {
	wall := Box(Vec2{0, 0}, 10)

	mtv, ok := Intersect(Box(Vec2{18, 0}, 10), wall)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, mtv[0], 1e-9, "pushed out along +X")
	assert.InDelta(t, 0.0, mtv[1], 1e-9)

	_, ok = Intersect(Box(Vec2{20, 0}, 10), wall)
	assert.False(t, ok, "touching is not overlapping")

	_, ok = Intersect(Box(Vec2{50, 50}, 10), wall)
	assert.False(t, ok)

	_, ok = Intersect(Polygon{{0, 0}, {1, 1}}, wall)
	assert.False(t, ok, "degenerate polygon never intersects")
}

func TestPolygon_Convex(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want bool
	}{
		{"box", Box(Vec2{3, 3}, 2), true},
		{"clockwise triangle", Polygon{{0, 0}, {0, 4}, {4, 0}}, true},
		{"collinear vertex", Polygon{{0, 0}, {2, 0}, {4, 0}, {4, 4}, {0, 4}}, true},
		{"l-shape", Polygon{{0, 0}, {100, 0}, {100, 40}, {40, 40}, {40, 100}, {0, 100}}, false},
		{"pentagram", Polygon{{0, 10}, {6, -8}, {-9, 3}, {9, 3}, {-6, -8}}, false},
		{"flat", Polygon{{0, 0}, {1, 1}, {2, 2}}, false},
		{"two points", Polygon{{0, 0}, {1, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.poly.Convex())
		})
	}
}

func TestShortestArc(t *testing.T) {
	v := Vec3{1, 0, 0}

	same := AlignFromDefault(v, DefaultAxis)
	assert.InDelta(t, 1.0, same[0], 1e-9)

	// +Y -> +X rotates the XZ plane so +X lands on -Y
	r := AlignFromDefault(v, Vec3{1, 0, 0})
	assert.InDelta(t, 0.0, r[0], 1e-9)
	assert.InDelta(t, -1.0, r[1], 1e-9)

	// anti-parallel: DefaultAxis itself must end up flipped
	flipped := ShortestArc(DefaultAxis, Vec3{0, -1, 0}).Rotate(DefaultAxis)
	assert.InDelta(t, -1.0, flipped[1], 1e-6)

	assert.Equal(t, v, AlignFromDefault(v, Vec3{}))
}

func TestParseDim(t *testing.T) {
	assert.Equal(t, Dim3, ParseDim("3d"))
	assert.Equal(t, Dim2, ParseDim("2d"))
	assert.Equal(t, Dim2, ParseDim(""))
}
