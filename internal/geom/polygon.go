package geom

import "math"

// Polygon is a convex polygon given by its vertices in order (either winding).
type Polygon []Vec2

// Box returns the axis-aligned square polygon of half-extent h around c.
func Box(c Vec2, h float64) Polygon {
	return Polygon{
		{c[0] - h, c[1] - h},
		{c[0] + h, c[1] - h},
		{c[0] + h, c[1] + h},
		{c[0] - h, c[1] + h},
	}
}

// Translate returns a copy of p moved by d.
func (p Polygon) Translate(d Vec2) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(d)
	}
	return out
}

// Centroid is the vertex average.
func (p Polygon) Centroid() Vec2 {
	var c Vec2
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(p)))
}

// Bounds returns the min and max corners.
func (p Polygon) Bounds() (lo, hi Vec2) {
	if len(p) == 0 {
		return
	}
	lo, hi = p[0], p[0]
	for _, v := range p[1:] {
		lo = Vec2{math.Min(lo[0], v[0]), math.Min(lo[1], v[1])}
		hi = Vec2{math.Max(hi[0], v[0]), math.Max(hi[1], v[1])}
	}
	return lo, hi
}

// Convex reports whether p is a simple convex polygon with non-zero area.
// Collinear vertices are allowed.
func (p Polygon) Convex() bool {
	if len(p) < 3 {
		return false
	}
	var sign, turn float64
	for i := range p {
		e1 := p[(i+1)%len(p)].Sub(p[i])
		e2 := p[(i+2)%len(p)].Sub(p[(i+1)%len(p)])
		cross := e1[0]*e2[1] - e1[1]*e2[0]
		if cross == 0 {
			continue
		}
		if sign != 0 && (cross > 0) != (sign > 0) {
			return false
		}
		sign = cross
		turn += math.Atan2(cross, e1.Dot(e2))
	}
	// a star winds more than once with every turn the same way
	return sign != 0 && math.Abs(math.Abs(turn)-2*math.Pi) < 1e-6
}

func (p Polygon) project(axis Vec2) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range p {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

func (p Polygon) axes(dst []Vec2) []Vec2 {
	for i := range p {
		edge := p[(i+1)%len(p)].Sub(p[i])
		n := Normalize2(Vec2{-edge[1], edge[0]})
		if n == (Vec2{}) {
			continue
		}
		dst = append(dst, n)
	}
	return dst
}

// Intersect runs a separating-axis test on two convex polygons. When they
// overlap it returns the minimum translation vector that, added to a, pushes
// a out of b. Touching edges do not count as overlap.
func Intersect(a, b Polygon) (mtv Vec2, ok bool) {
	if len(a) < 3 || len(b) < 3 {
		return Vec2{}, false
	}
	axes := a.axes(make([]Vec2, 0, len(a)+len(b)))
	axes = b.axes(axes)

	best := math.Inf(1)
	var bestAxis Vec2
	for _, axis := range axes {
		aLo, aHi := a.project(axis)
		bLo, bHi := b.project(axis)
		overlap := math.Min(aHi, bHi) - math.Max(aLo, bLo)
		if overlap <= 0 {
			return Vec2{}, false
		}
		if overlap < best {
			best = overlap
			bestAxis = axis
		}
	}
	// orient the axis from b towards a
	if a.Centroid().Sub(b.Centroid()).Dot(bestAxis) < 0 {
		bestAxis = bestAxis.Mul(-1)
	}
	return bestAxis.Mul(best), true
}
