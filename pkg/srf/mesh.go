package srf

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Triangle is one facet of a Mesh, wound counter-clockwise about its
// outward Normal.
type Triangle struct {
	A, B, C v3.Vec
	Normal  v3.Vec
	// Surface is the surface the triangle approximates, if any.
	Surface HSurface
}

// NewTriangle returns the triangle abc with its normal computed from the
// winding.
func NewTriangle(a, b, c v3.Vec) Triangle {
	return Triangle{A: a, B: b, C: c, Normal: unit(b.Sub(a).Cross(c.Sub(a)))}
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return 0.5 * t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length()
}

// Centroid returns the mean of the three corners.
func (t *Triangle) Centroid() v3.Vec {
	return t.A.Add(t.B).Add(t.C).MulScalar(1.0 / 3)
}

// BoundingBox returns the box around the triangle.
func (t *Triangle) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: t.A.Min(t.B).Min(t.C), Max: t.A.Max(t.B).Max(t.C)}
}

// ClosestPoint returns the point of the triangle nearest to p.
func (t *Triangle) ClosestPoint(p v3.Vec) v3.Vec {
	a, b, c := t.A, t.B, t.C
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}
	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.MulScalar(d1 / (d1 - d3)))
	}
	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.MulScalar(d2 / (d2 - d6)))
	}
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).MulScalar((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}
	den := 1 / (va + vb + vc)
	return a.Add(ab.MulScalar(vb * den)).Add(ac.MulScalar(vc * den))
}

// Distance returns the distance from p to the triangle.
func (t *Triangle) Distance(p v3.Vec) float64 {
	return t.ClosestPoint(p).Sub(p).Length()
}

// rayHit is the result of intersecting a ray with a triangle.
type rayHit int

const (
	rayMiss rayHit = iota
	rayHitFront
	rayHitBack
	rayAmbiguous
)

// raycast intersects the ray o + s*d, s > 0, with the triangle. A hit close
// to an edge, or a ray nearly parallel to the plane, is ambiguous.
func (t *Triangle) raycast(o, d v3.Vec, eps float64) rayHit {
	e1, e2 := t.B.Sub(t.A), t.C.Sub(t.A)
	pv := d.Cross(e2)
	det := e1.Dot(pv)
	scale := e1.Length() * e2.Length()
	if scale == 0 {
		return rayMiss
	}
	if math.Abs(det) < 1e-9*scale {
		// parallel; only a problem when the ray lies in the plane
		if math.Abs(o.Sub(t.A).Dot(t.Normal)) < eps {
			return rayAmbiguous
		}
		return rayMiss
	}
	inv := 1 / det
	tv := o.Sub(t.A)
	u := tv.Dot(pv) * inv
	qv := tv.Cross(e1)
	v := d.Dot(qv) * inv
	s := e2.Dot(qv) * inv
	// edge tolerance in barycentric units
	be := eps / math.Sqrt(scale)
	if u < -be || v < -be || u+v > 1+be || s < -eps {
		return rayMiss
	}
	if u < be || v < be || u+v > 1-be || s < eps {
		return rayAmbiguous
	}
	if d.Dot(t.Normal) > 0 {
		return rayHitBack
	}
	return rayHitFront
}

// Mesh is a triangle soup, usually the triangulation of a Shell.
type Mesh struct {
	L []Triangle
}

// Add appends triangles to the mesh.
func (m *Mesh) Add(t ...Triangle) {
	m.L = append(m.L, t...)
}

// Len returns the number of triangles.
func (m *Mesh) Len() int { return len(m.L) }

// Volume returns the signed volume enclosed by the mesh, positive when the
// normals point out.
func (m *Mesh) Volume() float64 {
	return lo.SumBy(m.L, func(t Triangle) float64 {
		return t.A.Dot(t.B.Cross(t.C)) / 6
	})
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	return lo.SumBy(m.L, func(t Triangle) float64 { return t.Area() })
}

// BoundingBox returns the box around every vertex.
func (m *Mesh) BoundingBox() sdf.Box3 {
	box := emptyBox()
	for _, t := range m.L {
		box = boxUnion(box, t.BoundingBox())
	}
	return box
}

// rayDirections are fixed, irrational-looking directions so that rays rarely
// graze axis-aligned geometry.
var rayDirections = []v3.Vec{
	{X: 0.5772156649, Y: 0.7071067811, Z: 0.4082482904},
	{X: -0.3183098861, Y: 0.6180339887, Z: 0.7182818284},
	{X: 0.8660254037, Y: -0.2679491924, Z: 0.4226182617},
	{X: -0.6931471805, Y: -0.4142135623, Z: 0.5877852522},
	{X: 0.2360679774, Y: 0.9318516525, Z: -0.2756373558},
	{X: -0.1415926535, Y: -0.5358983848, Z: -0.8314696123},
	{X: 0.7390851332, Y: 0.1234567890, Z: -0.6616081290},
}

// Winding returns the number of times a ray from p leaves the mesh minus the
// number of times it enters, trying the fixed directions in turn until one
// gives an unambiguous answer. For a closed outward mesh the result is 1
// inside and 0 outside. ok is false if every direction was ambiguous.
func (m *Mesh) Winding(p v3.Vec, eps float64) (w int, ok bool) {
	for _, d := range rayDirections {
		d = unit(d)
		w, ok = m.windingAlong(p, d, eps)
		if ok {
			return w, true
		}
	}
	return w, false
}

func (m *Mesh) windingAlong(p, d v3.Vec, eps float64) (int, bool) {
	w := 0
	for i := range m.L {
		switch m.L[i].raycast(p, d, eps) {
		case rayHitBack:
			w++
		case rayHitFront:
			w--
		case rayAmbiguous:
			return 0, false
		}
	}
	return w, true
}

// Contains reports whether p is strictly inside the closed mesh.
func (m *Mesh) Contains(p v3.Vec) bool {
	w, ok := m.Winding(p, CurrentTolerances().LengthEps)
	if !ok {
		logger().Warn("mesh containment: every ray was ambiguous", "point", p)
	}
	return w != 0
}

// Nearest returns the index of the triangle nearest to p and its distance,
// or -1 for an empty mesh.
func (m *Mesh) Nearest(p v3.Vec) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for i := range m.L {
		if d := m.L[i].Distance(p); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// Transform maps every vertex through f and recomputes the normals.
func (m *Mesh) Transform(f func(v3.Vec) v3.Vec) {
	for i := range m.L {
		t := &m.L[i]
		h := t.Surface
		*t = NewTriangle(f(t.A), f(t.B), f(t.C))
		t.Surface = h
	}
}
