package srf

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Contour is a closed polyline; the segment from the last point back to the
// first is implied.
type Contour []v3.Vec

// Polygon is a set of contours in a common plane, possibly nested.
type Polygon struct {
	Contours []Contour
}

// newell returns the area-weighted normal of the contour; its length is
// twice the enclosed area.
func (c Contour) newell() v3.Vec {
	var n v3.Vec
	for i, a := range c {
		b := c[(i+1)%len(c)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Normal returns the unit normal of the contour by Newell's method; the
// contour winds counter-clockwise about it.
func (c Contour) Normal() v3.Vec {
	return unit(c.newell())
}

// SignedArea returns the area of the contour projected on the plane with
// normal n. It is positive when the contour winds counter-clockwise about n.
func (c Contour) SignedArea(n v3.Vec) float64 {
	return 0.5 * c.newell().Dot(unit(n))
}

// Reverse reverses the contour in place.
func (c Contour) Reverse() {
	lo.Reverse(c)
}

// planeBasis returns two unit vectors spanning the plane with normal n,
// such that u x v points along n.
func planeBasis(n v3.Vec) (v3.Vec, v3.Vec) {
	u := anyPerpendicular(n)
	v := unit(n).Cross(u)
	return u, v
}

// ContainsPoint reports whether p, projected onto the plane with normal n,
// lies inside the contour. Points on the boundary may go either way.
func (c Contour) ContainsPoint(p, n v3.Vec) bool {
	u, v := planeBasis(n)
	px, py := p.Dot(u), p.Dot(v)
	inside := false
	for i, a := range c {
		b := c[(i+1)%len(c)]
		ax, ay := a.Dot(u), a.Dot(v)
		bx, by := b.Dot(u), b.Dot(v)
		if (ay > py) != (by > py) {
			x := ax + (py-ay)*(bx-ax)/(by-ay)
			if px < x {
				inside = !inside
			}
		}
	}
	return inside
}

// interiorPoint returns a point strictly inside the contour, near its first
// vertex, for nesting tests that must not land on another contour's edge.
func (c Contour) interiorPoint(n v3.Vec) v3.Vec {
	if len(c) < 3 {
		return c[0]
	}
	ccw := c.SignedArea(n) > 0
	for i := range c {
		a, b, d := c[(i+len(c)-1)%len(c)], c[i], c[(i+1)%len(c)]
		turn := b.Sub(a).Cross(d.Sub(b)).Dot(n)
		if (turn > 0) != ccw || turn == 0 {
			continue
		}
		// convex corner: try the centroid of the corner triangle
		q := a.Add(b).Add(d).MulScalar(1.0 / 3)
		if c.ContainsPoint(q, n) {
			return q
		}
	}
	return c[0]
}

// Normal returns the Newell normal of all contours taken together.
func (p *Polygon) Normal() v3.Vec {
	var n v3.Vec
	for _, c := range p.Contours {
		n = n.Add(c.newell())
	}
	return unit(n)
}

// Depth returns how many other contours of p enclose contour i.
func (p *Polygon) Depth(i int, n v3.Vec) int {
	eps := CurrentTolerances().LengthEps
	return lo.CountBy(lo.Range(len(p.Contours)), func(j int) bool {
		return j != i && p.Contours[j].encloses(p.Contours[i], n, eps)
	})
}

// encloses reports whether d lies inside c. The contours must not cross, so
// any vertex of d off the boundary of c decides. When every vertex of d is
// on c the contours coincide and d's interior point decides instead.
func (c Contour) encloses(d Contour, n v3.Vec, eps float64) bool {
	if len(c) < 3 || len(d) == 0 {
		return false
	}
	ring := append(c[:len(c):len(c)], c[0])
	for _, q := range d {
		if distToPolyline(q, ring) > eps {
			return c.ContainsPoint(q, n)
		}
	}
	return c.ContainsPoint(d.interiorPoint(n), n)
}

// FixContourDirections orients every contour so that outer boundaries wind
// counter-clockwise about n and holes clockwise.
func (p *Polygon) FixContourDirections(n v3.Vec) {
	depths := lo.Times(len(p.Contours), func(i int) int { return p.Depth(i, n) })
	for i, c := range p.Contours {
		wantCCW := depths[i]%2 == 0
		if (c.SignedArea(n) > 0) != wantCCW {
			c.Reverse()
		}
	}
}
