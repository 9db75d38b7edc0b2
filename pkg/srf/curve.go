package srf

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// SCurve is a curve that trims the surfaces on either side of it. It is
// owned by a Shell; surfaces refer to it by handle.
type SCurve struct {
	H HCurve
	// Exact is the curve's parametric form. Exact.Deg == 0 means the curve
	// is known only through Pts, as for intersection curves.
	Exact Bezier
	// Pts is the linearized curve, first to last.
	Pts []v3.Vec
	// SrfA and SrfB are the surfaces bordering the curve. SrfB is zero when
	// only one surface is trimmed by it; SrfA == SrfB for a self-trim.
	SrfA, SrfB HSurface
}

// NewSCurve returns an SCurve for the exact curve b, linearized with the
// current tolerances.
func NewSCurve(b Bezier, srfA, srfB HSurface) SCurve {
	return SCurve{
		Exact: b,
		Pts:   b.MakePwlInto(nil),
		SrfA:  srfA,
		SrfB:  srfB,
	}
}

// IsExact reports whether the curve has a parametric form.
func (c *SCurve) IsExact() bool { return c.Exact.Deg != 0 }

// Start returns the first point of the curve.
func (c *SCurve) Start() v3.Vec { return c.Pts[0] }

// Finish returns the last point of the curve.
func (c *SCurve) Finish() v3.Vec { return c.Pts[len(c.Pts)-1] }

// Borders reports whether s is one of the curve's surfaces.
func (c *SCurve) Borders(s HSurface) bool {
	return s != 0 && (c.SrfA == s || c.SrfB == s)
}

// Other returns the surface on the opposite side from s.
func (c *SCurve) Other(s HSurface) HSurface {
	if c.SrfA == s {
		return c.SrfB
	}
	return c.SrfA
}

// Reverse reverses the direction of the curve in place.
func (c *SCurve) Reverse() {
	if c.IsExact() {
		c.Exact.Reverse()
	}
	c.Pts = lo.Reverse(append([]v3.Vec(nil), c.Pts...))
}

// BoundingBox returns the box around the linearized curve.
func (c *SCurve) BoundingBox() sdf.Box3 {
	box := emptyBox()
	for _, p := range c.Pts {
		box = boxInclude(box, p)
	}
	return box
}

// nearestIndex returns the index of the point of the polyline nearest to p.
func nearestIndex(pts []v3.Vec, p v3.Vec) int {
	best, bestD := 0, math.Inf(1)
	for i, q := range pts {
		if d := q.Sub(p).Length(); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Segment returns the piece of the linearized curve from start to finish,
// in that order. When backwards is set the curve is travelled last to first.
func (c *SCurve) Segment(start, finish v3.Vec, backwards bool) []v3.Vec {
	pts := c.Pts
	if backwards {
		pts = lo.Reverse(append([]v3.Vec(nil), pts...))
	}
	i := nearestIndex(pts, start)
	j := nearestIndex(pts, finish)
	if j <= i {
		// a closed curve, or a range that wraps: take it all
		return append([]v3.Vec(nil), pts...)
	}
	return append([]v3.Vec(nil), pts[i:j+1]...)
}

// TrimBy says which part of an SCurve bounds a surface. Travelling from
// Start to Finish the trimmed region lies to the left, seen from outside the
// solid; Out points away from the region at Start.
type TrimBy struct {
	Curve     HCurve
	Backwards bool
	Start     v3.Vec
	Finish    v3.Vec
	Out       v3.Vec
}

// TrimByCurve returns a TrimBy covering all of c.
func TrimByCurve(c *SCurve, backwards bool, out v3.Vec) TrimBy {
	tb := TrimBy{Curve: c.H, Backwards: backwards, Start: c.Start(), Finish: c.Finish(), Out: out}
	if backwards {
		tb.Start, tb.Finish = tb.Finish, tb.Start
	}
	return tb
}

// Polyline returns the linearized trim, Start to Finish.
func (tb *TrimBy) Polyline(sh *Shell) []v3.Vec {
	return sh.Curve.MustFind(tb.Curve).Segment(tb.Start, tb.Finish, tb.Backwards)
}
