package srf

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Surface is a rational tensor-product Bezier patch of degree up to 3 in each
// direction, bounded by its trims. TangentWrtUAt x TangentWrtVAt points out
// of the solid.
type Surface struct {
	H          HSurface
	DegM, DegN int
	Ctrl       [4][4]v3.Vec
	Weight     [4][4]float64
	// Trim is the boundary, one or more closed loops. An empty list means
	// the whole unit square in (u, v).
	Trim []TrimBy

	Color uint32
	Face  uint32
}

// SurfaceFromPlane returns the bilinear patch with corner origin spanned by
// u and v. Its normal is u x v.
func SurfaceFromPlane(origin, u, v v3.Vec) Surface {
	var s Surface
	s.DegM, s.DegN = 1, 1
	s.Ctrl[0][0] = origin
	s.Ctrl[1][0] = origin.Add(u)
	s.Ctrl[0][1] = origin.Add(v)
	s.Ctrl[1][1] = origin.Add(u).Add(v)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			s.Weight[i][j] = 1
		}
	}
	return s
}

// SurfaceFromExtrusionOf sweeps b from translation t0 to translation t1. The
// u direction follows the curve and v the sweep.
func SurfaceFromExtrusionOf(b Bezier, t0, t1 v3.Vec) Surface {
	var s Surface
	s.DegM, s.DegN = b.Deg, 1
	for i := 0; i <= b.Deg; i++ {
		s.Ctrl[i][0] = b.Ctrl[i].Add(t0)
		s.Ctrl[i][1] = b.Ctrl[i].Add(t1)
		s.Weight[i][0] = b.Weight[i]
		s.Weight[i][1] = b.Weight[i]
	}
	return s
}

// eval returns the homogeneous numerator and denominator at (u, v) along
// with their partial derivatives.
func (s *Surface) eval(u, v float64) (num, numU, numV v3.Vec, den, denU, denV float64) {
	for i := 0; i <= s.DegM; i++ {
		bu := basis(i, s.DegM, u)
		dbu := basisDerivative(i, s.DegM, u)
		for j := 0; j <= s.DegN; j++ {
			bv := basis(j, s.DegN, v)
			dbv := basisDerivative(j, s.DegN, v)
			w := s.Weight[i][j]
			p := s.Ctrl[i][j].MulScalar(w)
			num = num.Add(p.MulScalar(bu * bv))
			numU = numU.Add(p.MulScalar(dbu * bv))
			numV = numV.Add(p.MulScalar(bu * dbv))
			den += w * bu * bv
			denU += w * dbu * bv
			denV += w * bu * dbv
		}
	}
	return
}

// PointAt evaluates the surface at (u, v).
func (s *Surface) PointAt(u, v float64) v3.Vec {
	num, _, _, den, _, _ := s.eval(u, v)
	return num.MulScalar(1 / den)
}

// TangentWrtUAt returns the partial derivative with respect to u.
func (s *Surface) TangentWrtUAt(u, v float64) v3.Vec {
	num, numU, _, den, denU, _ := s.eval(u, v)
	return numU.MulScalar(den).Sub(num.MulScalar(denU)).MulScalar(1 / (den * den))
}

// TangentWrtVAt returns the partial derivative with respect to v.
func (s *Surface) TangentWrtVAt(u, v float64) v3.Vec {
	num, _, numV, den, _, denV := s.eval(u, v)
	return numV.MulScalar(den).Sub(num.MulScalar(denV)).MulScalar(1 / (den * den))
}

// NormalAt returns the unnormalized outward normal at (u, v).
func (s *Surface) NormalAt(u, v float64) v3.Vec {
	return s.TangentWrtUAt(u, v).Cross(s.TangentWrtVAt(u, v))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// ClosestPointTo returns the parameters of the point on the surface nearest
// to p. The search starts from the best of a 9x9 grid of samples and refines
// by Gauss-Newton steps clamped to the unit square; if refinement does not
// improve on the sample, the sample is returned.
func (s *Surface) ClosestPointTo(p v3.Vec) (u, v float64) {
	const grid = 8
	bestD := math.Inf(1)
	for i := 0; i <= grid; i++ {
		for j := 0; j <= grid; j++ {
			su, sv := float64(i)/grid, float64(j)/grid
			if d := s.PointAt(su, sv).Sub(p).Length(); d < bestD {
				u, v, bestD = su, sv, d
			}
		}
	}

	cu, cv := u, v
	for it := 0; it < 20; it++ {
		r := p.Sub(s.PointAt(cu, cv))
		tu, tv := s.TangentWrtUAt(cu, cv), s.TangentWrtVAt(cu, cv)
		a, b, c := tu.Dot(tu), tu.Dot(tv), tv.Dot(tv)
		det := a*c - b*b
		if math.Abs(det) < 1e-20 {
			logger().Debug("closest point: degenerate jacobian", "surface", s.H, "u", cu, "v", cv)
			break
		}
		ru, rv := tu.Dot(r), tv.Dot(r)
		du := (c*ru - b*rv) / det
		dv := (a*rv - b*ru) / det
		nu, nv := clamp01(cu+du), clamp01(cv+dv)
		done := math.Abs(nu-cu) < 1e-12 && math.Abs(nv-cv) < 1e-12
		cu, cv = nu, nv
		if done {
			break
		}
	}
	if d := s.PointAt(cu, cv).Sub(p).Length(); d <= bestD {
		return cu, cv
	}
	return u, v
}

// ProjectPoint returns the point on the surface nearest to p.
func (s *Surface) ProjectPoint(p v3.Vec) v3.Vec {
	return s.PointAt(s.ClosestPointTo(p))
}

// BoundingBox returns a box containing the untrimmed patch, from the convex
// hull of its control points.
func (s *Surface) BoundingBox() sdf.Box3 {
	box := emptyBox()
	for i := 0; i <= s.DegM; i++ {
		for j := 0; j <= s.DegN; j++ {
			box = boxInclude(box, s.Ctrl[i][j])
		}
	}
	return box
}

// IsPlanar reports whether every control point lies within eps of the plane
// through the patch centre.
func (s *Surface) IsPlanar(eps float64) bool {
	n := unit(s.NormalAt(0.5, 0.5))
	if n == (v3.Vec{}) {
		return false
	}
	o := s.PointAt(0.5, 0.5)
	for i := 0; i <= s.DegM; i++ {
		for j := 0; j <= s.DegN; j++ {
			if math.Abs(s.Ctrl[i][j].Sub(o).Dot(n)) > eps {
				return false
			}
		}
	}
	return true
}

// Transform maps the control points and trim references through f, which
// must be a rigid motion.
func (s *Surface) Transform(f func(v3.Vec) v3.Vec) {
	for i := 0; i <= s.DegM; i++ {
		for j := 0; j <= s.DegN; j++ {
			s.Ctrl[i][j] = f(s.Ctrl[i][j])
		}
	}
	for k := range s.Trim {
		tb := &s.Trim[k]
		start := f(tb.Start)
		tb.Out = f(tb.Start.Add(tb.Out)).Sub(start)
		tb.Start = start
		tb.Finish = f(tb.Finish)
	}
}

// boundaryCurves returns the four edges of the patch, counter-clockwise in
// (u, v) starting from v = 0. Edges along a degree-zero direction are
// reported with ok false.
func (s *Surface) boundaryCurves() (edges [4]Bezier, ok [4]bool) {
	row := func(j int) Bezier {
		var b Bezier
		b.Deg = s.DegM
		for i := 0; i <= s.DegM; i++ {
			b.Ctrl[i], b.Weight[i] = s.Ctrl[i][j], s.Weight[i][j]
		}
		return b
	}
	col := func(i int) Bezier {
		var b Bezier
		b.Deg = s.DegN
		for j := 0; j <= s.DegN; j++ {
			b.Ctrl[j], b.Weight[j] = s.Ctrl[i][j], s.Weight[i][j]
		}
		return b
	}
	edges[0] = row(0)
	edges[1] = col(s.DegM)
	edges[2] = row(s.DegN).Reversed()
	edges[3] = col(0).Reversed()
	ok[0] = s.DegM > 0
	ok[1] = s.DegN > 0
	ok[2] = s.DegM > 0
	ok[3] = s.DegN > 0
	return edges, ok
}
