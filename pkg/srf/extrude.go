package srf

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrEmptyProfile is returned when there is nothing to extrude.
	ErrEmptyProfile = errors.New("srf: empty profile")
	// ErrDegenerateExtrusion is returned when the profile has no normal, or
	// the extrusion direction lies in its plane.
	ErrDegenerateExtrusion = errors.New("srf: extrusion direction is parallel to the profile")
)

// OpenLoopError reports a profile whose curves do not close. At holds the
// dangling endpoints of the first open chain.
type OpenLoopError struct {
	At Edge
}

func (e *OpenLoopError) Error() string {
	return fmt.Sprintf("srf: profile is not closed: open chain from %v to %v", e.At.A, e.At.B)
}

// capMargin enlarges the cap patches beyond the profile so that trim
// points never sit on the patch edge.
const capMargin = 0.1

// ShellFromExtrusionOf sweeps the closed planar profile l from translation
// t0 to translation t1. Every curve becomes a side surface; the profile at
// either end becomes a planar cap. Adjacent faces share their curves. The
// list is not modified.
func ShellFromExtrusionOf(l *BezierList, t0, t1 v3.Vec) (*Shell, error) {
	cp := BezierList{L: append([]Bezier(nil), l.L...)}
	ls, allClosed, errorAt := LoopSetFrom(&cp)
	if !allClosed {
		return nil, &OpenLoopError{At: errorAt}
	}
	if len(ls.L) == 0 {
		return nil, ErrEmptyProfile
	}
	tol := CurrentTolerances()
	d := t1.Sub(t0)
	n := ls.Normal
	if math.Abs(d.Dot(n)) < tol.LengthEps {
		return nil, ErrDegenerateExtrusion
	}
	if d.Dot(n) < 0 {
		n = n.MulScalar(-1)
		for i := range ls.L {
			ls.L[i].Reverse()
		}
	}

	sh := &Shell{}
	bottom, top := extrusionCaps(&ls, n, t0, t1)
	hBottom := sh.AddSurface(bottom)
	hTop := sh.AddSurface(top)

	for _, lp := range ls.L {
		k := len(lp.L)
		sides := make([]HSurface, k)
		for i, b := range lp.L {
			sides[i] = sh.AddSurface(SurfaceFromExtrusionOf(b, t0, t1))
		}
		bottoms := make([]HCurve, k)
		tops := make([]HCurve, k)
		verts := make([]HCurve, k)
		for i, b := range lp.L {
			bottoms[i] = sh.AddCurve(NewSCurve(b.Transform(func(p v3.Vec) v3.Vec { return p.Add(t0) }), sides[i], hBottom))
			tops[i] = sh.AddCurve(NewSCurve(b.Transform(func(p v3.Vec) v3.Vec { return p.Add(t1) }), sides[i], hTop))
			s := b.Start()
			verts[i] = sh.AddCurve(NewSCurve(BezierFrom(s.Add(t0), s.Add(t1)), sides[i], sides[(i+k-1)%k]))
		}
		for i := range lp.L {
			side := sh.Surface.MustFind(sides[i])
			side.Trim = []TrimBy{
				TrimByCurve(sh.Curve.MustFind(bottoms[i]), false, v3.Vec{}),
				TrimByCurve(sh.Curve.MustFind(verts[(i+1)%k]), false, v3.Vec{}),
				TrimByCurve(sh.Curve.MustFind(tops[i]), true, v3.Vec{}),
				TrimByCurve(sh.Curve.MustFind(verts[i]), true, v3.Vec{}),
			}
			b := sh.Surface.MustFind(hBottom)
			b.Trim = append(b.Trim, TrimByCurve(sh.Curve.MustFind(bottoms[i]), true, v3.Vec{}))
			t := sh.Surface.MustFind(hTop)
			t.Trim = append(t.Trim, TrimByCurve(sh.Curve.MustFind(tops[i]), false, v3.Vec{}))
		}
	}
	sh.fillTrimOut()
	logger().Debug("extrusion", "loops", len(ls.L), "surfaces", sh.Surface.Len(), "curves", sh.Curve.Len())
	return sh, nil
}

// extrusionCaps returns the bottom and top planes for an extrusion along n,
// each a bilinear patch covering the profile with some margin. The bottom
// faces -n and the top +n.
func extrusionCaps(ls *BezierLoopSet, n, t0, t1 v3.Vec) (Surface, Surface) {
	e1, e2 := planeBasis(n)
	min1, max1 := math.Inf(1), math.Inf(-1)
	min2, max2 := math.Inf(1), math.Inf(-1)
	for _, lp := range ls.L {
		for _, b := range lp.L {
			for i := 0; i <= b.Deg; i++ {
				x, y := b.Ctrl[i].Dot(e1), b.Ctrl[i].Dot(e2)
				min1, max1 = math.Min(min1, x), math.Max(max1, x)
				min2, max2 = math.Min(min2, y), math.Max(max2, y)
			}
		}
	}
	m1 := (max1-min1)*capMargin + 1e-3
	m2 := (max2-min2)*capMargin + 1e-3
	min1, max1 = min1-m1, max1+m1
	min2, max2 = min2-m2, max2+m2

	p := ls.Point
	origin := p.Add(e1.MulScalar(min1 - p.Dot(e1))).Add(e2.MulScalar(min2 - p.Dot(e2)))
	u := e1.MulScalar(max1 - min1)
	v := e2.MulScalar(max2 - min2)
	top := SurfaceFromPlane(origin.Add(t1), u, v)
	bottom := SurfaceFromPlane(origin.Add(t0), v, u)
	return bottom, top
}
