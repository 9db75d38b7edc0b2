package srf

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// BezierList is an unordered collection of curves, typically the raw output
// of a sketch before it has been assembled into loops.
type BezierList struct {
	L []Bezier
}

// Add appends curves to the list.
func (l *BezierList) Add(b ...Bezier) {
	l.L = append(l.L, b...)
}

// Len returns the number of curves.
func (l *BezierList) Len() int { return len(l.L) }

// BezierLoop is an ordered chain of curves, each starting where the previous
// one finishes.
type BezierLoop struct {
	L []Bezier
}

// Start returns the start point of the first curve.
func (lp *BezierLoop) Start() v3.Vec { return lp.L[0].Start() }

// Finish returns the finish point of the last curve.
func (lp *BezierLoop) Finish() v3.Vec { return lp.L[len(lp.L)-1].Finish() }

// IsClosed reports whether the chain returns to its own start.
func (lp *BezierLoop) IsClosed(eps float64) bool {
	return len(lp.L) > 0 && pointsEqual(lp.Start(), lp.Finish(), eps)
}

// Reverse reverses the direction of travel around the loop.
func (lp *BezierLoop) Reverse() {
	lo.Reverse(lp.L)
	for i := range lp.L {
		lp.L[i].Reverse()
	}
}

// MakePwlInto appends the linearized loop to c as a closed contour: joints
// appear once and the closing point is not repeated.
func (lp *BezierLoop) MakePwlInto(c Contour) Contour {
	tol := CurrentTolerances()
	first := len(c)
	for _, b := range lp.L {
		pts := b.makePwlWorker(nil, tol)
		if len(c) > first {
			pts = pts[1:]
		}
		c = append(c, pts...)
	}
	if len(c)-first > 1 && pointsEqual(c[first], c[len(c)-1], tol.LengthEps) {
		c = c[:len(c)-1]
	}
	return c
}

// LoopFromCurves assembles one chain from the curves in l, removing the
// curves it uses. It starts from the first curve and repeatedly appends the
// first remaining curve that starts, or after reversal finishes, at the open
// end, until the chain closes or nothing matches. When the chain does not
// close, allClosed is false and errorAt holds its two dangling endpoints.
func LoopFromCurves(l *BezierList) (loop BezierLoop, allClosed bool, errorAt Edge) {
	if len(l.L) == 0 {
		return loop, true, errorAt
	}
	eps := CurrentTolerances().LengthEps
	loop.L = append(loop.L, l.L[0])
	l.L = l.L[1:]
	for !loop.IsClosed(eps) {
		end := loop.Finish()
		idx := -1
		for i, b := range l.L {
			if pointsEqual(b.Start(), end, eps) {
				idx = i
				break
			}
			if pointsEqual(b.Finish(), end, eps) {
				l.L[i].Reverse()
				idx = i
				break
			}
		}
		if idx < 0 {
			return loop, false, Edge{A: loop.Start(), B: loop.Finish()}
		}
		loop.L = append(loop.L, l.L[idx])
		l.L = append(l.L[:idx], l.L[idx+1:]...)
	}
	return loop, true, errorAt
}

// BezierLoopSet is a planar region bounded by closed loops. Outer loops wind
// counter-clockwise about Normal and holes clockwise.
type BezierLoopSet struct {
	L      []BezierLoop
	Normal v3.Vec
	// Point is any point in the plane of the loops.
	Point v3.Vec
}

// LoopSetFrom assembles every curve in l into loops, consuming the list,
// and infers the normal from the largest loop. When some chain does not
// close, allClosed is false and errorAt locates the first one; closed loops
// are still returned.
func LoopSetFrom(l *BezierList) (BezierLoopSet, bool, Edge) {
	return loopSetFrom(l, v3.Vec{})
}

// LoopSetFromNormal is LoopSetFrom with the normal given explicitly.
func LoopSetFromNormal(l *BezierList, n v3.Vec) (BezierLoopSet, bool, Edge) {
	return loopSetFrom(l, unit(n))
}

func loopSetFrom(l *BezierList, n v3.Vec) (BezierLoopSet, bool, Edge) {
	var ls BezierLoopSet
	allClosed := true
	var errorAt Edge
	for len(l.L) > 0 {
		loop, closed, at := LoopFromCurves(l)
		if !closed {
			if allClosed {
				errorAt = at
			}
			allClosed = false
			continue
		}
		ls.L = append(ls.L, loop)
	}
	if len(ls.L) == 0 {
		return ls, allClosed, errorAt
	}

	var poly Polygon
	for i := range ls.L {
		poly.Contours = append(poly.Contours, ls.L[i].MakePwlInto(nil))
	}
	if n == (v3.Vec{}) {
		largest := lo.MaxBy(poly.Contours, func(a, b Contour) bool {
			return a.newell().Length() > b.newell().Length()
		})
		n = largest.Normal()
	}
	ls.Normal = n
	ls.Point = ls.L[0].Start()
	if n == (v3.Vec{}) {
		logger().Warn("loop set has no well defined normal", "loops", len(ls.L))
		return ls, allClosed, errorAt
	}
	for i, c := range poly.Contours {
		wantCCW := poly.Depth(i, n)%2 == 0
		if (c.SignedArea(n) > 0) != wantCCW {
			ls.L[i].Reverse()
		}
	}
	return ls, allClosed, errorAt
}

// MakePwlInto appends one contour per loop to p.
func (ls *BezierLoopSet) MakePwlInto(p *Polygon) {
	for i := range ls.L {
		p.Contours = append(p.Contours, ls.L[i].MakePwlInto(nil))
	}
}

// IsPlanar reports whether every control point lies in the plane of the set.
func (ls *BezierLoopSet) IsPlanar(eps float64) bool {
	for _, lp := range ls.L {
		for _, b := range lp.L {
			for i := 0; i <= b.Deg; i++ {
				if math.Abs(b.Ctrl[i].Sub(ls.Point).Dot(ls.Normal)) > eps {
					return false
				}
			}
		}
	}
	return true
}

// Curves flattens the loop set back into a list.
func (ls *BezierLoopSet) Curves() BezierList {
	var l BezierList
	for _, lp := range ls.L {
		l.Add(lp.L...)
	}
	return l
}
