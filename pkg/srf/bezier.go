package srf

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Bezier is a single rational Bezier segment of degree 1 to 3. Only the
// first Deg+1 control points and weights are meaningful.
type Bezier struct {
	Deg    int
	Ctrl   [4]v3.Vec
	Weight [4]float64
}

// BezierFrom returns the ordinary Bezier through the given control points.
// Two, three or four points give a line, a quadratic or a cubic.
func BezierFrom(pts ...v3.Vec) Bezier {
	if len(pts) < 2 || len(pts) > 4 {
		panic(fmt.Sprintf("srf: BezierFrom: %d control points", len(pts)))
	}
	var b Bezier
	b.Deg = len(pts) - 1
	for i, p := range pts {
		b.Ctrl[i] = p
		b.Weight[i] = 1
	}
	return b
}

// NewRationalBezier returns a rational Bezier with explicit weights. The
// slices must have equal length between 2 and 4, and weights must be
// positive.
func NewRationalBezier(ctrl []v3.Vec, weight []float64) Bezier {
	if len(ctrl) != len(weight) {
		panic(fmt.Sprintf("srf: NewRationalBezier: %d points, %d weights", len(ctrl), len(weight)))
	}
	b := BezierFrom(ctrl...)
	for i, w := range weight {
		if !(w > 0) {
			panic(fmt.Sprintf("srf: NewRationalBezier: weight %d is %v", i, w))
		}
		b.Weight[i] = w
	}
	return b
}

// ArcFrom returns the circular arc about center from start to finish as a
// rational quadratic. Both endpoints must be the same distance from center
// and the arc must span less than 180 degrees.
func ArcFrom(center, start, finish v3.Vec) Bezier {
	ra := start.Sub(center)
	rb := finish.Sub(center)
	r := ra.Length()
	cos := ra.Dot(rb) / (r * rb.Length())
	cos = math.Max(-1, math.Min(1, cos))
	theta := math.Acos(cos)
	if theta > math.Pi-1e-9 || theta < 1e-12 {
		panic(fmt.Sprintf("srf: ArcFrom: unsupported sweep %v rad", theta))
	}
	half := math.Cos(theta / 2)
	bis := unit(ra.Add(rb))
	mid := center.Add(bis.MulScalar(r / half))
	return NewRationalBezier([]v3.Vec{start, mid, finish}, []float64{1, half, 1})
}

// PointAt evaluates the curve at t. Values outside [0,1] extrapolate.
func (b Bezier) PointAt(t float64) v3.Vec {
	var num v3.Vec
	var den float64
	for i := 0; i <= b.Deg; i++ {
		w := Bernstein(i, b.Deg, t) * b.Weight[i]
		num = num.Add(b.Ctrl[i].MulScalar(w))
		den += w
	}
	return num.MulScalar(1 / den)
}

// TangentAt returns the derivative of PointAt with respect to t.
func (b Bezier) TangentAt(t float64) v3.Vec {
	var num, dnum v3.Vec
	var den, dden float64
	for i := 0; i <= b.Deg; i++ {
		w := Bernstein(i, b.Deg, t) * b.Weight[i]
		dw := BernsteinDerivative(i, b.Deg, t) * b.Weight[i]
		num = num.Add(b.Ctrl[i].MulScalar(w))
		dnum = dnum.Add(b.Ctrl[i].MulScalar(dw))
		den += w
		dden += dw
	}
	// (num/den)' = (dnum*den - num*dden) / den^2
	return dnum.MulScalar(den).Sub(num.MulScalar(dden)).MulScalar(1 / (den * den))
}

func (b Bezier) Start() v3.Vec  { return b.PointAt(0) }
func (b Bezier) Finish() v3.Vec { return b.PointAt(1) }

// Reverse reverses the direction of travel along the curve in place.
func (b *Bezier) Reverse() {
	for i := 0; i < (b.Deg+1)/2; i++ {
		j := b.Deg - i
		b.Ctrl[i], b.Ctrl[j] = b.Ctrl[j], b.Ctrl[i]
		b.Weight[i], b.Weight[j] = b.Weight[j], b.Weight[i]
	}
}

// Reversed returns a reversed copy of b.
func (b Bezier) Reversed() Bezier {
	b.Reverse()
	return b
}

// MakePwlInto appends a piecewise linear approximation of the curve to l,
// start point included, and returns the extended slice.
func (b Bezier) MakePwlInto(l []v3.Vec) []v3.Vec {
	return b.makePwlWorker(l, CurrentTolerances())
}

type pwlSpan struct {
	ta, tb float64
	depth  int
}

func (b Bezier) makePwlWorker(l []v3.Vec, tol Tolerances) []v3.Vec {
	l = append(l, b.Start())
	if b.Deg == 1 {
		return append(l, b.Finish())
	}
	stack := []pwlSpan{{0, 1, 0}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pa, pb := b.PointAt(s.ta), b.PointAt(s.tb)
		tm := (s.ta + s.tb) / 2
		dev := b.PointAt(tm).Sub(midpoint(pa, pb)).Length()
		if s.depth >= tol.MaxPwlDepth || (s.depth > 0 && dev < tol.ChordTol) {
			l = append(l, pb)
			continue
		}
		// right half first, so the left half is popped next
		stack = append(stack, pwlSpan{tm, s.tb, s.depth + 1}, pwlSpan{s.ta, tm, s.depth + 1})
	}
	return l
}

// Split cuts the curve at t and returns the pieces over [0,t] and [t,1].
func (b Bezier) Split(t float64) (Bezier, Bezier) {
	type hpt struct {
		p v3.Vec
		w float64
	}
	var h [4]hpt
	for i := 0; i <= b.Deg; i++ {
		h[i] = hpt{b.Ctrl[i].MulScalar(b.Weight[i]), b.Weight[i]}
	}
	left, right := b, b
	set := func(dst *Bezier, i int, x hpt) {
		dst.Ctrl[i] = x.p.MulScalar(1 / x.w)
		dst.Weight[i] = x.w
	}
	set(&left, 0, h[0])
	set(&right, b.Deg, h[b.Deg])
	for level := 1; level <= b.Deg; level++ {
		for i := 0; i <= b.Deg-level; i++ {
			h[i] = hpt{lerp(h[i].p, h[i+1].p, t), h[i].w + (h[i+1].w-h[i].w)*t}
		}
		set(&left, level, h[0])
		set(&right, b.Deg-level, h[b.Deg-level])
	}
	return left, right
}

// Subcurve returns the part of b between parameters ta and tb, ta < tb.
func (b Bezier) Subcurve(ta, tb float64) Bezier {
	if tb < 1 {
		b, _ = b.Split(tb)
	}
	if ta > 0 {
		_, b = b.Split(ta / tb)
	}
	return b
}

// ClosestParamTo returns the parameter in [0,1] of the point on the curve
// nearest to p.
func (b Bezier) ClosestParamTo(p v3.Vec) float64 {
	const samples = 32
	best, bestD := 0.0, math.Inf(1)
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		if d := b.PointAt(t).Sub(p).Length(); d < bestD {
			best, bestD = t, d
		}
	}
	// ternary refinement of the bracket around the best sample
	lo, hi := math.Max(0, best-1.0/samples), math.Min(1, best+1.0/samples)
	for i := 0; i < 60; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if b.PointAt(m1).Sub(p).Length() < b.PointAt(m2).Sub(p).Length() {
			hi = m2
		} else {
			lo = m1
		}
	}
	return (lo + hi) / 2
}

// Transform maps every control point through f, which must be affine.
func (b Bezier) Transform(f func(v3.Vec) v3.Vec) Bezier {
	for i := 0; i <= b.Deg; i++ {
		b.Ctrl[i] = f(b.Ctrl[i])
	}
	return b
}

// Equals reports whether b and o have the same degree and control points
// and weights within eps.
func (b Bezier) Equals(o Bezier, eps float64) bool {
	if b.Deg != o.Deg {
		return false
	}
	for i := 0; i <= b.Deg; i++ {
		if !pointsEqual(b.Ctrl[i], o.Ctrl[i], eps) || math.Abs(b.Weight[i]-o.Weight[i]) > eps {
			return false
		}
	}
	return true
}

// IsLine reports whether the curve is degree one or all its control points
// are collinear.
func (b Bezier) IsLine(eps float64) bool {
	if b.Deg == 1 {
		return true
	}
	for i := 1; i < b.Deg; i++ {
		if d, _ := distToSegment(b.Ctrl[i], b.Ctrl[0], b.Ctrl[b.Deg]); d > eps {
			return false
		}
	}
	return true
}

// BoundingBox returns a box containing the curve, from the convex hull of
// its control points.
func (b Bezier) BoundingBox() sdf.Box3 {
	box := emptyBox()
	for i := 0; i <= b.Deg; i++ {
		box = boxInclude(box, b.Ctrl[i])
	}
	return box
}
