package srf

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Edge is a pair of points. Besides mesh and polygon edges it is used to
// report where geometry is malformed, so that a caller can highlight it.
type Edge struct {
	A, B v3.Vec
}

// pointsEqual reports whether a and b are within eps of each other.
func pointsEqual(a, b v3.Vec, eps float64) bool {
	d := a.Sub(b)
	if math.Abs(d.X) > eps || math.Abs(d.Y) > eps || math.Abs(d.Z) > eps {
		return false
	}
	return d.Dot(d) < eps*eps
}

func lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

func midpoint(a, b v3.Vec) v3.Vec {
	return a.Add(b).MulScalar(0.5)
}

// unit normalizes v, returning the zero vector for degenerate input.
func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l < 1e-300 {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}

// distToSegment returns the distance from p to the segment ab, and the
// parameter of the closest point along it.
func distToSegment(p, a, b v3.Vec) (float64, float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < 1e-300 {
		return p.Sub(a).Length(), 0
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.MulScalar(t))).Length(), t
}

// anyPerpendicular returns a unit vector orthogonal to n.
func anyPerpendicular(n v3.Vec) v3.Vec {
	n = unit(n)
	var ref v3.Vec
	if math.Abs(n.X) < 0.6 {
		ref = v3.Vec{X: 1}
	} else {
		ref = v3.Vec{Y: 1}
	}
	return unit(ref.Sub(n.MulScalar(ref.Dot(n))))
}

// emptyBox returns a box that any Include makes valid.
func emptyBox() sdf.Box3 {
	inf := math.Inf(1)
	return sdf.Box3{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

func boxInclude(b sdf.Box3, p v3.Vec) sdf.Box3 {
	return sdf.Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

func boxUnion(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

func boxesOverlap(a, b sdf.Box3, eps float64) bool {
	return a.Min.X <= b.Max.X+eps && b.Min.X <= a.Max.X+eps &&
		a.Min.Y <= b.Max.Y+eps && b.Min.Y <= a.Max.Y+eps &&
		a.Min.Z <= b.Max.Z+eps && b.Min.Z <= a.Max.Z+eps
}
