package srf

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// triPlaneCut returns where triangle t meets the plane n.x + d = 0: zero,
// one or two distinct points. Vertices within eps of the plane count as on
// it.
func triPlaneCut(t *Triangle, n v3.Vec, d, eps float64) []v3.Vec {
	vs := [3]v3.Vec{t.A, t.B, t.C}
	var dist [3]float64
	for i, v := range vs {
		dist[i] = n.Dot(v) + d
	}
	var pts []v3.Vec
	add := func(p v3.Vec) {
		for _, q := range pts {
			if pointsEqual(p, q, eps) {
				return
			}
		}
		pts = append(pts, p)
	}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		di, dj := dist[i], dist[j]
		if math.Abs(di) < eps {
			add(vs[i])
		}
		if math.Abs(di) >= eps && math.Abs(dj) >= eps && (di < 0) != (dj < 0) {
			add(lerp(vs[i], vs[j], di/(di-dj)))
		}
	}
	return pts
}

// sideOfPlane reports whether every vertex of t is strictly on one side of
// the plane, and whether every vertex is on it.
func sideOfPlane(t *Triangle, n v3.Vec, d, eps float64) (separated, coplanar bool) {
	pos, neg, on := 0, 0, 0
	for _, v := range [3]v3.Vec{t.A, t.B, t.C} {
		switch s := n.Dot(v) + d; {
		case s > eps:
			pos++
		case s < -eps:
			neg++
		default:
			on++
		}
	}
	return pos == 3 || neg == 3, on == 3
}

// triTriSegment returns the segment along which triangles t and o cross.
// Coplanar pairs, and pairs that touch at a single point, report false.
func triTriSegment(t, o *Triangle, eps float64) (v3.Vec, v3.Vec, bool) {
	n1, n2 := t.Normal, o.Normal
	if n1 == (v3.Vec{}) || n2 == (v3.Vec{}) {
		return v3.Vec{}, v3.Vec{}, false
	}
	d1, d2 := -n1.Dot(t.A), -n2.Dot(o.A)
	if sep, cop := sideOfPlane(t, n2, d2, eps); sep || cop {
		return v3.Vec{}, v3.Vec{}, false
	}
	if sep, cop := sideOfPlane(o, n1, d1, eps); sep || cop {
		return v3.Vec{}, v3.Vec{}, false
	}
	c1 := triPlaneCut(t, n2, d2, eps)
	c2 := triPlaneCut(o, n1, d1, eps)
	if len(c1) != 2 || len(c2) != 2 {
		return v3.Vec{}, v3.Vec{}, false
	}
	dir := unit(n1.Cross(n2))
	if dir == (v3.Vec{}) {
		return v3.Vec{}, v3.Vec{}, false
	}
	interval := func(c []v3.Vec) (lo, hi float64, plo, phi v3.Vec) {
		a, b := c[0].Dot(dir), c[1].Dot(dir)
		if a <= b {
			return a, b, c[0], c[1]
		}
		return b, a, c[1], c[0]
	}
	lo1, hi1, plo1, phi1 := interval(c1)
	lo2, hi2, plo2, phi2 := interval(c2)
	p, q := plo1, phi1
	lo, hi := lo1, hi1
	if lo2 > lo {
		lo, p = lo2, plo2
	}
	if hi2 < hi {
		hi, q = hi2, phi2
	}
	if hi-lo < eps {
		return v3.Vec{}, v3.Vec{}, false
	}
	return p, q, true
}

// distToPolyline returns the distance from p to the polyline.
func distToPolyline(p v3.Vec, pts []v3.Vec) float64 {
	if len(pts) == 1 {
		return p.Sub(pts[0]).Length()
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		if d, _ := distToSegment(p, pts[i], pts[i+1]); d < best {
			best = d
		}
	}
	return best
}

// simplifyPolyline drops interior points that lie within eps of the chord
// between their neighbours.
func simplifyPolyline(pts []v3.Vec, eps float64) []v3.Vec {
	if len(pts) < 3 {
		return pts
	}
	out := []v3.Vec{pts[0]}
	for i := 1; i+1 < len(pts); i++ {
		if d, _ := distToSegment(pts[i], out[len(out)-1], pts[i+1]); d < eps {
			continue
		}
		out = append(out, pts[i])
	}
	return append(out, pts[len(pts)-1])
}

// splitPolylineAt cuts the polyline at every cut point lying on its
// interior. Cut points within eps of an end are ignored.
func splitPolylineAt(pts []v3.Vec, cuts []v3.Vec, eps float64) [][]v3.Vec {
	type mark struct {
		seg int
		t   float64
		p   v3.Vec
	}
	var marks []mark
	first, last := pts[0], pts[len(pts)-1]
	for _, c := range cuts {
		if pointsEqual(c, first, eps) || pointsEqual(c, last, eps) {
			continue
		}
		for i := 0; i+1 < len(pts); i++ {
			if d, t := distToSegment(c, pts[i], pts[i+1]); d < eps {
				marks = append(marks, mark{i, t, c})
				break
			}
		}
	}
	if len(marks) == 0 {
		return [][]v3.Vec{pts}
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].seg != marks[j].seg {
			return marks[i].seg < marks[j].seg
		}
		return marks[i].t < marks[j].t
	})

	var out [][]v3.Vec
	cur := []v3.Vec{pts[0]}
	m := 0
	for i := 0; i+1 < len(pts); i++ {
		cutAtNext := false
		for ; m < len(marks) && marks[m].seg == i; m++ {
			c := marks[m].p
			switch {
			case pointsEqual(c, cur[len(cur)-1], eps):
				if len(cur) > 1 {
					out = append(out, cur)
					cur = []v3.Vec{cur[len(cur)-1]}
				}
			case pointsEqual(c, pts[i+1], eps):
				cutAtNext = true
			default:
				cur = append(cur, c)
				out = append(out, cur)
				cur = []v3.Vec{c}
			}
		}
		cur = append(cur, pts[i+1])
		if cutAtNext && i+2 < len(pts) {
			out = append(out, cur)
			cur = []v3.Vec{pts[i+1]}
		}
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

// segment is a piece of an intersection between two surfaces, with a flag
// per surface saying whether it matters to that surface. A segment lying on
// a surface's own boundary does not.
type segment struct {
	p, q   v3.Vec
	sa, sb int
	rel    [2]bool
}

func sameSegment(x, y *segment, eps float64) bool {
	return (pointsEqual(x.p, y.p, eps) && pointsEqual(x.q, y.q, eps)) ||
		(pointsEqual(x.p, y.q, eps) && pointsEqual(x.q, y.p, eps))
}

// chainSegments joins segments that share endpoints into polylines. Each
// result is open or closed; closed ones repeat their first point.
func chainSegments(segs []segment, eps float64) [][]v3.Vec {
	used := make([]bool, len(segs))
	var out [][]v3.Vec
	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		chain := []v3.Vec{segs[i].p, segs[i].q}
		extend := func(end v3.Vec) (v3.Vec, bool) {
			for j := range segs {
				if used[j] {
					continue
				}
				if pointsEqual(segs[j].p, end, eps) {
					used[j] = true
					return segs[j].q, true
				}
				if pointsEqual(segs[j].q, end, eps) {
					used[j] = true
					return segs[j].p, true
				}
			}
			return v3.Vec{}, false
		}
		for !pointsEqual(chain[0], chain[len(chain)-1], eps) {
			next, ok := extend(chain[len(chain)-1])
			if !ok {
				break
			}
			chain = append(chain, next)
		}
		for !pointsEqual(chain[0], chain[len(chain)-1], eps) {
			prev, ok := extend(chain[0])
			if !ok {
				break
			}
			chain = append([]v3.Vec{prev}, chain...)
		}
		out = append(out, chain)
	}
	return out
}
