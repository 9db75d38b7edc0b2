package srf

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Triangulation works in (u, v), carried in the X and Y of a v3.Vec so the
// planar polygon helpers apply with normal +Z.

var uvNormal = v3.Vec{Z: 1}

const maxRefinePasses = 6

type triVert struct {
	uv v3.Vec
	p  v3.Vec
}

type edgeKey struct{ a, b int }

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

type triangulator struct {
	s        *Surface
	tol      Tolerances
	verts    []triVert
	boundary map[edgeKey]bool
}

// TriangulateInto appends the triangulation of the trimmed surface to m.
// Trim vertices keep the exact positions of the SCurve points, so surfaces
// that share a curve also share its vertices.
func (s *Surface) TriangulateInto(sh *Shell, m *Mesh) {
	tr := &triangulator{s: s, tol: CurrentTolerances(), boundary: map[edgeKey]bool{}}
	loops := tr.trimLoops(sh)
	if len(loops) == 0 {
		return
	}
	var tris [][3]int
	for _, g := range tr.nest(loops) {
		tris = append(tris, tr.earClip(tr.bridge(g[0], g[1:]))...)
	}
	if !s.IsPlanar(tr.tol.LengthEps) {
		tris = tr.refine(tris)
	}
	tr.emit(tris, m)
}

// chainOrder groups polylines into loops, joining each one's end to the
// next one's start, and returns the indices making up each loop. Chains
// that do not close are returned too; closed reports which ones did.
func chainOrder(pls [][]v3.Vec, eps float64) (loops [][]int, closed []bool) {
	used := make([]bool, len(pls))
	for i := range pls {
		if used[i] || len(pls[i]) == 0 {
			continue
		}
		used[i] = true
		loop := []int{i}
		start, end := pls[i][0], pls[i][len(pls[i])-1]
		n := len(pls[i])
		for !(n > 2 && pointsEqual(start, end, eps)) {
			j := lo.IndexOf(lo.Map(pls, func(pl []v3.Vec, k int) bool {
				return !used[k] && len(pl) > 0 && pointsEqual(pl[0], end, eps)
			}), true)
			if j < 0 {
				break
			}
			used[j] = true
			loop = append(loop, j)
			end = pls[j][len(pls[j])-1]
			n += len(pls[j]) - 1
		}
		loops = append(loops, loop)
		closed = append(closed, n > 2 && pointsEqual(start, end, eps))
	}
	return loops, closed
}

// chainPolylines is chainOrder returning the joined points.
func chainPolylines(pls [][]v3.Vec, eps float64) (loops [][]v3.Vec, closed []bool) {
	order, closed := chainOrder(pls, eps)
	loops = lo.Map(order, func(l []int, _ int) []v3.Vec {
		chain := append([]v3.Vec(nil), pls[l[0]]...)
		for _, k := range l[1:] {
			chain = append(chain, pls[k][1:]...)
		}
		return chain
	})
	return loops, closed
}

func (tr *triangulator) addVert(p v3.Vec) int {
	u, v := tr.s.ClosestPointTo(p)
	tr.verts = append(tr.verts, triVert{uv: v3.Vec{X: u, Y: v}, p: p})
	return len(tr.verts) - 1
}

// trimLoops linearizes the boundary into loops of vertex indices.
func (tr *triangulator) trimLoops(sh *Shell) [][]int {
	var pls [][]v3.Vec
	if len(tr.s.Trim) == 0 {
		edges, ok := tr.s.boundaryCurves()
		var pts []v3.Vec
		for k := range edges {
			if ok[k] {
				pts = edges[k].makePwlWorker(pts, tr.tol)
			}
		}
		pls = [][]v3.Vec{pts}
	} else {
		pls = lo.Map(tr.s.Trim, func(tb TrimBy, _ int) []v3.Vec { return tb.Polyline(sh) })
	}

	loops, closed := chainPolylines(pls, tr.tol.LengthEps)
	var out [][]int
	for i, pts := range loops {
		if !closed[i] && len(tr.s.Trim) > 0 {
			logger().Warn("triangulate: trim loop does not close", "surface", tr.s.H,
				"start", pts[0], "finish", pts[len(pts)-1])
		}
		var idx []int
		for _, p := range pts {
			if len(idx) > 0 && pointsEqual(tr.verts[idx[len(idx)-1]].p, p, tr.tol.LengthEps) {
				continue
			}
			idx = append(idx, tr.addVert(p))
		}
		for len(idx) > 1 && pointsEqual(tr.verts[idx[0]].p, tr.verts[idx[len(idx)-1]].p, tr.tol.LengthEps) {
			idx = idx[:len(idx)-1]
		}
		if len(idx) < 3 {
			continue
		}
		for k := range idx {
			tr.boundary[keyOf(idx[k], idx[(k+1)%len(idx)])] = true
		}
		out = append(out, idx)
	}
	return out
}

func (tr *triangulator) contour(idx []int) Contour {
	return lo.Map(idx, func(i int, _ int) v3.Vec { return tr.verts[i].uv })
}

// nest orients the loops, outer boundaries counter-clockwise and holes
// clockwise, and groups each outer boundary with the holes directly inside
// it. The first element of every group is the outer boundary.
func (tr *triangulator) nest(loops [][]int) [][][]int {
	var poly Polygon
	for _, l := range loops {
		poly.Contours = append(poly.Contours, tr.contour(l))
	}
	eps := tr.tol.LengthEps
	depth := make([]int, len(loops))
	for i, l := range loops {
		depth[i] = poly.Depth(i, uvNormal)
		if (poly.Contours[i].SignedArea(uvNormal) > 0) != (depth[i]%2 == 0) {
			lo.Reverse(l)
			poly.Contours[i].Reverse()
		}
	}
	var groups [][][]int
	for i, l := range loops {
		if depth[i]%2 != 0 {
			continue
		}
		g := [][]int{l}
		for j, h := range loops {
			if depth[j] != depth[i]+1 {
				continue
			}
			if poly.Contours[i].encloses(poly.Contours[j], uvNormal, eps) {
				g = append(g, h)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func cross2(o, a, b v3.Vec) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// segmentsCross reports whether the open segments ab and cd cross properly.
func segmentsCross(a, b, c, d v3.Vec) bool {
	d1, d2 := cross2(a, b, c), cross2(a, b, d)
	d3, d4 := cross2(c, d, a), cross2(c, d, b)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// bridge cuts each hole into the outer boundary along a segment from the
// hole's rightmost vertex to the nearest visible boundary vertex, giving a
// single weakly simple polygon.
func (tr *triangulator) bridge(outer []int, holes [][]int) []int {
	maxU := func(h []int) int {
		return lo.MaxBy(lo.Range(len(h)), func(a, b int) bool {
			return tr.verts[h[a]].uv.X > tr.verts[h[b]].uv.X
		})
	}
	sort.SliceStable(holes, func(i, j int) bool {
		return tr.verts[holes[i][maxU(holes[i])]].uv.X > tr.verts[holes[j][maxU(holes[j])]].uv.X
	})

	poly := append([]int(nil), outer...)
	for hi, h := range holes {
		start := maxU(h)
		a := tr.verts[h[start]].uv
		cands := lo.Range(len(poly))
		sort.SliceStable(cands, func(i, j int) bool {
			return tr.verts[poly[cands[i]]].uv.Sub(a).Length() < tr.verts[poly[cands[j]]].uv.Sub(a).Length()
		})
		best := -1
		for _, c := range cands {
			if tr.visible(a, tr.verts[poly[c]].uv, poly, holes[hi:]) {
				best = c
				break
			}
		}
		if best < 0 {
			logger().Warn("triangulate: no visible bridge for hole", "surface", tr.s.H)
			best = cands[0]
		}
		var next []int
		next = append(next, poly[:best+1]...)
		next = append(next, h[start:]...)
		next = append(next, h[:start+1]...)
		next = append(next, poly[best:]...)
		poly = next
	}
	return poly
}

func (tr *triangulator) visible(a, b v3.Vec, poly []int, holes [][]int) bool {
	blocked := func(l []int) bool {
		for k := range l {
			c, d := tr.verts[l[k]].uv, tr.verts[l[(k+1)%len(l)]].uv
			if segmentsCross(a, b, c, d) {
				return true
			}
		}
		return false
	}
	if blocked(poly) || lo.SomeBy(holes, blocked) {
		return false
	}
	m := midpoint(a, b)
	if !tr.contour(poly).ContainsPoint(m, uvNormal) {
		return false
	}
	return !lo.SomeBy(holes, func(h []int) bool { return tr.contour(h).ContainsPoint(m, uvNormal) })
}

func sameUV(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-12 && math.Abs(a.Y-b.Y) < 1e-12
}

// inTriangle reports whether p lies in the closed triangle abc, which is
// counter-clockwise.
func inTriangle(p, a, b, c v3.Vec) bool {
	const eps = 1e-14
	return cross2(a, b, p) >= -eps && cross2(b, c, p) >= -eps && cross2(c, a, p) >= -eps
}

func (tr *triangulator) isEar(idx []int, i int) bool {
	n := len(idx)
	a := tr.verts[idx[(i+n-1)%n]].uv
	b := tr.verts[idx[i]].uv
	c := tr.verts[idx[(i+1)%n]].uv
	if cross2(a, b, c) <= 1e-14 {
		return false
	}
	for j := 0; j < n; j++ {
		if j == i || j == (i+n-1)%n || j == (i+1)%n {
			continue
		}
		p := tr.verts[idx[j]].uv
		if sameUV(p, a) || sameUV(p, b) || sameUV(p, c) {
			continue
		}
		if inTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// earClip triangulates a counter-clockwise polygon of vertex indices.
func (tr *triangulator) earClip(poly []int) [][3]int {
	idx := append([]int(nil), poly...)
	var out [][3]int
	for len(idx) > 3 {
		n := len(idx)
		ear := -1
		for i := 0; i < n; i++ {
			if tr.isEar(idx, i) {
				ear = i
				break
			}
		}
		if ear < 0 {
			// no clean ear: take the most convex corner
			ear = lo.MaxBy(lo.Range(n), func(x, y int) bool {
				return tr.turn(idx, x) > tr.turn(idx, y)
			})
			logger().Warn("triangulate: no ear found, clipping best corner", "surface", tr.s.H, "remaining", n)
		}
		out = append(out, [3]int{idx[(ear+n-1)%n], idx[ear], idx[(ear+1)%n]})
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	if len(idx) == 3 {
		out = append(out, [3]int{idx[0], idx[1], idx[2]})
	}
	return out
}

func (tr *triangulator) turn(idx []int, i int) float64 {
	n := len(idx)
	return cross2(tr.verts[idx[(i+n-1)%n]].uv, tr.verts[idx[i]].uv, tr.verts[idx[(i+1)%n]].uv)
}

// refine splits interior edges whose midpoint is further than ChordTol from
// the surface, until no edge needs splitting. Trim edges are never split.
func (tr *triangulator) refine(tris [][3]int) [][3]int {
	for pass := 0; pass < maxRefinePasses; pass++ {
		mids := map[edgeKey]int{}
		split := func(a, b int) int {
			k := keyOf(a, b)
			if m, ok := mids[k]; ok {
				return m
			}
			m := -1
			if !tr.boundary[k] {
				uv := midpoint(tr.verts[a].uv, tr.verts[b].uv)
				p := tr.s.PointAt(uv.X, uv.Y)
				if p.Sub(midpoint(tr.verts[a].p, tr.verts[b].p)).Length() > tr.tol.ChordTol {
					tr.verts = append(tr.verts, triVert{uv: uv, p: p})
					m = len(tr.verts) - 1
				}
			}
			mids[k] = m
			return m
		}
		changed := false
		var next [][3]int
		for _, t := range tris {
			m := [3]int{split(t[0], t[1]), split(t[1], t[2]), split(t[2], t[0])}
			nt := splitTriangle(t, m)
			changed = changed || len(nt) > 1
			next = append(next, nt...)
		}
		tris = next
		if !changed {
			break
		}
	}
	return tris
}

// splitTriangle subdivides t given the midpoints m[k] of its edges
// t[k]->t[k+1], with -1 for edges that stay whole.
func splitTriangle(t, m [3]int) [][3]int {
	n := lo.CountBy(m[:], func(x int) bool { return x >= 0 })
	switch n {
	case 0:
		return [][3]int{t}
	case 1:
		k := lo.IndexOf(lo.Map(m[:], func(x int, _ int) bool { return x >= 0 }), true)
		a, b, c := t[k], t[(k+1)%3], t[(k+2)%3]
		return [][3]int{{a, m[k], c}, {m[k], b, c}}
	case 2:
		k := lo.IndexOf(m[:], -1)
		a, b, c := t[k], t[(k+1)%3], t[(k+2)%3]
		y, z := m[(k+1)%3], m[(k+2)%3]
		return [][3]int{{a, b, y}, {a, y, z}, {z, y, c}}
	}
	a, b, c := t[0], t[1], t[2]
	x, y, z := m[0], m[1], m[2]
	return [][3]int{{a, x, z}, {x, b, y}, {z, y, c}, {x, y, z}}
}

func (tr *triangulator) emit(tris [][3]int, m *Mesh) {
	eps := tr.tol.LengthEps
	for _, t := range tris {
		a, b, c := tr.verts[t[0]], tr.verts[t[1]], tr.verts[t[2]]
		tri := NewTriangle(a.p, b.p, c.p)
		if tri.Area() < eps*eps {
			continue
		}
		cuv := a.uv.Add(b.uv).Add(c.uv).MulScalar(1.0 / 3)
		if tri.Normal.Dot(tr.s.NormalAt(cuv.X, cuv.Y)) < 0 {
			tri = NewTriangle(a.p, c.p, b.p)
		}
		tri.Surface = tr.s.H
		m.Add(tri)
	}
}
