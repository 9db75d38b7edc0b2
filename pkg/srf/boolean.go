package srf

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
)

// Class says where a point lies relative to a closed shell.
type Class int

const (
	Outside Class = iota
	Inside
	// OnSame is on the shell's boundary, where the boundary's normal agrees
	// with the normal of the surface being classified.
	OnSame
	// OnOpposite is on the boundary with the normals opposed.
	OnOpposite
)

func (c Class) String() string {
	switch c {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case OnSame:
		return "on-same"
	case OnOpposite:
		return "on-opposite"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// BooleanError reports a Boolean operation whose result could not be
// assembled, located at a point on one of the input surfaces.
type BooleanError struct {
	At      v3.Vec
	Surface HSurface
	Reason  string
}

func (e *BooleanError) Error() string {
	return fmt.Sprintf("srf: boolean failed at %v on surface %d: %s", e.At, e.Surface, e.Reason)
}

// ShellFromUnionOf returns a new shell bounding the union of the solids a
// and b. Neither input is modified. If the result cannot be assembled the
// operation is retried once with LengthEps and ClassifyOffset widened by
// RetryScale; a second failure returns a *BooleanError.
func ShellFromUnionOf(a, b *Shell) (*Shell, error) {
	tol := CurrentTolerances()
	sh, err := unionAttempt(a, b, tol)
	if err == nil {
		return sh, nil
	}
	logger().Debug("union: retrying with widened tolerances", "err", err)
	return unionAttempt(a, b, tol.widened())
}

// unionAttempt is one try at a union with fixed tolerances.
var unionAttempt = unionOf

// keepRegion decides whether a region of a surface from one input survives
// the union, given where it lies relative to the other input.
func keepRegion(c Class, fromA bool) bool {
	switch c {
	case Outside:
		return true
	case OnSame:
		return fromA
	}
	return false
}

// boolSurface is an input surface prepared for the union.
type boolSurface struct {
	idx    int
	shell  int
	s      *Surface
	mesh   Mesh
	trims  [][]v3.Vec
	uv     Polygon
	box    sdf.Box3
	pad    float64
	planar bool
}

func (bs *boolSurface) Bounds() rtreego.Rect {
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{bs.box.Min.X - bs.pad, bs.box.Min.Y - bs.pad, bs.box.Min.Z - bs.pad},
		rtreego.Point{bs.box.Max.X + bs.pad, bs.box.Max.Y + bs.pad, bs.box.Max.Z + bs.pad},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// onTrim reports whether all the given points lie on the surface's own
// trim polylines.
func (bs *boolSurface) onTrim(eps float64, pts ...v3.Vec) bool {
	return lo.EveryBy(pts, func(p v3.Vec) bool {
		return lo.SomeBy(bs.trims, func(pl []v3.Vec) bool { return distToPolyline(p, pl) < eps })
	})
}

// containsUV reports whether (u, v) is inside the trimmed region.
func (bs *boolSurface) containsUV(u, v float64) bool {
	p := v3.Vec{X: u, Y: v}
	n := lo.CountBy(bs.uv.Contours, func(c Contour) bool { return c.ContainsPoint(p, uvNormal) })
	return n%2 == 1
}

type curveRef struct {
	srf       int
	backwards bool
}

type pieceSide struct {
	srf       int
	backwards bool
	keep      bool
}

// piece is a part of a curve between T-junctions, the unit that is
// classified.
type piece struct {
	pts   []v3.Vec
	group int
	src   *SCurve
	isect bool
	pair  [2]int
	sides [2]pieceSide
}

// run is a maximal sequence of pieces of one curve that are kept the same
// way; each becomes an SCurve of the result.
type run struct {
	pts   []v3.Vec
	exact Bezier
	sides []pieceSide
	dead  bool
}

type boolOp struct {
	tol    Tolerances
	onTol  float64
	// nearTol bounds the distance at which points are classified against
	// the exact surfaces of the other shell rather than its mesh.
	nearTol float64
	// coincident is set once a point is found on the other shell's
	// boundary; such unions may legitimately leave unshared edges.
	coincident bool
	work   [2]*Shell
	surfs  []*boolSurface
	from   map[HSurface]int
	index  [2]map[HSurface]int
	meshes [2]Mesh
	pieces []*piece
	groups int
}

func unionOf(a, b *Shell, tol Tolerances) (*Shell, error) {
	op := &boolOp{
		tol:     tol,
		onTol:   10 * tol.LengthEps,
		nearTol: 4 * (tol.ChordTol + tol.ClassifyOffset),
	}
	op.work[0] = prepareBooleanInput(a, tol.LengthEps)
	op.work[1] = prepareBooleanInput(b, tol.LengthEps)
	op.collectSurfaces()

	segs := op.intersect()
	isects := op.intersectionCurves(segs)
	op.buildPieces(isects)
	if err := op.classify(); err != nil {
		return nil, err
	}
	runs := op.runs()
	merged := mergeCoincident(runs, op.tol)
	logger().Debug("union",
		"segments", len(segs), "intersections", len(isects),
		"pieces", len(op.pieces), "runs", len(runs), "merged", merged)
	sh, err := op.assemble(runs)
	if err != nil {
		return nil, err
	}
	if err := op.check(sh, a, b); err != nil {
		return nil, err
	}
	return sh, nil
}

// check rejects results that assembled but cannot be right: an edge that
// is not shared by two faces, unless the inputs touched along faces, or a
// volume outside the bounds set by the inputs. Inputs that are not closed
// solids are not checked.
func (op *boolOp) check(sh, a, b *Shell) error {
	if !a.IsWatertight() || !b.IsWatertight() {
		return nil
	}
	if h, ok := sh.openCurve(); ok {
		if !op.coincident {
			err := &BooleanError{Reason: "edge is not shared by two faces"}
			if c := sh.Curve.Find(h); c != nil {
				err.At = c.Pts[len(c.Pts)/2]
				err.Surface = op.inputSurface(c.SrfA)
			}
			return err
		}
		logger().Warn("union: result has unshared edges after coincident faces", "curve", h)
	}

	va, vb, v := a.Volume(), b.Volume(), sh.Volume()
	least, most := math.Max(va, vb), va+vb
	slack := 0.01 * most
	if v < least-slack || v > most+slack {
		bb := sh.BoundingBox()
		return &BooleanError{
			At:     midpoint(bb.Min, bb.Max),
			Reason: fmt.Sprintf("volume %g outside [%g, %g]", v, least, most),
		}
	}
	return nil
}

// inputSurface returns the handle, in its input shell, of the surface that
// became h in the result.
func (op *boolOp) inputSurface(h HSurface) HSurface {
	si, ok := op.from[h]
	if !ok {
		return 0
	}
	return op.surfs[si].s.H
}

// prepareBooleanInput copies sh and normalizes it: untrimmed surfaces get
// explicit boundary curves, and trims covering only part of a curve get a
// curve of their own.
func prepareBooleanInput(sh *Shell, eps float64) *Shell {
	w := sh.Copy()
	w.Surface.Each(func(h HSurface, s *Surface) {
		if len(s.Trim) == 0 {
			edges, ok := s.boundaryCurves()
			for k, e := range edges {
				if !ok[k] || pointsEqual(e.Start(), e.Finish(), eps) {
					continue
				}
				hc := w.AddCurve(NewSCurve(e, h, 0))
				s.Trim = append(s.Trim, TrimByCurve(w.Curve.MustFind(hc), false, v3.Vec{}))
			}
			return
		}
		for i := range s.Trim {
			tb := &s.Trim[i]
			c := w.Curve.MustFind(tb.Curve)
			fwd := pointsEqual(tb.Start, c.Start(), eps) && pointsEqual(tb.Finish, c.Finish(), eps)
			back := pointsEqual(tb.Start, c.Finish(), eps) && pointsEqual(tb.Finish, c.Start(), eps)
			if (fwd && !tb.Backwards) || (back && tb.Backwards) {
				continue
			}
			nc := SCurve{Pts: tb.Polyline(w), SrfA: h}
			if c.IsExact() {
				ta, tf := c.Exact.ClosestParamTo(tb.Start), c.Exact.ClosestParamTo(tb.Finish)
				if ta < tf {
					nc.Exact = c.Exact.Subcurve(ta, tf)
				} else {
					nc.Exact = c.Exact.Subcurve(tf, ta).Reversed()
				}
			}
			hc := w.AddCurve(nc)
			*tb = TrimByCurve(w.Curve.MustFind(hc), false, tb.Out)
		}
	})
	return w
}

func (op *boolOp) collectSurfaces() {
	for k, sh := range op.work {
		op.index[k] = map[HSurface]int{}
		sh.Surface.Each(func(h HSurface, s *Surface) {
			bs := &boolSurface{
				idx:    len(op.surfs),
				shell:  k,
				s:      s,
				pad:    op.tol.ChordTol + op.tol.LengthEps,
				planar: s.IsPlanar(op.tol.LengthEps),
			}
			s.TriangulateInto(sh, &bs.mesh)
			bs.box = bs.mesh.BoundingBox()
			if bs.mesh.Len() == 0 {
				bs.box = s.BoundingBox()
			}
			bs.trims = lo.Map(s.Trim, func(tb TrimBy, _ int) []v3.Vec { return tb.Polyline(sh) })
			loops, _ := chainPolylines(bs.trims, op.tol.LengthEps)
			for _, l := range loops {
				bs.uv.Contours = append(bs.uv.Contours, lo.Map(l, func(p v3.Vec, _ int) v3.Vec {
					u, v := s.ClosestPointTo(p)
					return v3.Vec{X: u, Y: v}
				}))
			}
			op.index[k][h] = bs.idx
			op.surfs = append(op.surfs, bs)
			op.meshes[k].Add(bs.mesh.L...)
		})
	}
}

// intersect finds the triangle-triangle segments between every pair of
// surfaces whose boxes overlap, keeping those that matter to at least one
// of the two surfaces.
func (op *boolOp) intersect() []segment {
	tree := rtreego.NewTree(3, 2, 8)
	for _, bs := range op.surfs {
		if bs.shell == 1 {
			tree.Insert(bs)
		}
	}
	var segs []segment
	for _, sa := range op.surfs {
		if sa.shell != 0 {
			continue
		}
		for _, sp := range tree.SearchIntersect(sa.Bounds()) {
			segs = append(segs, op.intersectPair(sa, sp.(*boolSurface))...)
		}
	}
	return op.dedupe(segs)
}

func (op *boolOp) intersectPair(sa, sb *boolSurface) []segment {
	eps := op.tol.LengthEps
	var out []segment
	for i := range sa.mesh.L {
		ta := &sa.mesh.L[i]
		boxA := ta.BoundingBox()
		for j := range sb.mesh.L {
			tb := &sb.mesh.L[j]
			if !boxesOverlap(boxA, tb.BoundingBox(), eps) {
				continue
			}
			p, q, ok := triTriSegment(ta, tb, eps)
			if !ok {
				continue
			}
			m := midpoint(p, q)
			seg := segment{p: p, q: q, sa: sa.idx, sb: sb.idx}
			seg.rel[0] = !sa.onTrim(eps, p, q, m)
			seg.rel[1] = !sb.onTrim(eps, p, q, m)
			if seg.rel[0] || seg.rel[1] {
				out = append(out, seg)
			}
		}
	}
	return out
}

// dedupe clears the relevance of repeated segments, which arise where a
// segment runs along a mesh edge or where several surface pairs meet the
// same surface along the same line.
func (op *boolOp) dedupe(segs []segment) []segment {
	eps := op.tol.LengthEps
	bySurf := map[int][]int{}
	for i, s := range segs {
		if s.rel[0] {
			bySurf[s.sa] = append(bySurf[s.sa], i)
		}
		if s.rel[1] {
			bySurf[s.sb] = append(bySurf[s.sb], i)
		}
	}
	side := func(s *segment, srf int) int {
		if s.rel[0] && s.sa == srf {
			return 0
		}
		if s.rel[1] && s.sb == srf {
			return 1
		}
		return -1
	}
	for srf, ids := range bySurf {
		for x := 0; x < len(ids); x++ {
			for y := x + 1; y < len(ids); y++ {
				sx, sy := &segs[ids[x]], &segs[ids[y]]
				if side(sx, srf) < 0 || !sameSegment(sx, sy, eps) {
					continue
				}
				if k := side(sy, srf); k >= 0 {
					sy.rel[k] = false
				}
			}
		}
	}
	return lo.Filter(segs, func(s segment, _ int) bool { return s.rel[0] || s.rel[1] })
}

// isectCurve is an intersection polyline between two surfaces.
type isectCurve struct {
	pts  []v3.Vec
	pair [2]int
	rel  [2]bool
}

// intersectionCurves chains the segments of each surface pair into
// polylines and moves their interior points onto both exact surfaces.
func (op *boolOp) intersectionCurves(segs []segment) []isectCurve {
	type key struct {
		sa, sb int
		rel    [2]bool
	}
	var order []key
	groups := map[key][]segment{}
	for _, s := range segs {
		k := key{s.sa, s.sb, s.rel}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}

	eps := op.tol.LengthEps
	var out []isectCurve
	for _, k := range order {
		sa, sb := op.surfs[k.sa], op.surfs[k.sb]
		for _, pts := range chainSegments(groups[k], eps) {
			pts = simplifyPolyline(pts, eps)
			if !(sa.planar && sb.planar) {
				for i := 1; i+1 < len(pts); i++ {
					pts[i] = refineOnto(pts[i], sa.s, sb.s)
				}
			}
			length := 0.0
			for i := 0; i+1 < len(pts); i++ {
				length += pts[i+1].Sub(pts[i]).Length()
			}
			if length < eps {
				continue
			}
			closed := len(pts) > 2 && pointsEqual(pts[0], pts[len(pts)-1], eps)
			if closed {
				mid := len(pts) / 2
				out = append(out,
					isectCurve{pts: append([]v3.Vec(nil), pts[:mid+1]...), pair: [2]int{k.sa, k.sb}, rel: k.rel},
					isectCurve{pts: append([]v3.Vec(nil), pts[mid:]...), pair: [2]int{k.sa, k.sb}, rel: k.rel})
				continue
			}
			out = append(out, isectCurve{pts: pts, pair: [2]int{k.sa, k.sb}, rel: k.rel})
		}
	}
	return out
}

// refineOnto moves p towards the intersection of two surfaces by projecting
// onto each in turn.
func refineOnto(p v3.Vec, a, b *Surface) v3.Vec {
	for i := 0; i < 8; i++ {
		p = b.ProjectPoint(a.ProjectPoint(p))
	}
	return p
}

// buildPieces splits every curve at the endpoints of the intersection
// curves, so that each piece lies wholly inside, outside or on the other
// shell.
func (op *boolOp) buildPieces(isects []isectCurve) {
	var cuts []v3.Vec
	for _, ic := range isects {
		cuts = append(cuts, ic.pts[0], ic.pts[len(ic.pts)-1])
	}
	eps := op.tol.LengthEps

	for k, sh := range op.work {
		refs := map[HCurve][]curveRef{}
		sh.Surface.Each(func(h HSurface, s *Surface) {
			for _, tb := range s.Trim {
				refs[tb.Curve] = append(refs[tb.Curve], curveRef{op.index[k][h], tb.Backwards})
			}
		})
		sh.Curve.Each(func(h HCurve, c *SCurve) {
			r := refs[h]
			if len(r) == 0 {
				return
			}
			if len(r) > 2 {
				logger().Warn("union: curve used by more than two trims", "curve", h, "uses", len(r))
			}
			group := op.groups
			op.groups++
			for _, pts := range splitPolylineAt(c.Pts, cuts, eps) {
				p := &piece{pts: pts, group: group, src: c}
				p.sides[0] = pieceSide{srf: r[0].srf, backwards: r[0].backwards}
				p.sides[1] = pieceSide{srf: -1}
				if len(r) > 1 {
					p.sides[1] = pieceSide{srf: r[1].srf, backwards: r[1].backwards}
				}
				op.pieces = append(op.pieces, p)
			}
		})
	}

	for _, ic := range isects {
		group := op.groups
		op.groups++
		for _, pts := range splitPolylineAt(ic.pts, cuts, eps) {
			p := &piece{pts: pts, group: group, isect: true, pair: ic.pair}
			for k := range p.sides {
				p.sides[k].srf = -1
				if ic.rel[k] {
					p.sides[k].srf = ic.pair[k]
				}
			}
			op.pieces = append(op.pieces, p)
		}
	}
}

// probe returns a point at the middle of the piece, on its exact curve where
// that is known, and the direction of travel there.
func (op *boolOp) probe(p *piece) (v3.Vec, v3.Vec) {
	i := (len(p.pts) - 1) / 2
	a, b := p.pts[i], p.pts[i+1]
	m := midpoint(a, b)
	switch {
	case p.isect:
		m = refineOnto(m, op.surfs[p.pair[0]].s, op.surfs[p.pair[1]].s)
	case p.src != nil && p.src.IsExact():
		m = p.src.Exact.PointAt(p.src.Exact.ClosestParamTo(m))
	}
	return m, unit(b.Sub(a))
}

// offsetInto returns the point a small step from m across the surface, to
// the left of travel direction t.
func (op *boolOp) offsetInto(bs *boolSurface, m, t v3.Vec) v3.Vec {
	u, v := bs.s.ClosestPointTo(m)
	off := unit(bs.s.NormalAt(u, v)).Cross(t)
	return bs.s.ProjectPoint(m.Add(unit(off).MulScalar(op.tol.ClassifyOffset)))
}

func (op *boolOp) classify() error {
	for _, p := range op.pieces {
		m, t := op.probe(p)
		for k := range p.sides {
			sd := &p.sides[k]
			if sd.srf < 0 {
				continue
			}
			bs := op.surfs[sd.srf]
			if !p.isect {
				dir := t
				if sd.backwards {
					dir = t.MulScalar(-1)
				}
				c, err := op.classifyPoint(op.offsetInto(bs, m, dir), bs)
				if err != nil {
					return err
				}
				sd.keep = keepRegion(c, bs.shell == 0)
				continue
			}
			cl, err := op.classifyPoint(op.offsetInto(bs, m, t), bs)
			if err != nil {
				return err
			}
			cr, err := op.classifyPoint(op.offsetInto(bs, m, t.MulScalar(-1)), bs)
			if err != nil {
				return err
			}
			kl, kr := keepRegion(cl, bs.shell == 0), keepRegion(cr, bs.shell == 0)
			if kl == kr {
				// same on both sides: not a boundary of this surface
				sd.srf = -1
				continue
			}
			sd.keep = true
			sd.backwards = kr
		}
	}
	return nil
}

// classifyPoint classifies q, a point on bs, against the other input shell.
// Points near the other shell are decided by its exact surfaces, since its
// mesh may stand off the surface by up to ChordTol; the mesh only decides
// points farther away.
func (op *boolOp) classifyPoint(q v3.Vec, bs *boolSurface) (Class, error) {
	other := 1 - bs.shell
	var near *boolSurface
	var nearU, nearV float64
	bestD := math.Inf(1)
	for _, o := range op.surfs {
		if o.shell != other || !boxesOverlap(o.box, sdf.Box3{Min: q, Max: q}, o.pad+op.nearTol) {
			continue
		}
		u, v := o.s.ClosestPointTo(q)
		d := o.s.PointAt(u, v).Sub(q).Length()
		if d > op.nearTol || d >= bestD || !o.containsUV(u, v) {
			continue
		}
		near, nearU, nearV, bestD = o, u, v, d
	}
	if near != nil {
		n := near.s.NormalAt(nearU, nearV)
		if bestD <= op.onTol {
			op.coincident = true
			u, v := bs.s.ClosestPointTo(q)
			if bs.s.NormalAt(u, v).Dot(n) > 0 {
				return OnSame, nil
			}
			return OnOpposite, nil
		}
		if q.Sub(near.s.PointAt(nearU, nearV)).Dot(n) > 0 {
			return Outside, nil
		}
		return Inside, nil
	}
	w, ok := op.meshes[other].Winding(q, op.tol.LengthEps)
	if !ok {
		return Outside, &BooleanError{At: q, Surface: bs.s.H, Reason: "ambiguous point classification"}
	}
	if w != 0 {
		return Inside, nil
	}
	return Outside, nil
}

// runs joins consecutive pieces of each curve that are kept the same way.
func (op *boolOp) runs() []*run {
	type pattern [2]pieceSide
	pat := func(p *piece) pattern {
		var x pattern
		for k, sd := range p.sides {
			if sd.srf >= 0 && sd.keep {
				x[k] = sd
			} else {
				x[k] = pieceSide{srf: -1}
			}
		}
		return x
	}

	var out []*run
	flush := func(ps []*piece, whole bool) {
		x := pat(ps[0])
		r := &run{}
		for _, sd := range x {
			if sd.srf >= 0 {
				r.sides = append(r.sides, sd)
			}
		}
		if len(r.sides) == 0 {
			return
		}
		for i, p := range ps {
			if i == 0 {
				r.pts = append(r.pts, p.pts...)
			} else {
				r.pts = append(r.pts, p.pts[1:]...)
			}
		}
		src := ps[0].src
		switch {
		case src == nil || !src.IsExact():
		case whole:
			r.exact = src.Exact
			r.pts = append([]v3.Vec(nil), src.Pts...)
		default:
			ta := src.Exact.ClosestParamTo(r.pts[0])
			tf := src.Exact.ClosestParamTo(r.pts[len(r.pts)-1])
			if ta < tf {
				r.exact = src.Exact.Subcurve(ta, tf)
			}
		}
		out = append(out, r)
	}

	for i := 0; i < len(op.pieces); {
		j := i
		for j < len(op.pieces) && op.pieces[j].group == op.pieces[i].group {
			j++
		}
		group := op.pieces[i:j]
		start := 0
		for k := 1; k <= len(group); k++ {
			if k == len(group) || pat(group[k]) != pat(group[start]) {
				flush(group[start:k], start == 0 && k == len(group))
				start = k
			}
		}
		i = j
	}
	return out
}

// mergeCoincident pairs up single-sided runs that trace the same curve, so
// that faces from the two inputs meeting along an edge share one SCurve.
// It returns the number of merges.
func mergeCoincident(runs []*run, tol Tolerances) int {
	eps := 10 * tol.LengthEps
	near := func(a, b []v3.Vec) bool {
		for i := 0; i+1 < len(b); i++ {
			if distToPolyline(midpoint(b[i], b[i+1]), a) > tol.ChordTol+eps {
				return false
			}
		}
		return lo.EveryBy(b, func(p v3.Vec) bool { return distToPolyline(p, a) < tol.ChordTol+eps })
	}
	n := 0
	for i, ri := range runs {
		if ri.dead || len(ri.sides) != 1 {
			continue
		}
		for _, rj := range runs[i+1:] {
			if rj.dead || len(rj.sides) != 1 {
				continue
			}
			a0, a1 := ri.pts[0], ri.pts[len(ri.pts)-1]
			b0, b1 := rj.pts[0], rj.pts[len(rj.pts)-1]
			same := pointsEqual(a0, b0, eps) && pointsEqual(a1, b1, eps)
			rev := pointsEqual(a0, b1, eps) && pointsEqual(a1, b0, eps)
			if !(same || rev) || !near(ri.pts, rj.pts) || !near(rj.pts, ri.pts) {
				continue
			}
			keep, drop := ri, rj
			if len(rj.pts) > len(ri.pts) {
				keep, drop = rj, ri
			}
			sd := drop.sides[0]
			if rev {
				sd.backwards = !sd.backwards
			}
			keep.sides = append(keep.sides, sd)
			drop.dead = true
			n++
			break
		}
	}
	return n
}

// assemble builds the result shell from the surviving runs.
func (op *boolOp) assemble(runs []*run) (*Shell, error) {
	live := lo.Filter(runs, func(r *run, _ int) bool { return !r.dead })
	type use struct {
		run       int
		backwards bool
	}
	perSurf := make([][]use, len(op.surfs))
	for ri, r := range live {
		for _, sd := range r.sides {
			perSurf[sd.srf] = append(perSurf[sd.srf], use{ri, sd.backwards})
		}
	}

	eps := op.tol.LengthEps
	ordered := make([][]use, len(op.surfs))
	for si, uses := range perSurf {
		if len(uses) == 0 {
			continue
		}
		pls := lo.Map(uses, func(u use, _ int) []v3.Vec {
			pts := live[u.run].pts
			if u.backwards {
				return lo.Reverse(append([]v3.Vec(nil), pts...))
			}
			return pts
		})
		loops, closed := chainOrder(pls, eps)
		for li, l := range loops {
			if !closed[li] {
				last := pls[l[len(l)-1]]
				return nil, &BooleanError{
					At:      last[len(last)-1],
					Surface: op.surfs[si].s.H,
					Reason:  "trim loop does not close",
				}
			}
			for _, k := range l {
				ordered[si] = append(ordered[si], uses[k])
			}
		}
	}

	out := &Shell{}
	newH := make([]HSurface, len(op.surfs))
	op.from = map[HSurface]int{}
	for si, bs := range op.surfs {
		if len(ordered[si]) == 0 {
			continue
		}
		s := *bs.s
		s.Trim = nil
		newH[si] = out.AddSurface(s)
		op.from[newH[si]] = si
	}
	curveH := make([]HCurve, len(live))
	for ri, r := range live {
		c := SCurve{Exact: r.exact, Pts: append([]v3.Vec(nil), r.pts...), SrfA: newH[r.sides[0].srf]}
		if len(r.sides) > 1 {
			c.SrfB = newH[r.sides[1].srf]
		}
		curveH[ri] = out.AddCurve(c)
	}
	for si, uses := range ordered {
		if len(uses) == 0 {
			continue
		}
		s := out.Surface.MustFind(newH[si])
		for _, u := range uses {
			s.Trim = append(s.Trim, TrimByCurve(out.Curve.MustFind(curveH[u.run]), u.backwards, v3.Vec{}))
		}
	}
	out.fillTrimOut()
	return out, nil
}
