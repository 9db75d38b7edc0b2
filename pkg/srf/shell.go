package srf

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shell owns the curves and surfaces of one solid, or of an open set of
// surfaces. Shells returned by the constructors in this package are not
// modified afterwards.
type Shell struct {
	Curve   IdList[HCurve, SCurve]
	Surface IdList[HSurface, Surface]
}

// AddCurve stores c under a new handle, which it also records in c.H.
func (sh *Shell) AddCurve(c SCurve) HCurve {
	h := sh.Curve.Add(c)
	sh.Curve.MustFind(h).H = h
	return h
}

// AddSurface stores s under a new handle, which it also records in s.H.
func (sh *Shell) AddSurface(s Surface) HSurface {
	h := sh.Surface.Add(s)
	sh.Surface.MustFind(h).H = h
	return h
}

// Copy returns a deep copy of the shell with the same handles.
func (sh *Shell) Copy() *Shell {
	out := &Shell{Curve: sh.Curve.Clone(), Surface: sh.Surface.Clone()}
	out.Curve.Each(func(_ HCurve, c *SCurve) {
		c.Pts = append([]v3.Vec(nil), c.Pts...)
	})
	out.Surface.Each(func(_ HSurface, s *Surface) {
		s.Trim = append([]TrimBy(nil), s.Trim...)
	})
	return out
}

// Transform returns a copy of the shell with every point mapped through f,
// which must be a rigid motion.
func (sh *Shell) Transform(f func(v3.Vec) v3.Vec) *Shell {
	out := sh.Copy()
	out.Curve.Each(func(_ HCurve, c *SCurve) {
		if c.IsExact() {
			c.Exact = c.Exact.Transform(f)
		}
		for i, p := range c.Pts {
			c.Pts[i] = f(p)
		}
	})
	out.Surface.Each(func(_ HSurface, s *Surface) {
		s.Transform(f)
	})
	return out
}

// Translate returns a copy of the shell moved by d.
func (sh *Shell) Translate(d v3.Vec) *Shell {
	return sh.Transform(func(p v3.Vec) v3.Vec { return p.Add(d) })
}

// TriangulateInto appends the triangulation of every surface to m.
func (sh *Shell) TriangulateInto(m *Mesh) {
	sh.Surface.Each(func(_ HSurface, s *Surface) {
		s.TriangulateInto(sh, m)
	})
}

// Mesh returns the triangulation of the shell.
func (sh *Shell) Mesh() *Mesh {
	m := &Mesh{}
	sh.TriangulateInto(m)
	return m
}

// Volume returns the volume enclosed by the triangulated shell.
func (sh *Shell) Volume() float64 {
	return sh.Mesh().Volume()
}

// BoundingBox returns a box containing every surface's control points.
func (sh *Shell) BoundingBox() sdf.Box3 {
	box := emptyBox()
	sh.Surface.Each(func(_ HSurface, s *Surface) {
		box = boxUnion(box, s.BoundingBox())
	})
	return box
}

// Contains reports whether p lies inside the closed shell.
func (sh *Shell) Contains(p v3.Vec) bool {
	return sh.Mesh().Contains(p)
}

// IsWatertight reports whether every curve is used by exactly two trims
// that run in opposite directions.
func (sh *Shell) IsWatertight() bool {
	_, open := sh.openCurve()
	return !open && sh.Surface.Len() > 0
}

// openCurve returns the first curve, by handle, that is not used by
// exactly one forward and one backward trim. A trim naming a missing curve
// reports that curve's handle.
func (sh *Shell) openCurve() (HCurve, bool) {
	type use struct{ fwd, back int }
	uses := map[HCurve]*use{}
	sh.Curve.Each(func(h HCurve, _ *SCurve) { uses[h] = &use{} })
	var missing []HCurve
	sh.Surface.Each(func(_ HSurface, s *Surface) {
		for _, tb := range s.Trim {
			u := uses[tb.Curve]
			if u == nil {
				missing = append(missing, tb.Curve)
				continue
			}
			if tb.Backwards {
				u.back++
			} else {
				u.fwd++
			}
		}
	})
	if len(missing) > 0 {
		return missing[0], true
	}
	for _, h := range sh.Curve.Handles() {
		if u := uses[h]; u.fwd != 1 || u.back != 1 {
			return h, true
		}
	}
	return 0, false
}

// Edges returns the segments of every linearized curve.
func (sh *Shell) Edges() []Edge {
	var out []Edge
	sh.Curve.Each(func(_ HCurve, c *SCurve) {
		for i := 0; i+1 < len(c.Pts); i++ {
			out = append(out, Edge{A: c.Pts[i], B: c.Pts[i+1]})
		}
	})
	return out
}

// trimOut returns the Out vector for a trim of s: the travel direction at
// Start crossed with the surface normal there.
func (sh *Shell) trimOut(s *Surface, tb *TrimBy) v3.Vec {
	pl := tb.Polyline(sh)
	if len(pl) < 2 {
		return v3.Vec{}
	}
	u, v := s.ClosestPointTo(pl[0])
	return unit(pl[1].Sub(pl[0]).Cross(s.NormalAt(u, v)))
}

// fillTrimOut computes Out for every trim in the shell.
func (sh *Shell) fillTrimOut() {
	sh.Surface.Each(func(_ HSurface, s *Surface) {
		for i := range s.Trim {
			s.Trim[i].Out = sh.trimOut(s, &s.Trim[i])
		}
	})
}
