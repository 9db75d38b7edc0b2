package srf

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestSurfaceFromPlane(t *testing.T) {
	s := SurfaceFromPlane(vec(1, 1, 1), vec(2, 0, 0), vec(0, 3, 0))
	diff(t, vec(1, 1, 1), s.PointAt(0, 0), approx)
	diff(t, vec(3, 4, 1), s.PointAt(1, 1), approx)
	diff(t, vec(2, 2.5, 1), s.PointAt(0.5, 0.5), approx)
	diff(t, vec(0, 0, 1), unit(s.NormalAt(0.3, 0.6)), approx)
	if !s.IsPlanar(1e-9) {
		t.Error("IsPlanar() = false for a plane")
	}
}

func TestSurfaceFromExtrusion(t *testing.T) {
	arc := ArcFrom(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	s := SurfaceFromExtrusionOf(arc, vec(0, 0, 1), vec(0, 0, 3))
	for _, u := range []float64{0, 0.3, 0.7, 1} {
		diff(t, arc.PointAt(u).Add(vec(0, 0, 1)), s.PointAt(u, 0), approx)
		diff(t, arc.PointAt(u).Add(vec(0, 0, 3)), s.PointAt(u, 1), approx)
		// the arc is counter-clockwise about +z, so the normal points away
		// from the axis
		p := s.PointAt(u, 0.5)
		radial := unit(vec(p.X, p.Y, 0))
		if d := unit(s.NormalAt(u, 0.5)).Dot(radial); !near(d, 1, 1e-9) {
			t.Errorf("normal at u=%v is not radial: dot %v", u, d)
		}
	}
	if s.IsPlanar(1e-6) {
		t.Error("IsPlanar() = true for a cylindrical patch")
	}
}

func TestSurfaceTangents(t *testing.T) {
	arc := ArcFrom(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	s := SurfaceFromExtrusionOf(arc, v3.Vec{}, vec(0, 0, 2))
	const h = 1e-6
	for _, uv := range [][2]float64{{0.2, 0.3}, {0.5, 0.5}, {0.9, 0.1}} {
		u, v := uv[0], uv[1]
		du := s.PointAt(u+h, v).Sub(s.PointAt(u-h, v)).MulScalar(1 / (2 * h))
		dv := s.PointAt(u, v+h).Sub(s.PointAt(u, v-h)).MulScalar(1 / (2 * h))
		if d := s.TangentWrtUAt(u, v).Sub(du).Length(); d > 1e-5 {
			t.Errorf("TangentWrtUAt(%v, %v) off by %v", u, v, d)
		}
		if d := s.TangentWrtVAt(u, v).Sub(dv).Length(); d > 1e-5 {
			t.Errorf("TangentWrtVAt(%v, %v) off by %v", u, v, d)
		}
	}
}

func TestClosestPointTo(t *testing.T) {
	plane := SurfaceFromPlane(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	arc := ArcFrom(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	cyl := SurfaceFromExtrusionOf(arc, v3.Vec{}, vec(0, 0, 1))

	tests := []struct {
		name string
		s    Surface
		p    v3.Vec
		want v3.Vec
	}{
		{"above plane", plane, vec(0.3, 0.7, 2), vec(0.3, 0.7, 0)},
		{"beyond plane edge", plane, vec(1.5, 0.5, 0), vec(1, 0.5, 0)},
		{"outside cylinder", cyl, vec(2*math.Cos(0.5), 2*math.Sin(0.5), 0.4), vec(math.Cos(0.5), math.Sin(0.5), 0.4)},
		{"inside cylinder", cyl, vec(0.5*math.Cos(1), 0.5*math.Sin(1), 0.6), vec(math.Cos(1), math.Sin(1), 0.6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.ProjectPoint(tt.p)
			if d := got.Sub(tt.want).Length(); d > 1e-7 {
				t.Errorf("ProjectPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSurfaceTransform(t *testing.T) {
	s := SurfaceFromPlane(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	s.Trim = []TrimBy{{Start: vec(0, 0, 0), Finish: vec(1, 0, 0), Out: vec(0, -1, 0)}}
	// quarter turn about z, then a shift
	f := func(p v3.Vec) v3.Vec { return vec(-p.Y+5, p.X, p.Z) }
	s.Transform(f)
	diff(t, vec(5, 1, 0), s.PointAt(1, 0), approx)
	diff(t, vec(0, 0, 1), unit(s.NormalAt(0.5, 0.5)), approx)
	diff(t, vec(5, 0, 0), s.Trim[0].Start, approx)
	diff(t, vec(5, 1, 0), s.Trim[0].Finish, approx)
	diff(t, vec(1, 0, 0), s.Trim[0].Out, approx)
}

func TestBoundaryCurves(t *testing.T) {
	s := SurfaceFromPlane(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	edges, ok := s.boundaryCurves()
	for k := range edges {
		if !ok[k] {
			t.Fatalf("edge %d not reported", k)
		}
		next := edges[(k+1)%4]
		diff(t, edges[k].Finish(), next.Start(), approx)
	}
	diff(t, vec(0, 0, 0), edges[0].Start(), approx)
	diff(t, vec(1, 0, 0), edges[0].Finish(), approx)
}
