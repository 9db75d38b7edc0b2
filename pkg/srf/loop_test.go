package srf

import (
	"math"
	"testing"
)

func TestLoopFromCurvesReversesToClose(t *testing.T) {
	var l BezierList
	l.Add(
		BezierFrom(vec(0, 0, 0), vec(1, 0, 0)),
		BezierFrom(vec(0, 1, 0), vec(1, 1, 0)), // backwards
		BezierFrom(vec(1, 0, 0), vec(1, 1, 0)),
		BezierFrom(vec(0, 1, 0), vec(0, 0, 0)),
	)
	loop, ok, _ := LoopFromCurves(&l)
	if !ok {
		t.Fatal("square did not close")
	}
	diff(t, 0, l.Len())
	diff(t, 4, len(loop.L))
	for i, b := range loop.L {
		next := loop.L[(i+1)%len(loop.L)]
		diff(t, b.Finish(), next.Start())
	}
}

func TestLoopFromCurvesOpen(t *testing.T) {
	var l BezierList
	l.Add(
		BezierFrom(vec(0, 0, 0), vec(1, 0, 0)),
		BezierFrom(vec(1, 0, 0), vec(1, 1, 0)),
		BezierFrom(vec(5, 5, 0), vec(6, 5, 0)),
	)
	_, ok, at := LoopFromCurves(&l)
	if ok {
		t.Fatal("open chain reported closed")
	}
	diff(t, Edge{A: vec(0, 0, 0), B: vec(1, 1, 0)}, at)
	diff(t, 1, l.Len())
}

func TestLoopSetOrientation(t *testing.T) {
	var l BezierList
	// outer boundary clockwise, hole counter-clockwise: both get flipped
	outer := rectangle(0, 0, 4, 4, 0)
	for i := range outer.L {
		outer.L[i].Reverse()
	}
	l.Add(outer.L...)
	l.Add(rectangle(1, 1, 3, 3, 0).L...)

	ls, ok, _ := LoopSetFromNormal(&l, vec(0, 0, 1))
	if !ok {
		t.Fatal("loops did not close")
	}
	diff(t, 2, len(ls.L))
	var p Polygon
	ls.MakePwlInto(&p)
	areas := []float64{p.Contours[0].SignedArea(ls.Normal), p.Contours[1].SignedArea(ls.Normal)}
	diff(t, []float64{16, -4}, areas, approx)
	if !ls.IsPlanar(1e-9) {
		t.Error("IsPlanar() = false for a flat loop set")
	}
}

func TestLoopSetInfersNormal(t *testing.T) {
	l := rectangle(0, 0, 1, 1, 2)
	ls, ok, _ := LoopSetFrom(l)
	if !ok {
		t.Fatal("loops did not close")
	}
	diff(t, vec(0, 0, 1), ls.Normal, approx)
	if ls.Point.Z != 2 {
		t.Errorf("Point = %v, want a point in z=2", ls.Point)
	}
	c := ls.Curves()
	diff(t, 4, c.Len())
}

func TestLoopSetReportsFirstOpenChain(t *testing.T) {
	l := rectangle(0, 0, 1, 1, 0)
	l.Add(BezierFrom(vec(5, 0, 0), vec(6, 0, 0)))
	ls, ok, at := LoopSetFrom(l)
	if ok {
		t.Fatal("allClosed = true with a dangling curve")
	}
	diff(t, 1, len(ls.L))
	diff(t, Edge{A: vec(5, 0, 0), B: vec(6, 0, 0)}, at)
}

func TestBezierLoopMakePwl(t *testing.T) {
	var l BezierList
	l.Add(circle(0, 0, 1, 0).L...)
	loop, ok, _ := LoopFromCurves(&l)
	if !ok {
		t.Fatal("circle did not close")
	}
	c := loop.MakePwlInto(nil)
	if pointsEqual(c[0], c[len(c)-1], 1e-9) {
		t.Error("closing point repeated")
	}
	for i, p := range c {
		if i > 0 && pointsEqual(p, c[i-1], 1e-12) {
			t.Errorf("point %d repeats its predecessor", i)
		}
	}
	if a := c.SignedArea(vec(0, 0, 1)); !near(a, 3.14159, 0.01) {
		t.Errorf("area = %v, want about pi", a)
	}
}

func TestLoopSetWithCentredHole(t *testing.T) {
	l := rectangle(0, 0, 2, 2, 0)
	l.Add(circle(1, 1, 0.5, 0).L...)
	ls, ok, _ := LoopSetFrom(l)
	if !ok {
		t.Fatal("loops did not close")
	}
	diff(t, vec(0, 0, 1), ls.Normal, approx)
	var p Polygon
	ls.MakePwlInto(&p)
	diff(t, 2, len(p.Contours))
	var outer, hole float64
	for _, c := range p.Contours {
		if a := c.SignedArea(ls.Normal); math.Abs(a) > 1 {
			outer = a
		} else {
			hole = a
		}
	}
	diff(t, 4.0, outer, approx)
	if want := -math.Pi / 4; !near(hole, want, 0.01) {
		t.Errorf("hole area = %v, want about %v", hole, want)
	}
}
