package srf

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func square(x0, y0, x1, y1 float64) Contour {
	return Contour{vec(x0, y0, 0), vec(x1, y0, 0), vec(x1, y1, 0), vec(x0, y1, 0)}
}

func TestContourNormalAndArea(t *testing.T) {
	up := vec(0, 0, 1)
	c := square(0, 0, 2, 3)
	diff(t, up, c.Normal(), approx)
	diff(t, 6.0, c.SignedArea(up), approx)
	c.Reverse()
	diff(t, -6.0, c.SignedArea(up), approx)
	diff(t, vec(0, 0, -1), c.Normal(), approx)
}

func TestContourContainsPoint(t *testing.T) {
	up := vec(0, 0, 1)
	c := square(0, 0, 1, 1)
	tests := []struct {
		name string
		p    v3.Vec
		want bool
	}{
		{"center", vec(0.5, 0.5, 0), true},
		{"above the plane", vec(0.5, 0.5, 7), true},
		{"left", vec(-0.5, 0.5, 0), false},
		{"beyond corner", vec(1.5, 1.5, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ContainsPoint(tt.p, up); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPolygonFixContourDirections(t *testing.T) {
	up := vec(0, 0, 1)
	outer := square(0, 0, 4, 4)
	outer.Reverse()
	hole := square(1, 1, 3, 3)
	island := square(1.5, 1.5, 2.5, 2.5)
	p := Polygon{Contours: []Contour{hole, outer, island}}

	diff(t, []int{1, 0, 2}, []int{p.Depth(0, up), p.Depth(1, up), p.Depth(2, up)})
	p.FixContourDirections(up)
	if p.Contours[1].SignedArea(up) <= 0 {
		t.Error("outer contour is not counter-clockwise")
	}
	if p.Contours[0].SignedArea(up) >= 0 {
		t.Error("hole is not clockwise")
	}
	if p.Contours[2].SignedArea(up) <= 0 {
		t.Error("island is not counter-clockwise")
	}
}

func TestInteriorPointOfConcaveContour(t *testing.T) {
	up := vec(0, 0, 1)
	// an L shape whose first corner is reflex
	c := Contour{vec(1, 1, 0), vec(1, 2, 0), vec(0, 2, 0), vec(0, 0, 0), vec(2, 0, 0), vec(2, 1, 0)}
	q := c.interiorPoint(up)
	if !c.ContainsPoint(q, up) {
		t.Errorf("interiorPoint %v is outside the contour", q)
	}
}

func TestDepthWithHoleNearFirstCorner(t *testing.T) {
	up := vec(0, 0, 1)
	// the hole covers the centroid of the outer contour's first corner
	p := Polygon{Contours: []Contour{square(0, 0, 2, 2), square(0.5, 0.5, 0.9, 0.9)}}
	diff(t, []int{0, 1}, []int{p.Depth(0, up), p.Depth(1, up)})
	p.FixContourDirections(up)
	diff(t, 4.0, p.Contours[0].SignedArea(up), approx)
	diff(t, -0.16, p.Contours[1].SignedArea(up), approx)
}

func TestEnclosesSharedEdge(t *testing.T) {
	up := vec(0, 0, 1)
	outer := square(0, 0, 4, 4)
	// touches the outer boundary along part of its bottom edge
	notch := square(1, 0, 2, 1)
	if !outer.encloses(notch, up, 1e-9) {
		t.Error("notch is not inside the outer contour")
	}
	if notch.encloses(outer, up, 1e-9) {
		t.Error("outer contour is inside the notch")
	}
}
