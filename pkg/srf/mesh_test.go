package srf

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestTriangleClosestPoint(t *testing.T) {
	tri := NewTriangle(vec(0, 0, 0), vec(2, 0, 0), vec(0, 2, 0))
	tests := []struct {
		name string
		p    v3.Vec
		want v3.Vec
	}{
		{"above interior", vec(0.5, 0.5, 3), vec(0.5, 0.5, 0)},
		{"past vertex a", vec(-1, -1, 0), vec(0, 0, 0)},
		{"past vertex b", vec(3, -1, 0), vec(2, 0, 0)},
		{"beside edge ab", vec(1, -1, 1), vec(1, 0, 0)},
		{"beyond hypotenuse", vec(2, 2, 0), vec(1, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff(t, tt.want, tri.ClosestPoint(tt.p), approx)
		})
	}
	diff(t, vec(0, 0, 1), tri.Normal)
	diff(t, 2.0, tri.Area(), approx)
}

func TestTriangleRaycast(t *testing.T) {
	tri := NewTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	const eps = 1e-6
	tests := []struct {
		name string
		o, d v3.Vec
		want rayHit
	}{
		{"from above", vec(0.2, 0.2, 1), vec(0, 0, -1), rayHitFront},
		{"from below", vec(0.2, 0.2, -1), vec(0, 0, 1), rayHitBack},
		{"pointing away", vec(0.2, 0.2, 1), vec(0, 0, 1), rayMiss},
		{"outside", vec(2, 2, 1), vec(0, 0, -1), rayMiss},
		{"on an edge", vec(0.5, 0, 1), vec(0, 0, -1), rayAmbiguous},
		{"in the plane", vec(-1, 0.2, 0), vec(1, 0, 0), rayAmbiguous},
		{"parallel above", vec(-1, 0.2, 1), vec(1, 0, 0), rayMiss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tri.raycast(tt.o, tt.d, eps); got != tt.want {
				t.Errorf("raycast() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeshOfUnitCube(t *testing.T) {
	m := box(t, vec(0, 0, 0), vec(1, 1, 1)).Mesh()
	diff(t, 12, m.Len())
	diff(t, 1.0, m.Volume(), approx)
	diff(t, 6.0, m.Area(), approx)
	bb := m.BoundingBox()
	diff(t, vec(0, 0, 0), bb.Min, approx)
	diff(t, vec(1, 1, 1), bb.Max, approx)

	tests := []struct {
		name string
		p    v3.Vec
		want int
	}{
		{"center", vec(0.5, 0.5, 0.5), 1},
		{"near a corner", vec(0.01, 0.02, 0.03), 1},
		{"outside", vec(1.5, 0.5, 0.5), 0},
		{"far away", vec(-10, 3, 7), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := m.Winding(tt.p, 1e-6)
			if !ok {
				t.Fatal("Winding() was ambiguous")
			}
			diff(t, tt.want, w)
			diff(t, tt.want != 0, m.Contains(tt.p))
		})
	}
}

func TestMeshNearest(t *testing.T) {
	m := box(t, vec(0, 0, 0), vec(1, 1, 1)).Mesh()
	i, d := m.Nearest(vec(0.5, 0.5, 1.25))
	if i < 0 {
		t.Fatal("Nearest() found nothing")
	}
	diff(t, 0.25, d, approx)
	diff(t, vec(0, 0, 1), m.L[i].Normal, approx)

	var empty Mesh
	if i, _ := empty.Nearest(vec(0, 0, 0)); i != -1 {
		t.Errorf("Nearest() on an empty mesh = %d, want -1", i)
	}
}

func TestMeshTransform(t *testing.T) {
	m := box(t, vec(0, 0, 0), vec(1, 1, 1)).Mesh()
	m.Transform(func(p v3.Vec) v3.Vec { return vec(p.Z, p.X, p.Y).Add(vec(4, 0, 0)) })
	diff(t, 1.0, m.Volume(), approx)
	if !m.Contains(vec(4.5, 0.5, 0.5)) {
		t.Error("moved cube does not contain its new center")
	}
}
