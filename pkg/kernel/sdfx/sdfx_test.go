package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/brep/pkg/kernel"
)

// coarse keeps marching cubes fast in tests.
func coarse() *SdfxKernel {
	return &SdfxKernel{Cells: 64}
}

// mustSolid returns a function that fails t when a solid cannot be built.
func mustSolid(t *testing.T) func(kernel.Solid, error) kernel.Solid {
	return func(s kernel.Solid, err error) kernel.Solid {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
}

func TestBox(t *testing.T) {
	k := coarse()
	box := mustSolid(t)(k.Box(100, 50, 25))
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	want := 100.0 * 50 * 25
	if v := mesh.Volume(); math.Abs(v-want) > 0.1*want {
		t.Errorf("box volume = %v, want about %v", v, want)
	}
}

func TestCylinder(t *testing.T) {
	k := coarse()
	cyl := mustSolid(t)(k.Cylinder(50, 10))
	min, max := cyl.BoundingBox()
	if math.Abs(min[2]) > 0.01 || math.Abs(max[2]-50) > 0.01 {
		t.Errorf("cylinder spans z %v..%v, want 0..50", min[2], max[2])
	}
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestExtrude(t *testing.T) {
	k := coarse()
	tri := [][2]float64{{0, 0}, {10, 0}, {0, 10}}
	s := mustSolid(t)(k.Extrude(tri, 5))
	tests := []struct {
		name string
		p    [3]float64
		want bool
	}{
		{"inside", [3]float64{2, 2, 2.5}, true},
		{"beyond the hypotenuse", [3]float64{8, 8, 2.5}, false},
		{"above", [3]float64{2, 2, 6}, false},
		{"below", [3]float64{2, 2, -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestDegeneratePrimitives(t *testing.T) {
	k := New()
	tests := []struct {
		name string
		make func() (kernel.Solid, error)
	}{
		{"flat box", func() (kernel.Solid, error) { return k.Box(1, 0, 1) }},
		{"negative radius", func() (kernel.Solid, error) { return k.Cylinder(1, -1) }},
		{"two point profile", func() (kernel.Solid, error) { return k.Extrude([][2]float64{{0, 0}, {1, 0}}, 1) }},
		{"zero height profile", func() (kernel.Solid, error) {
			return k.Extrude([][2]float64{{0, 0}, {1, 0}, {0, 1}}, 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.make(); !errors.Is(err, kernel.ErrDegenerate) {
				t.Errorf("err = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	k := coarse()
	box1 := mustSolid(t)(k.Box(50, 50, 50))
	box2 := k.Translate(mustSolid(t)(k.Box(50, 50, 50)), 30, 0, 0)
	u := mustSolid(t)(k.Union(box1, box2))
	if !u.Contains([3]float64{10, 25, 25}) || !u.Contains([3]float64{70, 25, 25}) {
		t.Error("union is missing part of an input")
	}
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	want := 80.0 * 50 * 50
	if v := mesh.Volume(); math.Abs(v-want) > 0.1*want {
		t.Errorf("union volume = %v, want about %v", v, want)
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := mustSolid(t)(k.Box(10, 10, 10))
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	// The box has its corner at the origin, so it now spans
	// (100,200,300) to (110,210,310).
	const tol = 0.5
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box := mustSolid(t)(k.Box(100, 50, 25))
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New()
	box := mustSolid(t)(k.Box(100, 10, 10))

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
	if !rotated.Contains([3]float64{-5, 50, 5}) {
		t.Error("rotated box does not contain a point on its new axis")
	}
}
