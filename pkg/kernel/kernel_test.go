package kernel

import (
	"errors"
	"math"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Mesh building ---

// unitCube returns the 12 triangles of [0,1]^3, wound outwards.
func unitCube() *Mesh {
	p := func(i int) [3]float64 {
		return [3]float64{float64(i & 1), float64(i >> 1 & 1), float64(i >> 2 & 1)}
	}
	faces := []struct {
		q [4]int
		n [3]float64
	}{
		{[4]int{0, 2, 3, 1}, [3]float64{0, 0, -1}},
		{[4]int{4, 5, 7, 6}, [3]float64{0, 0, 1}},
		{[4]int{0, 1, 5, 4}, [3]float64{0, -1, 0}},
		{[4]int{2, 6, 7, 3}, [3]float64{0, 1, 0}},
		{[4]int{0, 4, 6, 2}, [3]float64{-1, 0, 0}},
		{[4]int{1, 3, 7, 5}, [3]float64{1, 0, 0}},
	}
	m := &Mesh{}
	for _, f := range faces {
		m.AddTriangle(p(f.q[0]), p(f.q[1]), p(f.q[2]), f.n)
		m.AddTriangle(p(f.q[0]), p(f.q[2]), p(f.q[3]), f.n)
	}
	return m
}

func TestMeshAddTriangle(t *testing.T) {
	m := &Mesh{}
	m.AddTriangle([3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{0, 1, 0}, [3]float64{0, 0, 1})
	m.AddTriangle([3]float64{0, 0, 1}, [3]float64{1, 0, 1}, [3]float64{0, 1, 1}, [3]float64{0, 0, 1})
	if m.VertexCount() != 6 || m.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	_, b, _ := m.Triangle(1)
	if b != [3]float64{1, 0, 1} {
		t.Errorf("Triangle(1) b = %v", b)
	}
}

func TestMeshVolume(t *testing.T) {
	m := unitCube()
	if m.TriangleCount() != 12 {
		t.Fatalf("TriangleCount() = %d, want 12", m.TriangleCount())
	}
	if v := m.Volume(); math.Abs(v-1) > 1e-6 {
		t.Errorf("Volume() = %v, want 1", v)
	}
	if v := (&Mesh{}).Volume(); v != 0 {
		t.Errorf("empty Volume() = %v, want 0", v)
	}
}

func TestCheckDims(t *testing.T) {
	tests := []struct {
		name string
		dims []float64
		ok   bool
	}{
		{"positive", []float64{1, 2, 3}, true},
		{"none", nil, true},
		{"zero", []float64{1, 0, 3}, false},
		{"negative", []float64{-1}, false},
		{"NaN", []float64{math.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDims(tt.dims...)
			if (err == nil) != tt.ok {
				t.Errorf("CheckDims(%v) = %v", tt.dims, err)
			}
			if err != nil && !errors.Is(err, ErrDegenerate) {
				t.Errorf("CheckDims(%v) = %v, want ErrDegenerate", tt.dims, err)
			}
		})
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

func (s *stubSolid) Contains(p [3]float64) bool {
	for i := range p {
		if p[i] < s.minBB[i] || p[i] > s.maxBB[i] {
			return false
		}
	}
	return true
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. Every solid is its bounding box.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) (Solid, error) {
	if err := CheckDims(x, y, z); err != nil {
		return nil, err
	}
	return &stubSolid{maxBB: [3]float64{x, y, z}}, nil
}

func (k *stubKernel) Cylinder(height, radius float64) (Solid, error) {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}, nil
}

func (k *stubKernel) Extrude(_ [][2]float64, height float64) (Solid, error) {
	return &stubSolid{maxBB: [3]float64{0, 0, height}}, nil
}

func (k *stubKernel) Union(a, _ Solid) (Solid, error) { return a, nil }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Box(10, 20, 30)
	if err != nil {
		t.Fatal(err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
	if !s.Contains([3]float64{5, 5, 5}) || s.Contains([3]float64{11, 5, 5}) {
		t.Error("Contains disagrees with the bounding box")
	}
	if _, err := k.Box(10, 0, 30); !errors.Is(err, ErrDegenerate) {
		t.Errorf("Box with a zero side: err = %v", err)
	}
}
