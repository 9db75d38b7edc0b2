package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/brep/pkg/engine"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/brep"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/tessellate"
)

// scene evaluates source with k and fails on any error.
func scene(t *testing.T, k kernel.Kernel, source string) *engine.Scene {
	t.Helper()
	sc, evalErrs, err := engine.NewEngine(k).Evaluate(source)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("Evaluate: %v %v", err, evalErrs)
	}
	return sc
}

const twoParts = `
(defsolid "top" (translate (box 4 2 0.25) (vec3 0 0 2)))
(defsolid "leg" (cylinder :height 2 :radius 0.25))
`

func TestNilScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, brep.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestEmptyScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(engine.NewScene(), brep.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestOneMeshPerPart(t *testing.T) {
	tests := []struct {
		name string
		k    kernel.Kernel
	}{
		{"brep", brep.New()},
		{"sdfx", &sdfx.SdfxKernel{Cells: 48}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meshes, err := tessellate.Tessellate(scene(t, tt.k, twoParts), tt.k)
			if err != nil {
				t.Fatal(err)
			}
			if len(meshes) != 2 {
				t.Fatalf("expected 2 meshes, got %d", len(meshes))
			}
			if meshes[0].Name != "top" || meshes[1].Name != "leg" {
				t.Errorf("mesh names = %q, %q", meshes[0].Name, meshes[1].Name)
			}
			for _, m := range meshes {
				if m.IsEmpty() {
					t.Errorf("mesh %q is empty", m.Name)
				}
			}
		})
	}
}

func TestMergeAndSummarize(t *testing.T) {
	k := brep.New()
	meshes, err := tessellate.Tessellate(scene(t, k, twoParts), k)
	if err != nil {
		t.Fatal(err)
	}
	merged := tessellate.Merge(meshes)
	if got, want := merged.TriangleCount(), meshes[0].TriangleCount()+meshes[1].TriangleCount(); got != want {
		t.Errorf("merged triangle count = %d, want %d", got, want)
	}
	for _, i := range merged.Indices {
		if int(i) >= merged.VertexCount() {
			t.Fatalf("index %d out of range", i)
		}
	}

	stats := tessellate.Summarize(meshes)
	top := stats[0]
	if math.Abs(top.Volume-2) > 1e-6 {
		t.Errorf("top volume = %v, want 2", top.Volume)
	}
	if top.Min != [3]float64{0, 0, 2} || top.Max != [3]float64{4, 2, 2.25} {
		t.Errorf("top bounds = %v..%v", top.Min, top.Max)
	}
	leg := stats[1]
	want := math.Pi * 0.0625 * 2
	if math.Abs(leg.Volume-want) > 0.01*want {
		t.Errorf("leg volume = %v, want about %v", leg.Volume, want)
	}
	if got := merged.Volume(); math.Abs(got-top.Volume-leg.Volume) > 1e-4 {
		t.Errorf("merged volume = %v, want %v", got, top.Volume+leg.Volume)
	}
}
