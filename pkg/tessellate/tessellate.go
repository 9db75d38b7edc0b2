// Package tessellate turns an evaluated scene into triangle meshes using
// a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/brep/pkg/engine"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/samber/lo"
)

// Tessellate produces one triangle mesh per part of the scene, in
// definition order, using the kernel that built the parts. The
// tessellator is read-only and never mutates the scene.
func Tessellate(sc *engine.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if sc == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, sc.Len())
	for _, p := range sc.Parts {
		mesh, err := k.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %q: %w", p.Name, err)
		}
		mesh.Name = p.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Merge concatenates meshes into one, as for a single STL file. The
// inputs are not modified.
func Merge(meshes []*kernel.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{}
	for _, m := range meshes {
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, m.Vertices...)
		out.Normals = append(out.Normals, m.Normals...)
		out.Indices = append(out.Indices, lo.Map(m.Indices, func(i uint32, _ int) uint32 {
			return base + i
		})...)
	}
	if len(meshes) == 1 {
		out.Name = meshes[0].Name
	}
	return out
}

// Stats summarizes one mesh.
type Stats struct {
	Name      string
	Triangles int
	Volume    float64
	Min, Max  [3]float64
}

// Summarize returns the statistics of each mesh.
func Summarize(meshes []*kernel.Mesh) []Stats {
	return lo.Map(meshes, func(m *kernel.Mesh, _ int) Stats {
		st := Stats{Name: m.Name, Triangles: m.TriangleCount(), Volume: m.Volume()}
		for a := 0; a < 3; a++ {
			st.Min[a], st.Max[a] = math.Inf(1), math.Inf(-1)
		}
		for i := 0; i < m.VertexCount(); i++ {
			for a := 0; a < 3; a++ {
				v := float64(m.Vertices[3*i+a])
				st.Min[a] = math.Min(st.Min[a], v)
				st.Max[a] = math.Max(st.Max[a], v)
			}
		}
		return st
	})
}
