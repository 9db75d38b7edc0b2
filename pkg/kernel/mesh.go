package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which defsolid this came from
}

// AddTriangle appends an unshared triangle with face normal n.
func (m *Mesh) AddTriangle(a, b, c, n [3]float64) {
	base := uint32(m.VertexCount())
	for _, v := range [3][3]float64{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c [3]float64) {
	corner := func(k uint32) [3]float64 {
		return [3]float64{float64(m.Vertices[3*k]), float64(m.Vertices[3*k+1]), float64(m.Vertices[3*k+2])}
	}
	return corner(m.Indices[3*i]), corner(m.Indices[3*i+1]), corner(m.Indices[3*i+2])
}

// Volume returns the signed volume enclosed by the mesh. It is positive
// for a closed mesh whose triangles wind counter-clockwise seen from outside.
func (m *Mesh) Volume() float64 {
	var v float64
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		v += a[0]*(b[1]*c[2]-b[2]*c[1]) -
			a[1]*(b[0]*c[2]-b[2]*c[0]) +
			a[2]*(b[0]*c[1]-b[1]*c[0])
	}
	return v / 6
}
