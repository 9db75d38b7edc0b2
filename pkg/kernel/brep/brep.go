// Package brep implements the kernel.Kernel interface on the
// boundary-representation shells of package srf. Solids are exact
// rational surfaces trimmed by shared curves; meshes are produced by
// triangulating each trimmed surface.
package brep

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/srf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Compile-time interface check.
var _ kernel.Kernel = (*BrepKernel)(nil)

// solid wraps a shell to implement kernel.Solid. The shell is never
// modified once wrapped.
type solid struct {
	sh   *srf.Shell
	mesh func() *srf.Mesh
}

// BoundingBox returns the box around the triangulated shell. Cap patches
// extend past their trims, so the control points would overstate it.
func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.mesh().BoundingBox()
	return arr(bb.Min), arr(bb.Max)
}

// Contains reports whether p is inside the triangulated shell.
func (s *solid) Contains(p [3]float64) bool {
	return s.mesh().Contains(vec(p))
}

// Wrap returns sh as a kernel.Solid.
func Wrap(sh *srf.Shell) kernel.Solid {
	return &solid{sh: sh, mesh: sync.OnceValue(sh.Mesh)}
}

// ShellOf returns the shell behind a solid made by this package.
func ShellOf(s kernel.Solid) (*srf.Shell, bool) {
	bs, ok := s.(*solid)
	if !ok {
		return nil, false
	}
	return bs.sh, true
}

// BrepKernel implements kernel.Kernel on srf shells.
type BrepKernel struct{}

// New returns a new BrepKernel.
func New() *BrepKernel {
	return &BrepKernel{}
}

func unwrap(s kernel.Solid) *srf.Shell {
	return s.(*solid).sh
}

// Box creates a box with its minimum corner at the origin.
func (k *BrepKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := kernel.CheckDims(x, y, z); err != nil {
		return nil, err
	}
	return k.Extrude([][2]float64{{0, 0}, {x, 0}, {x, y}, {0, y}}, z)
}

// Cylinder creates a cylinder about the z axis standing on z = 0. The
// circle is four exact quarter arcs.
func (k *BrepKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := kernel.CheckDims(height, radius); err != nil {
		return nil, err
	}
	pts := []v3.Vec{{X: radius}, {Y: radius}, {X: -radius}, {Y: -radius}}
	var l srf.BezierList
	for i := range pts {
		l.Add(srf.ArcFrom(v3.Vec{}, pts[i], pts[(i+1)%len(pts)]))
	}
	return extrude(&l, height)
}

// Extrude sweeps the polygon profile in the z = 0 plane up to height.
// The profile may wind either way.
func (k *BrepKernel) Extrude(profile [][2]float64, height float64) (kernel.Solid, error) {
	if len(profile) < 3 {
		return nil, kernel.ErrDegenerate
	}
	if err := kernel.CheckDims(height); err != nil {
		return nil, err
	}
	pts := lo.Map(profile, func(p [2]float64, _ int) v3.Vec {
		return v3.Vec{X: p[0], Y: p[1]}
	})
	var l srf.BezierList
	for i := range pts {
		l.Add(srf.BezierFrom(pts[i], pts[(i+1)%len(pts)]))
	}
	return extrude(&l, height)
}

func extrude(l *srf.BezierList, height float64) (kernel.Solid, error) {
	sh, err := srf.ShellFromExtrusionOf(l, v3.Vec{}, v3.Vec{Z: height})
	if errors.Is(err, srf.ErrDegenerateExtrusion) {
		return nil, kernel.ErrDegenerate
	}
	if err != nil {
		return nil, fmt.Errorf("brep: extrude: %w", err)
	}
	return Wrap(sh), nil
}

// Union returns the union of two solids.
func (k *BrepKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sh, err := srf.ShellFromUnionOf(unwrap(a), unwrap(b))
	if err != nil {
		return nil, fmt.Errorf("brep: union: %w", err)
	}
	return Wrap(sh), nil
}

// Translate moves a solid by (x, y, z).
func (k *BrepKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return Wrap(unwrap(s).Translate(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes,
// in the same order as the sdfx backend.
func (k *BrepKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	if x == 0 && y == 0 && z == 0 {
		return s
	}
	m := sdfx.EulerRotation(x, y, z)
	return Wrap(unwrap(s).Transform(m.MulPosition))
}

// ToMesh triangulates every trimmed surface of the solid.
func (k *BrepKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m := s.(*solid).mesh()
	if m.Len() == 0 {
		return nil, fmt.Errorf("brep: shell has no triangles")
	}
	return ToKernelMesh(m), nil
}

// ToKernelMesh flattens an srf mesh into render arrays.
func ToKernelMesh(m *srf.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{}
	for _, tri := range m.L {
		out.AddTriangle(arr(tri.A), arr(tri.B), arr(tri.C), arr(tri.Normal))
	}
	return out
}

func arr(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func vec(p [3]float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
