// Package kernel defines the abstract geometry kernel interface.
// Implementations (brep, sdfx) provide solid modeling and the union
// operation behind this interface, so the scripting engine and the CLI
// can run the same model through either backend.
package kernel

import "errors"

// ErrDegenerate is returned by the primitives when a dimension is not
// positive or a profile has too few points.
var ErrDegenerate = errors.New("kernel: degenerate primitive")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Contains reports whether p lies inside the solid.
	Contains(p [3]float64) bool
}

// Kernel is the abstract geometry kernel interface.
//
// Box has its minimum corner at the origin. Cylinder and Extrude stand on
// the z = 0 plane and grow towards +z; the cylinder axis is the z axis.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Extrude(profile [][2]float64, height float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// CheckDims returns ErrDegenerate unless every value is positive.
func CheckDims(v ...float64) error {
	for _, x := range v {
		if !(x > 0) {
			return ErrDegenerate
		}
	}
	return nil
}
