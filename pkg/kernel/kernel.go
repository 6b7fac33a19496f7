// Package kernel defines the abstract geometry kernel interface used to
// source solid shapes for the carve pipeline. Implementations provide
// solid modeling and tessellation behind this interface, so callers can
// feed arbitrary solids into displacement and difference-shell
// construction without caring how they were built.
package kernel

import "github.com/chazu/relief/pkg/mesh"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Sphere(radius float64) Solid
	Torus(majorR, minorR float64) Solid
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates a solid into an indexed triangle mesh with
	// welded vertices and per-vertex normals, ready for displacement.
	ToMesh(s Solid) (*mesh.Mesh, error)
}
