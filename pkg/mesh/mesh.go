// Package mesh defines the shared triangle mesh model used across relief.
// A mesh is an ordered vertex array plus an ordered face array of vertex
// indices; optional per-vertex normals and texture coordinates ride along.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a triangle defined by three vertex indices.
type Face [3]int

// TexCoord is a (s, t) texture coordinate in [0, 1]².
type TexCoord [2]float64

// Mesh is an indexed triangle mesh. Verts and Faces are always set;
// Normals and TCoords are optional and, when present, have one entry
// per vertex.
type Mesh struct {
	Verts   []r3.Vec
	Faces   []Face
	Normals []r3.Vec
	TCoords []TexCoord
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Verts)
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Verts) == 0
}

// Scale multiplies all vertex positions by f in place. Normals and
// texture coordinates are unaffected.
func (m *Mesh) Scale(f float64) {
	for i := range m.Verts {
		m.Verts[i] = r3.Scale(f, m.Verts[i])
	}
}

// Validate checks the structural invariants of the mesh: every face index
// must be in range, and optional attribute arrays must match the vertex
// count. It returns a descriptive error for the first violation found.
func (m *Mesh) Validate() error {
	n := len(m.Verts)
	for fi, f := range m.Faces {
		for j, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("mesh: face %d vertex %d references index %d, out of range [0, %d)", fi, j, v, n)
			}
		}
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("mesh: %d normals for %d vertices", len(m.Normals), n)
	}
	if m.TCoords != nil && len(m.TCoords) != n {
		return fmt.Errorf("mesh: %d texture coordinates for %d vertices", len(m.TCoords), n)
	}
	return nil
}

// CheckFaces verifies that every index in faces is a valid position in a
// vertex array of length n. Shared by callers that operate on raw arrays
// rather than a Mesh.
func CheckFaces(faces []Face, n int) error {
	for fi, f := range faces {
		for j, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d vertex %d references index %d, out of range [0, %d)", fi, j, v, n)
			}
		}
	}
	return nil
}
