// Package carve implements the mask-driven mesh partition and
// difference-shell construction at the heart of relief.
//
// All operations work on parallel arrays: a vertex array, a face array of
// vertex indices, and boolean masks aligned to the vertex or face count.
// The classifiers in this file are pure and total: given well-formed inputs
// they cannot fail, and an empty input mask yields all-false outputs.
package carve

import "github.com/chazu/relief/pkg/mesh"

// BorderFaces returns the mask of faces that cross the border of
// vertexMask: faces with strictly some, but not all, of their vertices
// masked. Faces entirely inside or entirely outside are not border faces.
func BorderFaces(faces []mesh.Face, vertexMask []bool) []bool {
	out := make([]bool, len(faces))
	for i, f := range faces {
		cnt := 0
		for _, v := range f {
			if vertexMask[v] {
				cnt++
			}
		}
		out[i] = cnt > 0 && cnt < len(f)
	}
	return out
}

// InsideFaces returns the mask of faces inside vertexMask. With
// includeBorder=false a face qualifies only when all of its vertices are
// masked; with includeBorder=true any masked vertex qualifies it, so border
// faces are included.
func InsideFaces(faces []mesh.Face, vertexMask []bool, includeBorder bool) []bool {
	out := make([]bool, len(faces))
	for i, f := range faces {
		cnt := 0
		for _, v := range f {
			if vertexMask[v] {
				cnt++
			}
		}
		if includeBorder {
			out[i] = cnt > 0
		} else {
			out[i] = cnt == len(f)
		}
	}
	return out
}

// BorderVertices returns the mask of vertices referenced by border faces on
// one side of the border: the masked side (outside=false) or the unmasked
// side (outside=true). The outside variant selects the anchor vertices where
// a difference shell attaches to the untouched surface.
//
// borderFaceMask is an optional precomputed BorderFaces result; pass nil to
// have it computed internally. A vertex referenced by several border faces
// is reported once, since the result is a boolean mask.
func BorderVertices(faces []mesh.Face, vertexMask []bool, borderFaceMask []bool, outside bool) []bool {
	if borderFaceMask == nil {
		borderFaceMask = BorderFaces(faces, vertexMask)
	}
	out := make([]bool, len(vertexMask))
	for i, f := range faces {
		if !borderFaceMask[i] {
			continue
		}
		for _, v := range f {
			if vertexMask[v] != outside {
				out[v] = true
			}
		}
	}
	return out
}

// countTrue returns the number of set entries in a mask.
func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
