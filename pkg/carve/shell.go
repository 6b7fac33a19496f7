package carve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/relief/pkg/mesh"
)

// Default tolerances for deriving the vertex mask from two vertex arrays.
// A coordinate pair (a, b) counts as equal when |a-b| <= AbsTol + RelTol*|b|.
const (
	DefaultRelTol = 1e-5
	DefaultAbsTol = 1e-8
)

// Options configures Difference. The tolerances only matter when the vertex
// mask is derived rather than supplied; they are honored exactly as given,
// including zero.
type Options struct {
	RelTol float64
	AbsTol float64
}

// DefaultOptions returns Options with the default tolerances.
func DefaultOptions() Options {
	return Options{RelTol: DefaultRelTol, AbsTol: DefaultAbsTol}
}

// DiffMask returns the mask of vertices whose positions differ between a
// and b: a vertex is marked when not all of its coordinates are within
// absTol + relTol*|b| of their counterpart. Both arrays must have the same
// length (caller contract).
func DiffMask(a, b []r3.Vec, relTol, absTol float64) []bool {
	mask := make([]bool, len(a))
	for i := range a {
		mask[i] = !isClose(a[i].X, b[i].X, relTol, absTol) ||
			!isClose(a[i].Y, b[i].Y, relTol, absTol) ||
			!isClose(a[i].Z, b[i].Z, relTol, absTol)
	}
	return mask
}

func isClose(a, b, relTol, absTol float64) bool {
	return math.Abs(a-b) <= absTol+relTol*math.Abs(b)
}

// Difference builds the difference shell between a mesh and a vertex-level
// perturbation of itself: the closed surface bounded by the original (front)
// positions in vertsA and the displaced (back) positions in vertsB, joined
// at the unmasked border vertices (anchors) shared by both sides.
//
// vertsA and vertsB must have the same length and share the face topology in
// faces. vertexMask marks the vertices whose positions differ; pass nil to
// derive it from the two arrays with the tolerances in opts.
//
// The output arrays are freshly allocated: the vertex array holds the
// anchors, then the front copies, then the back copies of the masked
// vertices; the face array holds the affected faces remapped to the front
// copies, then the same faces with reversed winding remapped to the back
// copies. Reversing the winding flips each back face's outward normal so
// the two surfaces bound the enclosed volume from opposite sides.
//
// An all-false mask yields an empty mesh and an all-true mask yields a shell
// with no anchors (a closed double wall); both are valid degenerate results.
func Difference(vertsA, vertsB []r3.Vec, faces []mesh.Face, vertexMask []bool, opts Options) ([]r3.Vec, []mesh.Face, error) {
	n := len(vertsA)
	if len(vertsB) != n {
		return nil, nil, fmt.Errorf("carve: vertex arrays differ in length: %d vs %d", n, len(vertsB))
	}
	if vertexMask != nil && len(vertexMask) != n {
		return nil, nil, fmt.Errorf("carve: vertex mask has %d entries for %d vertices", len(vertexMask), n)
	}
	if err := mesh.CheckFaces(faces, n); err != nil {
		return nil, nil, fmt.Errorf("carve: %w", err)
	}

	if vertexMask == nil {
		vertexMask = DiffMask(vertsA, vertsB, opts.RelTol, opts.AbsTol)
	}
	maskCnt := countTrue(vertexMask)

	// Faces whose geometry is affected: any masked vertex.
	faceMask := InsideFaces(faces, vertexMask, true)
	faceCnt := countTrue(faceMask)

	// Anchors: unmasked vertices of border faces, kept once and shared by
	// the front and back surfaces.
	borderFaceMask := BorderFaces(faces, vertexMask)
	anchorMask := BorderVertices(faces, vertexMask, borderFaceMask, true)
	anchorCnt := countTrue(anchorMask)

	outVerts := make([]r3.Vec, anchorCnt+2*maskCnt)
	outFaces := make([]mesh.Face, 2*faceCnt)

	// New ids are assigned in three contiguous ranges: anchors, front
	// copies, back copies. A single remap table is written in passes; the
	// anchor entries stay valid throughout because anchors are by
	// construction disjoint from masked vertices.
	remap := make([]int, n)

	next := 0
	for i := range vertsA {
		if anchorMask[i] {
			remap[i] = next
			outVerts[next] = vertsA[i]
			next++
		}
	}

	// Front surface: original positions, original winding.
	next = anchorCnt
	for i := range vertsA {
		if vertexMask[i] {
			remap[i] = next
			outVerts[next] = vertsA[i]
			next++
		}
	}
	fi := 0
	for i, f := range faces {
		if faceMask[i] {
			outFaces[fi] = mesh.Face{remap[f[0]], remap[f[1]], remap[f[2]]}
			fi++
		}
	}

	// Back surface: displaced positions, reversed winding. The masked
	// entries of the remap table are reassigned to the back-copy range
	// before the second face pass; this must happen after the front faces
	// are emitted.
	next = anchorCnt + maskCnt
	for i := range vertsB {
		if vertexMask[i] {
			remap[i] = next
			outVerts[next] = vertsB[i]
			next++
		}
	}
	for i, f := range faces {
		if faceMask[i] {
			outFaces[fi] = mesh.Face{remap[f[2]], remap[f[1]], remap[f[0]]}
			fi++
		}
	}

	return outVerts, outFaces, nil
}
