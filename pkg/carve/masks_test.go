package carve

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/relief/pkg/mesh"
)

// tetrahedron returns the unit tetrahedron: 4 vertices, 4 triangular faces.
func tetrahedron() ([]r3.Vec, []mesh.Face) {
	verts := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	faces := []mesh.Face{
		{0, 2, 1},
		{0, 1, 3},
		{1, 2, 3},
		{2, 0, 3},
	}
	return verts, faces
}

// gridMesh returns a (nx+1)×(ny+1) vertex grid triangulated into 2·nx·ny
// faces, lying in the z=0 plane.
func gridMesh(nx, ny int) ([]r3.Vec, []mesh.Face) {
	var verts []r3.Vec
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			verts = append(verts, r3.Vec{X: float64(i), Y: float64(j)})
		}
	}
	var faces []mesh.Face
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := j*(nx+1) + i
			b := a + 1
			c := a + nx + 1
			d := c + 1
			faces = append(faces, mesh.Face{a, b, d}, mesh.Face{a, d, c})
		}
	}
	return verts, faces
}

func TestBorderFacesTetrahedron(t *testing.T) {
	_, faces := tetrahedron()
	vmask := []bool{false, false, false, true}

	got := BorderFaces(faces, vmask)
	// Every face containing vertex 3 has exactly one masked vertex; the
	// opposite face {0,2,1} has none.
	want := []bool{false, true, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("face %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBorderFacesDisjointTriangles(t *testing.T) {
	// Two triangles sharing no vertices, one fully masked: the mask border
	// never crosses a face, so no face is a border face.
	faces := []mesh.Face{{0, 1, 2}, {3, 4, 5}}
	vmask := []bool{true, true, true, false, false, false}

	border := BorderFaces(faces, vmask)
	if border[0] || border[1] {
		t.Errorf("expected no border faces, got %v", border)
	}

	inside := InsideFaces(faces, vmask, false)
	if !inside[0] || inside[1] {
		t.Errorf("expected inside mask [true false], got %v", inside)
	}
}

func TestInsideFacesIncludeBorder(t *testing.T) {
	_, faces := tetrahedron()

	cases := []struct {
		name  string
		vmask []bool
		strict, broad []bool
	}{
		{
			name:   "one vertex",
			vmask:  []bool{true, false, false, false},
			strict: []bool{false, false, false, false},
			broad:  []bool{true, true, false, true},
		},
		{
			name:   "three vertices",
			vmask:  []bool{true, true, true, false},
			strict: []bool{true, false, false, false},
			broad:  []bool{true, true, true, true},
		},
		{
			name:   "empty mask",
			vmask:  []bool{false, false, false, false},
			strict: []bool{false, false, false, false},
			broad:  []bool{false, false, false, false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			strict := InsideFaces(faces, tc.vmask, false)
			broad := InsideFaces(faces, tc.vmask, true)
			for i := range faces {
				if strict[i] != tc.strict[i] {
					t.Errorf("strict face %d: got %v, want %v", i, strict[i], tc.strict[i])
				}
				if broad[i] != tc.broad[i] {
					t.Errorf("broad face %d: got %v, want %v", i, broad[i], tc.broad[i])
				}
			}
		})
	}
}

// TestMaskIdentities exercises the algebra that relates the three
// classifiers, over a grid with randomized (but seeded) vertex masks:
//
//	border ∧ inside(strict) = ∅
//	inside(broad) = inside(strict) ∪ border
//	borderVerts(in) ∩ borderVerts(out) = ∅
//	borderVerts(in) ∪ borderVerts(out) = vertices referenced by border faces
func TestMaskIdentities(t *testing.T) {
	verts, faces := gridMesh(8, 6)
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		vmask := make([]bool, len(verts))
		for i := range vmask {
			vmask[i] = rng.Intn(3) == 0
		}

		border := BorderFaces(faces, vmask)
		strict := InsideFaces(faces, vmask, false)
		broad := InsideFaces(faces, vmask, true)

		for i := range faces {
			if border[i] && strict[i] {
				t.Fatalf("trial %d: face %d both border and strictly inside", trial, i)
			}
			if broad[i] != (strict[i] || border[i]) {
				t.Fatalf("trial %d: face %d: broad=%v but strict=%v border=%v",
					trial, i, broad[i], strict[i], border[i])
			}
		}

		in := BorderVertices(faces, vmask, border, false)
		out := BorderVertices(faces, vmask, border, true)

		referenced := make([]bool, len(verts))
		for i, f := range faces {
			if border[i] {
				for _, v := range f {
					referenced[v] = true
				}
			}
		}
		for v := range verts {
			if in[v] && out[v] {
				t.Fatalf("trial %d: vertex %d on both sides of the border", trial, v)
			}
			if (in[v] || out[v]) != referenced[v] {
				t.Fatalf("trial %d: vertex %d: in=%v out=%v referenced=%v",
					trial, v, in[v], out[v], referenced[v])
			}
		}
	}
}

func TestBorderVerticesComputesBorderFaces(t *testing.T) {
	_, faces := tetrahedron()
	vmask := []bool{false, false, false, true}

	precomputed := BorderVertices(faces, vmask, BorderFaces(faces, vmask), true)
	implicit := BorderVertices(faces, vmask, nil, true)
	for i := range precomputed {
		if precomputed[i] != implicit[i] {
			t.Errorf("vertex %d: precomputed %v, implicit %v", i, precomputed[i], implicit[i])
		}
	}

	// The three neighbors of the masked apex are the outside border.
	want := []bool{true, true, true, false}
	for i := range want {
		if implicit[i] != want[i] {
			t.Errorf("vertex %d: got %v, want %v", i, implicit[i], want[i])
		}
	}
}
