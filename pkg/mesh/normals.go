package mesh

import "gonum.org/v1/gonum/spatial/r3"

// ComputeNormals returns per-vertex normals obtained by accumulating the
// unnormalized face normal of every incident triangle and normalizing the
// sum. The unnormalized cross product weights each face by its area, which
// keeps slivers from dominating the result.
func ComputeNormals(verts []r3.Vec, faces []Face) []r3.Vec {
	normals := make([]r3.Vec, len(verts))

	for _, f := range faces {
		a, b, c := verts[f[0]], verts[f[1]], verts[f[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, vi := range f {
			normals[vi] = r3.Add(normals[vi], n)
		}
	}

	for i, n := range normals {
		if r3.Norm(n) > 1e-12 {
			normals[i] = r3.Unit(n)
		}
	}
	return normals
}
