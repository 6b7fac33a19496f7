package mesh

import "math"

// Clean merges vertices that coincide within tol and removes faces left
// degenerate by the merge (two or more identical indices). Normals and
// texture coordinates, when present, follow the surviving vertex of each
// merged group. The receiver is not modified; a fresh mesh is returned.
func (m *Mesh) Clean(tol float64) *Mesh {
	if tol <= 0 {
		tol = 1e-12
	}

	// Bucket vertices on a grid of cell size tol. Vertices hashing to the
	// same cell merge to the first one seen; near-duplicates straddling a
	// cell boundary survive.
	type cell [3]int64
	seen := make(map[cell]int, len(m.Verts))
	remap := make([]int, len(m.Verts))

	out := &Mesh{}
	for i, v := range m.Verts {
		key := cell{
			int64(math.Round(v.X / tol)),
			int64(math.Round(v.Y / tol)),
			int64(math.Round(v.Z / tol)),
		}
		if j, ok := seen[key]; ok {
			remap[i] = j
			continue
		}
		j := len(out.Verts)
		seen[key] = j
		remap[i] = j
		out.Verts = append(out.Verts, v)
		if m.Normals != nil {
			out.Normals = append(out.Normals, m.Normals[i])
		}
		if m.TCoords != nil {
			out.TCoords = append(out.TCoords, m.TCoords[i])
		}
	}

	for _, f := range m.Faces {
		g := Face{remap[f[0]], remap[f[1]], remap[f[2]]}
		if g[0] == g[1] || g[0] == g[2] || g[1] == g[2] {
			continue
		}
		out.Faces = append(out.Faces, g)
	}
	return out
}
