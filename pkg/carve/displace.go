package carve

import "gonum.org/v1/gonum/spatial/r3"

// Displace returns a copy of verts with every masked vertex moved by
// length along its direction vector. A nil mask displaces every vertex.
//
// Preconditions (not runtime-checked): dirs has the same length as verts,
// and mask, when non-nil, does too.
func Displace(verts, dirs []r3.Vec, length float64, mask []bool) []r3.Vec {
	out := make([]r3.Vec, len(verts))
	for i, v := range verts {
		if mask == nil || mask[i] {
			out[i] = r3.Add(v, r3.Scale(length, dirs[i]))
		} else {
			out[i] = v
		}
	}
	return out
}

// DisplaceEach is Displace with a per-vertex displacement length.
func DisplaceEach(verts, dirs []r3.Vec, lengths []float64, mask []bool) []r3.Vec {
	out := make([]r3.Vec, len(verts))
	for i, v := range verts {
		if mask == nil || mask[i] {
			out[i] = r3.Add(v, r3.Scale(lengths[i], dirs[i]))
		} else {
			out[i] = v
		}
	}
	return out
}

// DisplaceVec is Displace with a per-vertex, per-axis displacement length:
// each direction is scaled component-wise by the matching length vector.
func DisplaceVec(verts, dirs []r3.Vec, lengths []r3.Vec, mask []bool) []r3.Vec {
	out := make([]r3.Vec, len(verts))
	for i, v := range verts {
		if mask == nil || mask[i] {
			d := dirs[i]
			l := lengths[i]
			out[i] = r3.Add(v, r3.Vec{X: l.X * d.X, Y: l.Y * d.Y, Z: l.Z * d.Z})
		} else {
			out[i] = v
		}
	}
	return out
}
