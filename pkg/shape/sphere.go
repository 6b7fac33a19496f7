// Package shape generates parametric meshes with per-vertex normals and
// texture coordinates, ready for texture sampling and displacement.
package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/relief/pkg/mesh"
)

// Sphere generates a unit UV sphere with nphi longitude divisions and
// ntheta latitude samples (including both poles). The mesh has
// nphi*(ntheta-2)+2 vertices: the south pole, ntheta-2 latitude rings of
// nphi vertices each, then the north pole. Normals equal the unit vertex
// positions; texture coordinates map longitude to s and latitude to t,
// both in [0, 1].
//
// Scale the returned mesh to set the radius; normals stay unit length.
func Sphere(nphi, ntheta int) (*mesh.Mesh, error) {
	if nphi < 3 || ntheta < 3 {
		return nil, fmt.Errorf("shape: sphere needs nphi >= 3 and ntheta >= 3, got %d, %d", nphi, ntheta)
	}

	rings := ntheta - 2
	nv := nphi*rings + 2
	nf := 2*nphi + 2*nphi*(rings-1)

	m := &mesh.Mesh{
		Verts:   make([]r3.Vec, nv),
		Normals: make([]r3.Vec, nv),
		TCoords: make([]mesh.TexCoord, nv),
		Faces:   make([]mesh.Face, 0, nf),
	}

	// Vertices: south pole, rings from south to north, north pole.
	set := func(i int, phi, theta float64) {
		v := r3.Vec{
			X: math.Cos(theta) * math.Cos(phi),
			Y: math.Cos(theta) * math.Sin(phi),
			Z: math.Sin(theta),
		}
		m.Verts[i] = v
		m.Normals[i] = v
		m.TCoords[i] = mesh.TexCoord{phi / (2 * math.Pi), (theta + math.Pi/2) / math.Pi}
	}
	set(0, 0, -math.Pi/2)
	for t := 0; t < rings; t++ {
		theta := -math.Pi/2 + float64(t+1)*math.Pi/float64(ntheta-1)
		for p := 0; p < nphi; p++ {
			phi := 2 * math.Pi * float64(p) / float64(nphi)
			set(1+t*nphi+p, phi, theta)
		}
	}
	set(nv-1, 0, math.Pi/2)

	// South cap.
	for p := 0; p < nphi; p++ {
		cur := 1 + p
		next := 1 + (p+1)%nphi
		m.Faces = append(m.Faces, mesh.Face{0, next, cur})
	}

	// Ring bands: each quad between adjacent rings splits into two
	// triangles, wrapping around in phi.
	for t := 0; t < rings-1; t++ {
		for p := 0; p < nphi; p++ {
			v := 1 + t*nphi + p
			vn := 1 + t*nphi + (p+1)%nphi
			m.Faces = append(m.Faces,
				mesh.Face{v + nphi, v, vn},
				mesh.Face{v + nphi, vn, vn + nphi})
		}
	}

	// North cap.
	top := 1 + (rings-1)*nphi
	for p := 0; p < nphi; p++ {
		cur := top + p
		next := top + (p+1)%nphi
		m.Faces = append(m.Faces, mesh.Face{cur, next, nv - 1})
	}

	return m, nil
}
