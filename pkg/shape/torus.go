package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/relief/pkg/mesh"
)

// Torus generates a torus with nmajor divisions around the major circle of
// radius majorR and nminor divisions around the tube of radius minorR. The
// grid wraps in both directions, producing nmajor*nminor vertices and
// 2*nmajor*nminor triangles. Texture coordinates map the major angle to s
// and the tube angle to t.
func Torus(nmajor, nminor int, majorR, minorR float64) (*mesh.Mesh, error) {
	if nmajor < 3 || nminor < 3 {
		return nil, fmt.Errorf("shape: torus needs nmajor >= 3 and nminor >= 3, got %d, %d", nmajor, nminor)
	}
	if minorR <= 0 || majorR <= minorR {
		return nil, fmt.Errorf("shape: torus needs 0 < minorR < majorR, got %g, %g", minorR, majorR)
	}

	nv := nmajor * nminor
	m := &mesh.Mesh{
		Verts:   make([]r3.Vec, nv),
		Normals: make([]r3.Vec, nv),
		TCoords: make([]mesh.TexCoord, nv),
		Faces:   make([]mesh.Face, 0, 2*nv),
	}

	for i := 0; i < nmajor; i++ {
		phi := 2 * math.Pi * float64(i) / float64(nmajor)
		cp, sp := math.Cos(phi), math.Sin(phi)
		for j := 0; j < nminor; j++ {
			psi := 2 * math.Pi * float64(j) / float64(nminor)
			cq, sq := math.Cos(psi), math.Sin(psi)

			v := i*nminor + j
			m.Verts[v] = r3.Vec{
				X: (majorR + minorR*cq) * cp,
				Y: (majorR + minorR*cq) * sp,
				Z: minorR * sq,
			}
			m.Normals[v] = r3.Vec{X: cq * cp, Y: cq * sp, Z: sq}
			m.TCoords[v] = mesh.TexCoord{phi / (2 * math.Pi), psi / (2 * math.Pi)}
		}
	}

	for i := 0; i < nmajor; i++ {
		in := (i + 1) % nmajor
		for j := 0; j < nminor; j++ {
			jn := (j + 1) % nminor
			a := i*nminor + j
			b := in*nminor + j
			c := i*nminor + jn
			d := in*nminor + jn
			m.Faces = append(m.Faces, mesh.Face{a, b, d}, mesh.Face{a, d, c})
		}
	}

	return m, nil
}
