package meshio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/relief/pkg/mesh"
)

// stlFormat reads and writes binary STL. STL stores an unindexed triangle
// soup, so writing loses the index structure and reading rebuilds it by
// welding exactly coincident vertices.
type stlFormat struct{}

var _ Format = stlFormat{}

const stlHeaderLen = 80

func (stlFormat) Write(w io.Writer, m *mesh.Mesh) error {
	var header [stlHeaderLen]byte
	copy(header[:], "relief binary STL")
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	var tri struct {
		Normal [3]float32
		Verts  [3][3]float32
		Attr   uint16
	}
	for _, f := range m.Faces {
		a, b, c := m.Verts[f[0]], m.Verts[f[1]], m.Verts[f[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm(n) > 1e-30 {
			n = r3.Unit(n)
		}
		tri.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		for j, v := range [3]r3.Vec{a, b, c} {
			tri.Verts[j] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		if err := binary.Write(w, binary.LittleEndian, &tri); err != nil {
			return err
		}
	}
	return nil
}

func (stlFormat) Read(r io.Reader) (*mesh.Mesh, error) {
	var header struct {
		H    [stlHeaderLen]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}

	m := &mesh.Mesh{Faces: make([]mesh.Face, 0, header.NTri)}
	vertIndex := make(map[[3]float32]int)

	buf := make([]byte, 4*3*4+2)
	for i := 0; i < int(header.NTri); i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("stl: triangle %d: %w", i, err)
		}
		var f mesh.Face
		for j := 0; j < 3; j++ {
			// Skip the 12-byte normal; it is re-derivable from the winding.
			const start = 12
			var v [3]float32
			for c := 0; c < 3; c++ {
				v[c] = math.Float32frombits(binary.LittleEndian.Uint32(buf[start+12*j+4*c:]))
			}
			idx, ok := vertIndex[v]
			if !ok {
				idx = len(m.Verts)
				vertIndex[v] = idx
				m.Verts = append(m.Verts, r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
			}
			f[j] = idx
		}
		m.Faces = append(m.Faces, f)
	}
	return m, nil
}
