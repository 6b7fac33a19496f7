package meshio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chazu/relief/pkg/mesh"
)

// objFormat writes Wavefront OBJ. Reading OBJ is not supported; the input
// side of the pipeline is PLY and STL.
type objFormat struct{}

var _ Format = objFormat{}

func (objFormat) Read(r io.Reader) (*mesh.Mesh, error) {
	return nil, ErrUnsupported
}

func (objFormat) Write(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	for _, v := range m.Verts {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, tc := range m.TCoords {
		fmt.Fprintf(bw, "vt %g %g\n", tc[0], tc[1])
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	// OBJ indices are 1-based; vt/vn references are emitted only when the
	// corresponding attribute is present.
	hasT := m.TCoords != nil
	hasN := m.Normals != nil
	for _, f := range m.Faces {
		fmt.Fprint(bw, "f")
		for _, vi := range f {
			i := vi + 1
			switch {
			case hasT && hasN:
				fmt.Fprintf(bw, " %d/%d/%d", i, i, i)
			case hasT:
				fmt.Fprintf(bw, " %d/%d", i, i)
			case hasN:
				fmt.Fprintf(bw, " %d//%d", i, i)
			default:
				fmt.Fprintf(bw, " %d", i)
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
