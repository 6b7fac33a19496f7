package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/relief/pkg/mesh"
)

// plyFormat reads ascii and binary_little_endian PLY and writes ascii PLY.
// Vertex properties x/y/z are required; nx/ny/nz and s/t are picked up as
// normals and texture coordinates when present. Faces must be triangles.
type plyFormat struct{}

var _ Format = plyFormat{}

// plyProperty is one scalar vertex property from the header.
type plyProperty struct {
	name string
	typ  string
}

var plyTypeSize = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

type plyHeader struct {
	binary      bool
	vertexCount int
	faceCount   int
	vertexProps []plyProperty
	countType   string // face list count type
	indexType   string // face list index type
}

func parsePLYHeader(br *bufio.Reader) (*plyHeader, error) {
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("not a PLY file")
	}

	h := &plyHeader{vertexCount: -1, faceCount: -1}
	element := ""
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("truncated header: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "comment" {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("malformed format line")
			}
			switch fields[1] {
			case "ascii":
				h.binary = false
			case "binary_little_endian":
				h.binary = true
			default:
				return nil, fmt.Errorf("unsupported PLY format %q", fields[1])
			}
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("malformed element line")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("bad element count: %w", err)
			}
			element = fields[1]
			switch element {
			case "vertex":
				h.vertexCount = n
			case "face":
				h.faceCount = n
			default:
				return nil, fmt.Errorf("unsupported element %q", element)
			}
		case "property":
			if element == "vertex" {
				if len(fields) != 3 {
					return nil, fmt.Errorf("unsupported vertex property: %s", strings.TrimSpace(line))
				}
				if _, ok := plyTypeSize[fields[1]]; !ok {
					return nil, fmt.Errorf("unknown property type %q", fields[1])
				}
				h.vertexProps = append(h.vertexProps, plyProperty{name: fields[2], typ: fields[1]})
			} else if element == "face" {
				if len(fields) != 5 || fields[1] != "list" {
					return nil, fmt.Errorf("unsupported face property: %s", strings.TrimSpace(line))
				}
				h.countType = fields[2]
				h.indexType = fields[3]
			}
		case "end_header":
			if h.vertexCount < 0 || h.faceCount < 0 {
				return nil, fmt.Errorf("header missing vertex or face element")
			}
			return h, nil
		default:
			return nil, fmt.Errorf("unexpected header keyword %q", fields[0])
		}
	}
}

func (plyFormat) Read(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)
	h, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("ply: %w", err)
	}

	// Locate the columns of interest.
	col := map[string]int{}
	for i, p := range h.vertexProps {
		col[p.name] = i
	}
	for _, req := range []string{"x", "y", "z"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("ply: vertex property %q missing", req)
		}
	}
	_, hasNormals := col["nx"]
	if hasNormals {
		_, hasNY := col["ny"]
		_, hasNZ := col["nz"]
		hasNormals = hasNY && hasNZ
	}
	_, hasTCoords := col["s"]
	if hasTCoords {
		_, hasT := col["t"]
		hasTCoords = hasT
	}

	m := &mesh.Mesh{
		Verts: make([]r3.Vec, h.vertexCount),
		Faces: make([]mesh.Face, h.faceCount),
	}
	if hasNormals {
		m.Normals = make([]r3.Vec, h.vertexCount)
	}
	if hasTCoords {
		m.TCoords = make([]mesh.TexCoord, h.vertexCount)
	}

	row := make([]float64, len(h.vertexProps))
	for i := 0; i < h.vertexCount; i++ {
		if h.binary {
			err = readBinaryRow(br, h.vertexProps, row)
		} else {
			err = readASCIIRow(br, len(h.vertexProps), row)
		}
		if err != nil {
			return nil, fmt.Errorf("ply: vertex %d: %w", i, err)
		}
		m.Verts[i] = r3.Vec{X: row[col["x"]], Y: row[col["y"]], Z: row[col["z"]]}
		if hasNormals {
			m.Normals[i] = r3.Vec{X: row[col["nx"]], Y: row[col["ny"]], Z: row[col["nz"]]}
		}
		if hasTCoords {
			m.TCoords[i] = mesh.TexCoord{row[col["s"]], row[col["t"]]}
		}
	}

	for i := 0; i < h.faceCount; i++ {
		var idx []int
		if h.binary {
			idx, err = readBinaryFace(br, h.countType, h.indexType)
		} else {
			idx, err = readASCIIFace(br)
		}
		if err != nil {
			return nil, fmt.Errorf("ply: face %d: %w", i, err)
		}
		if len(idx) != 3 {
			return nil, fmt.Errorf("ply: face %d has %d vertices, mesh must be triangulated", i, len(idx))
		}
		m.Faces[i] = mesh.Face{idx[0], idx[1], idx[2]}
	}

	return m, nil
}

func readASCIIRow(br *bufio.Reader, n int, row []float64) error {
	line, err := br.ReadString('\n')
	if err != nil && len(strings.TrimSpace(line)) == 0 {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) < n {
		return fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	for j := 0; j < n; j++ {
		row[j], err = strconv.ParseFloat(fields[j], 64)
		if err != nil {
			return err
		}
	}
	return nil
}

func readASCIIFace(br *bufio.Reader) ([]int, error) {
	line, err := br.ReadString('\n')
	if err != nil && len(strings.TrimSpace(line)) == 0 {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty face row")
	}
	cnt, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, err
	}
	if len(fields) < 1+cnt {
		return nil, fmt.Errorf("face row lists %d indices, found %d", cnt, len(fields)-1)
	}
	idx := make([]int, cnt)
	for j := 0; j < cnt; j++ {
		idx[j], err = strconv.Atoi(fields[1+j])
		if err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func readBinaryScalar(br *bufio.Reader, typ string) (float64, error) {
	buf := make([]byte, plyTypeSize[typ])
	if _, err := io.ReadFull(br, buf); err != nil {
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(binary.LittleEndian.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(binary.LittleEndian.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(binary.LittleEndian.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(binary.LittleEndian.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
	}
	return 0, fmt.Errorf("unknown property type %q", typ)
}

func readBinaryRow(br *bufio.Reader, props []plyProperty, row []float64) error {
	for j, p := range props {
		v, err := readBinaryScalar(br, p.typ)
		if err != nil {
			return err
		}
		row[j] = v
	}
	return nil
}

func readBinaryFace(br *bufio.Reader, countType, indexType string) ([]int, error) {
	cntF, err := readBinaryScalar(br, countType)
	if err != nil {
		return nil, err
	}
	cnt := int(cntF)
	idx := make([]int, cnt)
	for j := 0; j < cnt; j++ {
		v, err := readBinaryScalar(br, indexType)
		if err != nil {
			return nil, err
		}
		idx[j] = int(v)
	}
	return idx, nil
}

func (plyFormat) Write(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", m.VertexCount())
	fmt.Fprintln(bw, "property double x")
	fmt.Fprintln(bw, "property double y")
	fmt.Fprintln(bw, "property double z")
	if m.Normals != nil {
		fmt.Fprintln(bw, "property double nx")
		fmt.Fprintln(bw, "property double ny")
		fmt.Fprintln(bw, "property double nz")
	}
	if m.TCoords != nil {
		fmt.Fprintln(bw, "property double s")
		fmt.Fprintln(bw, "property double t")
	}
	fmt.Fprintf(bw, "element face %d\n", m.TriangleCount())
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for i, v := range m.Verts {
		fmt.Fprintf(bw, "%g %g %g", v.X, v.Y, v.Z)
		if m.Normals != nil {
			n := m.Normals[i]
			fmt.Fprintf(bw, " %g %g %g", n.X, n.Y, n.Z)
		}
		if m.TCoords != nil {
			tc := m.TCoords[i]
			fmt.Fprintf(bw, " %g %g", tc[0], tc[1])
		}
		fmt.Fprintln(bw)
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	return bw.Flush()
}
