// Package meshio reads and writes triangle meshes, dispatching on file
// extension over a set of format backends. The rest of relief never
// depends on which format backs a path; it sees only mesh.Mesh.
package meshio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/relief/pkg/mesh"
)

// ErrUnsupported is returned by formats that only implement one direction.
var ErrUnsupported = errors.New("meshio: operation not supported by format")

// Format is a mesh codec for one file format. Read may return
// ErrUnsupported for write-only formats.
type Format interface {
	Read(r io.Reader) (*mesh.Mesh, error)
	Write(w io.Writer, m *mesh.Mesh) error
}

// formats maps lower-case extensions (with dot) to their codec.
var formats = map[string]Format{
	".ply": plyFormat{},
	".stl": stlFormat{},
	".obj": objFormat{},
}

func lookup(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return nil, fmt.Errorf("meshio: unsupported mesh format %q", ext)
	}
	return f, nil
}

// Read loads the mesh at path, choosing the codec from the extension.
// The result is validated before being returned.
func Read(path string) (*mesh.Mesh, error) {
	codec, err := lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	defer f.Close()

	m, err := codec.Read(f)
	if err != nil {
		return nil, fmt.Errorf("meshio: read %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("meshio: read %s: %w", path, err)
	}
	return m, nil
}

// Write stores the mesh at path, choosing the codec from the extension.
func Write(path string, m *mesh.Mesh) error {
	codec, err := lookup(path)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	if err := codec.Write(f, m); err != nil {
		f.Close()
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	return f.Close()
}
