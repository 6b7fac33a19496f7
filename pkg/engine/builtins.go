package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/relief/pkg/carve"
	"github.com/chazu/relief/pkg/kernel"
	kernelsdfx "github.com/chazu/relief/pkg/kernel/sdfx"
	"github.com/chazu/relief/pkg/mesh"
	"github.com/chazu/relief/pkg/meshio"
	"github.com/chazu/relief/pkg/shape"
	"github.com/chazu/relief/pkg/texture"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms relief Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: load-mesh -> load_mesh
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMesh wraps a mesh so it can flow between builtins.
type sexpMesh struct {
	m *mesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d vertices, %d faces)", s.m.VertexCount(), s.m.TriangleCount())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpTexture wraps a decoded texture.
type sexpTexture struct {
	t *texture.Texture
}

func (s *sexpTexture) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(texture %dx%dx%d)", s.t.W, s.t.H, s.t.C)
}
func (s *sexpTexture) Type() *zygo.RegisteredType { return nil }

// sexpValues wraps per-vertex sampled values.
type sexpValues struct {
	v []float64
}

func (s *sexpValues) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(values %d)", len(s.v))
}
func (s *sexpValues) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps an SDF solid built through the kernel.
type sexpSolid struct {
	s kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.s.BoundingBox()
	return fmt.Sprintf("(solid [%g %g %g]..[%g %g %g])",
		min[0], min[1], min[2], max[0], max[1], max[2])
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpMask wraps a per-vertex boolean mask.
type sexpMask struct {
	m []bool
}

func (s *sexpMask) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mask %d)", len(s.m))
}
func (s *sexpMask) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value — treat as flag.
				result.kw[name] = &zygo.SexpBool{Val: true}
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// toTexture extracts a texture from a sexpTexture.
func toTexture(s zygo.Sexp) (*texture.Texture, error) {
	if t, ok := s.(*sexpTexture); ok {
		return t.t, nil
	}
	return nil, fmt.Errorf("expected texture, got %T (%s)", s, s.SexpString(nil))
}

// toValues extracts sampled values from a sexpValues.
func toValues(s zygo.Sexp) ([]float64, error) {
	if v, ok := s.(*sexpValues); ok {
		return v.v, nil
	}
	return nil, fmt.Errorf("expected values, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if sol, ok := s.(*sexpSolid); ok {
		return sol.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toMask extracts a vertex mask from a sexpMask.
func toMask(s zygo.Sexp) ([]bool, error) {
	if m, ok := s.(*sexpMask); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mask, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional keyword number with a default.
func (pa kwArgs) kwFloat(name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// kwInt reads an optional keyword integer with a default.
func (pa kwArgs) kwInt(name string, def int) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// session accumulates the side effects of one evaluation.
type session struct {
	written []string
}

// newPipelineEnv creates a sandboxed zygomys environment with all relief
// pipeline builtins registered against a fresh session.
func newPipelineEnv() (*zygo.Zlisp, *session) {
	env := zygo.NewZlispSandbox()
	sess := &session{}
	registerBuiltins(env, sess)
	return env, sess
}

// registerBuiltins installs the pipeline builtins. Source code must be
// preprocessed with preprocessSource() before evaluation so that :keyword
// tokens are recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sess *session) {

	// -----------------------------------------------------------------------
	// (sphere :nphi 256 :ntheta 129 :radius 50)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nphi, err := pa.kwInt("nphi", 256)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		ntheta, err := pa.kwInt("ntheta", 129)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		radius, err := pa.kwFloat("radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}

		m, err := shape.Sphere(nphi, ntheta)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		m.Scale(radius)
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (torus :nmajor 256 :nminor 128 :major-radius 30 :minor-radius 10)
	// -----------------------------------------------------------------------
	env.AddFunction("torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nmajor, err := pa.kwInt("nmajor", 256)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}
		nminor, err := pa.kwInt("nminor", 128)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}
		majorR, err := pa.kwFloat("major-radius", 30)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}
		minorR, err := pa.kwFloat("minor-radius", 10)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}

		m, err := shape.Torus(nmajor, nminor, majorR, minorR)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (load-mesh "input.ply")
	// -----------------------------------------------------------------------
	env.AddFunction("load_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("load-mesh: expected one path argument")
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-mesh: %w", err)
		}
		m, err := meshio.Read(path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-mesh: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (write-mesh m "output.stl")
	// -----------------------------------------------------------------------
	env.AddFunction("write_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("write-mesh: expected mesh and path arguments")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-mesh: %w", err)
		}
		path, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-mesh: %w", err)
		}
		if err := meshio.Write(path, m); err != nil {
			return zygo.SexpNull, fmt.Errorf("write-mesh: %w", err)
		}
		sess.written = append(sess.written, path)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (load-texture "earth.png")
	// -----------------------------------------------------------------------
	env.AddFunction("load_texture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("load-texture: expected one path argument")
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-texture: %w", err)
		}
		t, err := texture.Load(path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-texture: %w", err)
		}
		return &sexpTexture{t: t}, nil
	})

	// -----------------------------------------------------------------------
	// (invert tex)
	// -----------------------------------------------------------------------
	env.AddFunction("invert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("invert: expected one texture argument")
		}
		t, err := toTexture(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("invert: %w", err)
		}
		t.Invert()
		return &sexpTexture{t: t}, nil
	})

	// -----------------------------------------------------------------------
	// (blur tex :sigma 2)
	// -----------------------------------------------------------------------
	env.AddFunction("blur", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("blur: expected one texture argument")
		}
		t, err := toTexture(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("blur: %w", err)
		}
		sigma, err := pa.kwFloat("sigma", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("blur: %w", err)
		}
		return &sexpTexture{t: texture.GaussianBlur(t, sigma)}, nil
	})

	// -----------------------------------------------------------------------
	// (sample m tex) -> per-vertex values
	// -----------------------------------------------------------------------
	env.AddFunction("sample", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("sample: expected mesh and texture arguments")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: %w", err)
		}
		if m.TCoords == nil {
			return zygo.SexpNull, fmt.Errorf("sample: mesh has no texture coordinates")
		}
		t, err := toTexture(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: %w", err)
		}
		return &sexpValues{v: texture.Sample(m.TCoords, t)}, nil
	})

	// -----------------------------------------------------------------------
	// (threshold values :value 128 :reverse true) -> vertex mask
	// -----------------------------------------------------------------------
	env.AddFunction("threshold", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("threshold: expected one values argument")
		}
		v, err := toValues(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("threshold: %w", err)
		}
		value, err := pa.kwFloat("value", 128)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("threshold: %w", err)
		}
		reverse := false
		if r, ok := pa.kw["reverse"]; ok {
			reverse, err = toBool(r)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("threshold: reverse: %w", err)
			}
		}
		return &sexpMask{m: texture.Threshold(v, value, reverse)}, nil
	})

	// -----------------------------------------------------------------------
	// (displace m :by -1.2 :where mask :amplify values)
	//
	// Displaces along the mesh normals. With :amplify, each vertex moves
	// by (by * value/255) instead of the constant length.
	// -----------------------------------------------------------------------
	env.AddFunction("displace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("displace: expected one mesh argument")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("displace: %w", err)
		}
		if m.Normals == nil {
			return zygo.SexpNull, fmt.Errorf("displace: mesh has no normals")
		}
		by, err := pa.kwFloat("by", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("displace: %w", err)
		}

		var vmask []bool
		if w, ok := pa.kw["where"]; ok {
			vmask, err = toMask(w)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: where: %w", err)
			}
			if len(vmask) != m.VertexCount() {
				return zygo.SexpNull, fmt.Errorf("displace: mask has %d entries for %d vertices",
					len(vmask), m.VertexCount())
			}
		}

		out := &mesh.Mesh{
			Faces:   m.Faces,
			Normals: m.Normals,
			TCoords: m.TCoords,
		}
		if a, ok := pa.kw["amplify"]; ok {
			values, err := toValues(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: amplify: %w", err)
			}
			if len(values) != m.VertexCount() {
				return zygo.SexpNull, fmt.Errorf("displace: amplify has %d values for %d vertices",
					len(values), m.VertexCount())
			}
			lengths := make([]float64, len(values))
			for i, v := range values {
				lengths[i] = by * v / 255
			}
			out.Verts = carve.DisplaceEach(m.Verts, m.Normals, lengths, vmask)
		} else {
			out.Verts = carve.Displace(m.Verts, m.Normals, by, vmask)
		}
		return &sexpMesh{m: out}, nil
	})

	// -----------------------------------------------------------------------
	// (difference a b :where mask) -> difference shell mesh
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference: expected two mesh arguments")
		}
		a, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		b, err := toMesh(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}

		var vmask []bool
		if w, ok := pa.kw["where"]; ok {
			vmask, err = toMask(w)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("difference: where: %w", err)
			}
		}

		verts, faces, err := carve.Difference(a.Verts, b.Verts, a.Faces, vmask, carve.DefaultOptions())
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		return &sexpMesh{m: &mesh.Mesh{Verts: verts, Faces: faces}}, nil
	})

	// -----------------------------------------------------------------------
	// (scale m 50)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale: expected mesh and factor arguments")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		f, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		out := &mesh.Mesh{
			Verts:   append(m.Verts[:0:0], m.Verts...),
			Faces:   m.Faces,
			Normals: m.Normals,
			TCoords: m.TCoords,
		}
		out.Scale(f)
		return &sexpMesh{m: out}, nil
	})

	registerSolidBuiltins(env)
}

// registerSolidBuiltins installs the SDF solid constructors. Solids have no
// texture coordinates; they enter the carve pipeline through mesh-solid,
// which tessellates them into an indexed mesh with normals.
func registerSolidBuiltins(env *zygo.Zlisp) {
	k := kernelsdfx.New()

	// (solid-sphere :radius 10)
	env.AddFunction("solid_sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, err := pa.kwFloat("radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-sphere: %w", err)
		}
		return &sexpSolid{s: k.Sphere(radius)}, nil
	})

	// (solid-torus :major-radius 30 :minor-radius 10)
	env.AddFunction("solid_torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		majorR, err := pa.kwFloat("major-radius", 30)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-torus: %w", err)
		}
		minorR, err := pa.kwFloat("minor-radius", 10)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-torus: %w", err)
		}
		return &sexpSolid{s: k.Torus(majorR, minorR)}, nil
	})

	// (solid-box :x 10 :y 10 :z 10)
	env.AddFunction("solid_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		x, err := pa.kwFloat("x", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-box: %w", err)
		}
		y, err := pa.kwFloat("y", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-box: %w", err)
		}
		z, err := pa.kwFloat("z", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-box: %w", err)
		}
		return &sexpSolid{s: k.Box(x, y, z)}, nil
	})

	// (solid-cylinder :height 20 :radius 5)
	env.AddFunction("solid_cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		height, err := pa.kwFloat("height", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-cylinder: %w", err)
		}
		radius, err := pa.kwFloat("radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-cylinder: %w", err)
		}
		return &sexpSolid{s: k.Cylinder(height, radius)}, nil
	})

	binOp := func(opName string, op func(a, b kernel.Solid) kernel.Solid) {
		disp := strings.ReplaceAll(opName, "_", "-")
		env.AddFunction(opName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s: expected two solid arguments", disp)
			}
			a, err := toSolid(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", disp, err)
			}
			b, err := toSolid(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", disp, err)
			}
			return &sexpSolid{s: op(a, b)}, nil
		})
	}
	binOp("solid_union", k.Union)
	binOp("solid_difference", k.Difference)
	binOp("solid_intersection", k.Intersection)

	xyzOp := func(opName string, op func(s kernel.Solid, x, y, z float64) kernel.Solid) {
		disp := strings.ReplaceAll(opName, "_", "-")
		env.AddFunction(opName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: expected one solid argument", disp)
			}
			s, err := toSolid(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", disp, err)
			}
			x, err := pa.kwFloat("x", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", disp, err)
			}
			y, err := pa.kwFloat("y", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", disp, err)
			}
			z, err := pa.kwFloat("z", 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", disp, err)
			}
			return &sexpSolid{s: op(s, x, y, z)}, nil
		})
	}
	xyzOp("solid_translate", k.Translate)
	xyzOp("solid_rotate", k.Rotate)

	// (mesh-solid s :cells 200) -> indexed mesh with normals
	env.AddFunction("mesh_solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh-solid: expected one solid argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh-solid: %w", err)
		}
		cells, err := pa.kwInt("cells", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh-solid: %w", err)
		}

		mk := kernelsdfx.New()
		mk.MeshCells = cells
		m, err := mk.ToMesh(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh-solid: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})
}
