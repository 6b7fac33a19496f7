// Command relief builds multi-part 3D-printable meshes by carving
// difference shells out of textured surfaces.
//
// Usage:
//
//	relief bicolor-sphere [flags] texture.png
//	relief tricolor-earth [flags] earth.png
//	relief topo-bathy-earth [flags] topo.png bathy.png
//	relief bicolor-mesh [flags] mesh.ply texture.png
//	relief script pipeline.lisp
//
// Every subcommand accepts -defaults file.yaml to override its built-in
// defaults; explicit flags win over the YAML file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/relief/pkg/carve"
	"github.com/chazu/relief/pkg/engine"
	"github.com/chazu/relief/pkg/mesh"
	"github.com/chazu/relief/pkg/meshio"
	"github.com/chazu/relief/pkg/shape"
	"github.com/chazu/relief/pkg/texture"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("relief: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "bicolor-sphere":
		err = runBicolorSphere(os.Args[2:])
	case "tricolor-earth":
		err = runTricolorEarth(os.Args[2:])
	case "topo-bathy-earth":
		err = runTopoBathyEarth(os.Args[2:])
	case "bicolor-mesh":
		err = runBicolorMesh(os.Args[2:])
	case "script":
		err = runScript(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "relief: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `relief builds multi-part 3D-printable meshes.

Commands:
  bicolor-sphere    split a sphere in two parts from a texture
  tricolor-earth    split an earth sphere into land, sea and ice parts
  topo-bathy-earth  amplify topography and bathymetry on an earth sphere
  bicolor-mesh      split an existing textured mesh in two parts
  script            run a carve pipeline script

Run 'relief <command> -h' for command flags.
`)
}

// loadDefaults overrides the fields of opts from a YAML file when path is
// non-empty. It must run before flag parsing so explicit flags win.
func loadDefaults(path string, opts interface{}) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("parsing defaults %s: %w", path, err)
	}
	return nil
}

// defaultsPath extracts the -defaults flag value from args without
// consuming the other flags.
func defaultsPath(args []string) string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if name == "defaults" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(name, "defaults=") {
			return strings.TrimPrefix(name, "defaults=")
		}
	}
	return ""
}

// partPath builds the per-part output name: out.stl, "sea" -> out_sea.stl.
func partPath(output, part string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_" + part + ext
}

func writePart(path string, m *mesh.Mesh) error {
	log.Printf("writing %s (%d vertices, %d faces)", path, m.VertexCount(), m.TriangleCount())
	if err := meshio.Write(path, m); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// bicolor-sphere
// ---------------------------------------------------------------------------

type bicolorSphereOpts struct {
	Ntheta    int     `yaml:"ntheta"`
	Nphi      int     `yaml:"nphi"`
	Radius    float64 `yaml:"radius"`
	Threshold float64 `yaml:"threshold"`
	Reverse   bool    `yaml:"reverse"`
	Depth     float64 `yaml:"depth"`
	Output    string  `yaml:"output"`
}

func runBicolorSphere(args []string) error {
	opts := bicolorSphereOpts{
		Ntheta:    501,
		Nphi:      501,
		Radius:    50,
		Threshold: 128,
		Depth:     1.2,
		Output:    "sphere.stl",
	}
	if err := loadDefaults(defaultsPath(args), &opts); err != nil {
		return err
	}

	fs := flag.NewFlagSet("bicolor-sphere", flag.ExitOnError)
	fs.String("defaults", "", "YAML file overriding the built-in defaults")
	fs.IntVar(&opts.Ntheta, "ntheta", opts.Ntheta, "number of latitude discretization points")
	fs.IntVar(&opts.Nphi, "nphi", opts.Nphi, "number of longitude discretization points")
	fs.Float64Var(&opts.Radius, "radius", opts.Radius, "sphere radius")
	fs.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "texture value above which vertices are carved")
	fs.BoolVar(&opts.Reverse, "reverse", opts.Reverse, "carve vertices below the threshold instead")
	fs.Float64Var(&opts.Depth, "depth", opts.Depth, "displacement depth")
	fs.StringVar(&opts.Output, "output", opts.Output, "output file name")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("bicolor-sphere: expected one texture argument")
	}

	log.Printf("creating sphere mesh (nphi=%d ntheta=%d)", opts.Nphi, opts.Ntheta)
	m, err := shape.Sphere(opts.Nphi, opts.Ntheta)
	if err != nil {
		return err
	}
	m.Scale(opts.Radius)

	log.Printf("reading texture %s", fs.Arg(0))
	tex, err := texture.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	return carveBicolor(m, tex, opts.Threshold, opts.Reverse, opts.Depth, opts.Output)
}

// carveBicolor displaces the masked vertices inward and writes the
// displaced part and the difference shell.
func carveBicolor(m *mesh.Mesh, tex *texture.Texture, threshold float64, reverse bool, depth float64, output string) error {
	log.Printf("displacing mesh (depth=%g)", depth)
	values := texture.Sample(m.TCoords, tex)
	vmask := texture.Threshold(values, threshold, reverse)
	displaced := carve.Displace(m.Verts, m.Normals, -depth, vmask)

	log.Print("building difference shell")
	diffVerts, diffFaces, err := carve.Difference(m.Verts, displaced, m.Faces, vmask, carve.DefaultOptions())
	if err != nil {
		return err
	}

	displacedMesh := &mesh.Mesh{
		Verts:   displaced,
		Faces:   m.Faces,
		Normals: m.Normals,
		TCoords: m.TCoords,
	}
	if err := writePart(partPath(output, "displaced"), displacedMesh); err != nil {
		return err
	}
	diffMesh := &mesh.Mesh{Verts: diffVerts, Faces: diffFaces}
	return writePart(partPath(output, "difference"), diffMesh)
}

// ---------------------------------------------------------------------------
// tricolor-earth
// ---------------------------------------------------------------------------

type tricolorEarthOpts struct {
	Ntheta int     `yaml:"ntheta"`
	Nphi   int     `yaml:"nphi"`
	Radius float64 `yaml:"radius"`
	Depth  float64 `yaml:"depth"`
	Sigma  float64 `yaml:"sigma"`
	Output string  `yaml:"output"`
}

func runTricolorEarth(args []string) error {
	opts := tricolorEarthOpts{
		Ntheta: 501,
		Nphi:   501,
		Radius: 50,
		Depth:  1.2,
		Sigma:  1,
		Output: "earth.stl",
	}
	if err := loadDefaults(defaultsPath(args), &opts); err != nil {
		return err
	}

	fs := flag.NewFlagSet("tricolor-earth", flag.ExitOnError)
	fs.String("defaults", "", "YAML file overriding the built-in defaults")
	fs.IntVar(&opts.Ntheta, "ntheta", opts.Ntheta, "number of latitude discretization points")
	fs.IntVar(&opts.Nphi, "nphi", opts.Nphi, "number of longitude discretization points")
	fs.Float64Var(&opts.Radius, "radius", opts.Radius, "sphere radius")
	fs.Float64Var(&opts.Depth, "depth", opts.Depth, "displacement depth")
	fs.Float64Var(&opts.Sigma, "sigma", opts.Sigma, "gaussian blur std dev for the land/sea/ice masks")
	fs.StringVar(&opts.Output, "output", opts.Output, "output file name")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("tricolor-earth: expected one earth texture argument")
	}

	log.Printf("creating sphere mesh (nphi=%d ntheta=%d)", opts.Nphi, opts.Ntheta)
	m, err := shape.Sphere(opts.Nphi, opts.Ntheta)
	if err != nil {
		return err
	}
	m.Scale(opts.Radius)

	log.Printf("reading texture %s", fs.Arg(0))
	tex, err := texture.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	log.Print("classifying land, sea and ice")
	masks := texture.ClassifyEarth(tex, opts.Sigma)

	// Carve the sea out of the sphere.
	log.Print("carving the sea")
	seaMask := texture.SampleMask(m.TCoords, masks.Sea)
	landVerts := carve.Displace(m.Verts, m.Normals, -opts.Depth, seaMask)
	seaVerts, seaFaces, err := carve.Difference(m.Verts, landVerts, m.Faces, seaMask, carve.DefaultOptions())
	if err != nil {
		return err
	}

	// Carve the ice out of what remains.
	log.Print("carving the ice")
	iceMask := texture.SampleMask(m.TCoords, masks.Ice)
	carved := carve.Displace(landVerts, m.Normals, -opts.Depth, iceMask)
	iceVerts, iceFaces, err := carve.Difference(landVerts, carved, m.Faces, iceMask, carve.DefaultOptions())
	if err != nil {
		return err
	}

	if err := writePart(partPath(opts.Output, "land"), &mesh.Mesh{Verts: carved, Faces: m.Faces}); err != nil {
		return err
	}
	if err := writePart(partPath(opts.Output, "sea"), &mesh.Mesh{Verts: seaVerts, Faces: seaFaces}); err != nil {
		return err
	}
	return writePart(partPath(opts.Output, "ice"), &mesh.Mesh{Verts: iceVerts, Faces: iceFaces})
}

// ---------------------------------------------------------------------------
// topo-bathy-earth
// ---------------------------------------------------------------------------

type topoBathyOpts struct {
	Ntheta         int     `yaml:"ntheta"`
	Nphi           int     `yaml:"nphi"`
	Radius         float64 `yaml:"radius"`
	TopoDepth      float64 `yaml:"topo_depth"`
	TopoThreshold  float64 `yaml:"topo_threshold"`
	TopoReverse    bool    `yaml:"topo_reverse"`
	TopoSigma      float64 `yaml:"topo_sigma"`
	BathyDepth     float64 `yaml:"bathy_depth"`
	BathyThreshold float64 `yaml:"bathy_threshold"`
	BathyReverse   bool    `yaml:"bathy_reverse"`
	BathySigma     float64 `yaml:"bathy_sigma"`
	Output         string  `yaml:"output"`
}

func runTopoBathyEarth(args []string) error {
	// Defaults tuned for the NASA visible earth topography and bathymetry
	// images in resolution 21600x10800.
	opts := topoBathyOpts{
		Ntheta:         501,
		Nphi:           501,
		Radius:         50,
		TopoDepth:      5,
		TopoThreshold:  5,
		TopoSigma:      10,
		BathyDepth:     5,
		BathyThreshold: 5,
		BathyReverse:   true,
		BathySigma:     10,
		Output:         "earth.stl",
	}
	if err := loadDefaults(defaultsPath(args), &opts); err != nil {
		return err
	}

	fs := flag.NewFlagSet("topo-bathy-earth", flag.ExitOnError)
	fs.String("defaults", "", "YAML file overriding the built-in defaults")
	fs.IntVar(&opts.Ntheta, "ntheta", opts.Ntheta, "number of latitude discretization points")
	fs.IntVar(&opts.Nphi, "nphi", opts.Nphi, "number of longitude discretization points")
	fs.Float64Var(&opts.Radius, "radius", opts.Radius, "sphere radius")
	fs.Float64Var(&opts.TopoDepth, "topo-depth", opts.TopoDepth, "maximum displacement depth for the topography")
	fs.Float64Var(&opts.TopoThreshold, "topo-threshold", opts.TopoThreshold, "displacement threshold for the topography")
	fs.BoolVar(&opts.TopoReverse, "topo-reverse", opts.TopoReverse, "invert topography values")
	fs.Float64Var(&opts.TopoSigma, "topo-sigma", opts.TopoSigma, "gaussian blur std dev for the topography texture")
	fs.Float64Var(&opts.BathyDepth, "bathy-depth", opts.BathyDepth, "maximum displacement depth for the bathymetry")
	fs.Float64Var(&opts.BathyThreshold, "bathy-threshold", opts.BathyThreshold, "displacement threshold for the bathymetry")
	fs.BoolVar(&opts.BathyReverse, "bathy-reverse", opts.BathyReverse, "invert bathymetry values")
	fs.Float64Var(&opts.BathySigma, "bathy-sigma", opts.BathySigma, "gaussian blur std dev for the bathymetry texture")
	fs.StringVar(&opts.Output, "output", opts.Output, "output file name")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("topo-bathy-earth: expected topography and bathymetry texture arguments")
	}

	log.Printf("creating sphere mesh (nphi=%d ntheta=%d)", opts.Nphi, opts.Ntheta)
	m, err := shape.Sphere(opts.Nphi, opts.Ntheta)
	if err != nil {
		return err
	}
	m.Scale(opts.Radius)

	loadHeightTexture := func(path string, reverse bool, sigma float64) (*texture.Texture, error) {
		log.Printf("reading texture %s", path)
		tex, err := texture.Load(path)
		if err != nil {
			return nil, err
		}
		if reverse {
			tex.Invert()
		}
		if sigma > 0 {
			log.Printf("smoothing texture (sigma=%g)", sigma)
			tex = texture.GaussianBlur(tex, sigma)
		}
		return tex, nil
	}

	topo, err := loadHeightTexture(fs.Arg(0), opts.TopoReverse, opts.TopoSigma)
	if err != nil {
		return err
	}
	bathy, err := loadHeightTexture(fs.Arg(1), opts.BathyReverse, opts.BathySigma)
	if err != nil {
		return err
	}

	// Carve the sea floor, displacing each vertex proportionally to the
	// bathymetry value.
	log.Print("carving the sea")
	bathyValues := texture.Sample(m.TCoords, bathy)
	seaMask := texture.Threshold(bathyValues, opts.BathyThreshold, false)
	lengths := make([]float64, len(bathyValues))
	for i, v := range bathyValues {
		lengths[i] = -opts.BathyDepth * v / 255
	}
	landVerts := carve.DisplaceEach(m.Verts, m.Normals, lengths, seaMask)

	seaVerts, seaFaces, err := carve.Difference(m.Verts, landVerts, m.Faces, seaMask, carve.DefaultOptions())
	if err != nil {
		return err
	}

	// Bring the mountains out.
	log.Print("amplifying the topography")
	topoValues := texture.Sample(m.TCoords, topo)
	topoMask := texture.Threshold(topoValues, opts.TopoThreshold, false)
	for i, v := range topoValues {
		lengths[i] = opts.TopoDepth * v / 255
	}
	landVerts = carve.DisplaceEach(landVerts, m.Normals, lengths, topoMask)

	if err := writePart(partPath(opts.Output, "land"), &mesh.Mesh{Verts: landVerts, Faces: m.Faces}); err != nil {
		return err
	}
	return writePart(partPath(opts.Output, "sea"), &mesh.Mesh{Verts: seaVerts, Faces: seaFaces})
}

// ---------------------------------------------------------------------------
// bicolor-mesh
// ---------------------------------------------------------------------------

type bicolorMeshOpts struct {
	Normals   string  `yaml:"normals"`
	Scale     float64 `yaml:"scale"`
	Threshold float64 `yaml:"threshold"`
	Reverse   bool    `yaml:"reverse"`
	Clean     bool    `yaml:"clean"`
	Depth     float64 `yaml:"depth"`
	Output    string  `yaml:"output"`
}

// cleanTol merges vertices closer than this when -clean is requested.
const cleanTol = 1e-8

func runBicolorMesh(args []string) error {
	opts := bicolorMeshOpts{
		Scale:     50,
		Threshold: 128,
		Depth:     0.5,
		Output:    "mesh.stl",
	}
	if err := loadDefaults(defaultsPath(args), &opts); err != nil {
		return err
	}

	fs := flag.NewFlagSet("bicolor-mesh", flag.ExitOnError)
	fs.String("defaults", "", "YAML file overriding the built-in defaults")
	fs.StringVar(&opts.Normals, "normals", opts.Normals, "take normals from this mesh instead")
	fs.Float64Var(&opts.Scale, "scale", opts.Scale, "scale factor applied to the mesh")
	fs.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "texture value above which vertices are carved")
	fs.BoolVar(&opts.Reverse, "reverse", opts.Reverse, "carve vertices below the threshold instead")
	fs.BoolVar(&opts.Clean, "clean", opts.Clean, "merge duplicate vertices before processing")
	fs.Float64Var(&opts.Depth, "depth", opts.Depth, "displacement depth")
	fs.StringVar(&opts.Output, "output", opts.Output, "output file name")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("bicolor-mesh: expected mesh and texture arguments")
	}

	log.Printf("reading mesh %s", fs.Arg(0))
	m, err := meshio.Read(fs.Arg(0))
	if err != nil {
		return err
	}

	if opts.Normals != "" {
		log.Printf("reading normals from %s", opts.Normals)
		nm, err := meshio.Read(opts.Normals)
		if err != nil {
			return err
		}
		if len(nm.Normals) != m.VertexCount() {
			return fmt.Errorf("normals mesh has %d normals for %d vertices",
				len(nm.Normals), m.VertexCount())
		}
		m.Normals = nm.Normals
	}

	if opts.Clean {
		nv, nf := m.VertexCount(), m.TriangleCount()
		m = m.Clean(cleanTol)
		log.Printf("cleaned mesh (%d vertices & %d faces removed)",
			nv-m.VertexCount(), nf-m.TriangleCount())
	}

	if m.TCoords == nil {
		return fmt.Errorf("mesh %s has no texture coordinates", fs.Arg(0))
	}
	if m.Normals == nil {
		return fmt.Errorf("mesh %s has no normals", fs.Arg(0))
	}

	m.Scale(opts.Scale)
	log.Printf("mesh: %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())

	log.Printf("reading texture %s", fs.Arg(1))
	tex, err := texture.Load(fs.Arg(1))
	if err != nil {
		return err
	}

	return carveBicolor(m, tex, opts.Threshold, opts.Reverse, opts.Depth, opts.Output)
}

// ---------------------------------------------------------------------------
// script
// ---------------------------------------------------------------------------

func runScript(args []string) error {
	fs := flag.NewFlagSet("script", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("script: expected one pipeline file argument")
	}

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	eng := engine.NewEngine()
	res, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("running %s: %w", fs.Arg(0), err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", fs.Arg(0), e.Error())
		}
		return fmt.Errorf("script failed with %d error(s)", len(evalErrs))
	}

	for _, path := range res.Written {
		log.Printf("wrote %s", path)
	}
	return nil
}
